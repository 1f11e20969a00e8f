// Package scheduler applies grading events to topics and classifies them
// by review urgency. GradeTopic is the single mutation path for a topic's
// memory state; everything else here is a pure computation over snapshots.
package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/revisio/revisio/internal/memory"
	"github.com/revisio/revisio/internal/model"
)

// Bucket is the urgency class of a topic at a point in time.
type Bucket string

const (
	// BucketNeverReviewed holds topics with no memory state. They are
	// maximum urgency for new-content triage, kept apart from topics
	// that were learned and then forgotten.
	BucketNeverReviewed Bucket = "never_reviewed"
	BucketOverdue       Bucket = "overdue"
	BucketDue           Bucket = "due"
	BucketUpcoming      Bucket = "upcoming"
	BucketFresh         Bucket = "fresh"
)

// Retrievability thresholds for bucketing, and the lookahead window that
// turns a fresh topic into an upcoming one.
const (
	overdueBelow   = 0.5
	dueBelow       = 0.85
	upcomingWithin = 3 // days until due date
)

// Entry is one classified topic with the numbers the classification was
// based on, so callers can render them without recomputing.
type Entry struct {
	Topic          model.Topic `json:"topic"`
	SubjectID      string      `json:"subject_id"`
	SubjectName    string      `json:"subject_name"`
	Bucket         Bucket      `json:"bucket"`
	Retrievability float64     `json:"retrievability"`
	DueDate        time.Time   `json:"due_date"`            // zero for never-reviewed topics
	ExamDate       *time.Time  `json:"exam_date,omitempty"` // owning subject's exam, if any
}

// Queue holds the classification result, one slice per bucket, each
// sorted most-urgent first.
type Queue struct {
	NeverReviewed []Entry `json:"never_reviewed"`
	Overdue       []Entry `json:"overdue"`
	Due           []Entry `json:"due"`
	Upcoming      []Entry `json:"upcoming"`
	Fresh         []Entry `json:"fresh"`
}

// Total returns the number of classified topics.
func (q *Queue) Total() int {
	return len(q.NeverReviewed) + len(q.Overdue) + len(q.Due) + len(q.Upcoming) + len(q.Fresh)
}

// Result of a grading event: the updated topic plus the review-log entry
// that records it. The caller persists both.
type Result struct {
	Topic model.Topic
	Event model.ReviewEvent
}

// GradeTopic applies one grading event to a topic and returns the updated
// copy. The input topic is not modified. Rejects out-of-range grades and
// malformed stored state before touching anything.
//
// Grading the same topic must be serialized by the caller; this is a
// read-modify-write over the topic's memory state.
func GradeTopic(topic model.Topic, grade memory.Grade, asOf time.Time) (*Result, error) {
	if !memory.ValidGrade(grade) {
		return nil, fmt.Errorf("grade topic %s: %w: %d", topic.ID, memory.ErrInvalidGrade, int(grade))
	}

	prevInterval := 0
	if topic.Memory != nil {
		iv, err := memory.NextReviewInterval(topic.Memory)
		if err != nil {
			return nil, fmt.Errorf("grade topic %s: %w", topic.ID, err)
		}
		prevInterval = iv
	}

	next, err := memory.NextState(topic.Memory, grade, asOf)
	if err != nil {
		return nil, fmt.Errorf("grade topic %s: %w", topic.ID, err)
	}
	newInterval, err := memory.NextReviewInterval(next)
	if err != nil {
		return nil, fmt.Errorf("grade topic %s: %w", topic.ID, err)
	}

	topic.Memory = next
	topic.UpdatedAt = asOf

	return &Result{
		Topic: topic,
		Event: model.ReviewEvent{
			TopicID:      topic.ID,
			Date:         asOf,
			Grade:        int(grade),
			PrevInterval: prevInterval,
			NewInterval:  newInterval,
		},
	}, nil
}

// Classify buckets every topic of the given subjects by urgency at asOf.
// Topics with malformed state are skipped rather than failing the whole
// queue; the store validates on write, so this only guards old data.
func Classify(subjects []model.Subject, asOf time.Time) *Queue {
	q := &Queue{}
	for _, sub := range subjects {
		for _, topic := range sub.Topics {
			e, err := classifyOne(topic, sub, asOf)
			if err != nil {
				continue
			}
			switch e.Bucket {
			case BucketNeverReviewed:
				q.NeverReviewed = append(q.NeverReviewed, e)
			case BucketOverdue:
				q.Overdue = append(q.Overdue, e)
			case BucketDue:
				q.Due = append(q.Due, e)
			case BucketUpcoming:
				q.Upcoming = append(q.Upcoming, e)
			case BucketFresh:
				q.Fresh = append(q.Fresh, e)
			}
		}
	}
	for _, bucket := range [][]Entry{q.NeverReviewed, q.Overdue, q.Due, q.Upcoming, q.Fresh} {
		sortEntries(bucket)
	}
	return q
}

func classifyOne(topic model.Topic, sub model.Subject, asOf time.Time) (Entry, error) {
	e := Entry{
		Topic:       topic,
		SubjectID:   sub.ID,
		SubjectName: sub.Name,
		ExamDate:    sub.ExamDate,
	}

	if topic.Memory == nil {
		e.Bucket = BucketNeverReviewed
		return e, nil
	}

	r, err := memory.Retrievability(topic.Memory, asOf)
	if err != nil {
		return Entry{}, err
	}
	due, err := memory.DueDate(topic.Memory)
	if err != nil {
		return Entry{}, err
	}
	e.Retrievability = r
	e.DueDate = due

	switch {
	case r < overdueBelow:
		e.Bucket = BucketOverdue
	case r < dueBelow || !due.After(model.DateOnly(asOf)):
		e.Bucket = BucketDue
	case model.DaysBetween(asOf, due) <= upcomingWithin:
		e.Bucket = BucketUpcoming
	default:
		e.Bucket = BucketFresh
	}
	return e, nil
}

// sortEntries orders a bucket most-urgent first: ascending retrievability,
// then earlier exam date (topics without an exam sort last), then topic
// name for a stable display order.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Retrievability != b.Retrievability {
			return a.Retrievability < b.Retrievability
		}
		switch {
		case a.ExamDate != nil && b.ExamDate != nil:
			if !a.ExamDate.Equal(*b.ExamDate) {
				return a.ExamDate.Before(*b.ExamDate)
			}
		case a.ExamDate != nil:
			return true
		case b.ExamDate != nil:
			return false
		}
		return a.Topic.Name < b.Topic.Name
	})
}
