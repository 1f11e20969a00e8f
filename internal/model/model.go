package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// TopicStatus is the coarse, learner-assigned progress state of a topic.
// It drives the UI color coding and feeds the readiness predictor as a
// coverage signal independent of the memory model.
type TopicStatus string

const (
	StatusUntouched  TopicStatus = "untouched"
	StatusStruggling TopicStatus = "struggling"
	StatusLearning   TopicStatus = "learning"
	StatusMastered   TopicStatus = "mastered"
)

// ValidStatus reports whether s is one of the known topic statuses.
func ValidStatus(s TopicStatus) bool {
	switch s {
	case StatusUntouched, StatusStruggling, StatusLearning, StatusMastered:
		return true
	}
	return false
}

// MemoryState is the FSRS-style memory state of a topic. It is absent
// (nil on Topic) until the first grading event; after that stability and
// difficulty are always present and positive.
type MemoryState struct {
	Stability   float64   `json:"stability"`    // days until retrievability decays to ~90%
	Difficulty  float64   `json:"difficulty"`   // in [1,10], resistance to stability growth
	LastReview  time.Time `json:"last_review"`  // date of the most recent grading event
	ReviewCount int       `json:"review_count"` // total grading events applied
}

// ReviewEvent is one entry in a topic's append-only review log.
type ReviewEvent struct {
	ID           int64     `json:"id"`
	TopicID      string    `json:"topic_id"`
	Date         time.Time `json:"date"`
	Grade        int       `json:"grade"`         // memory.Grade value, 1-4
	PrevInterval int       `json:"prev_interval"` // days; 0 on the first review
	NewInterval  int       `json:"new_interval"`  // days
}

// Topic is a single learnable unit owned by a subject.
type Topic struct {
	ID        string       `json:"id"`
	SubjectID string       `json:"subject_id"`
	Name      string       `json:"name"`
	Status    TopicStatus  `json:"status"`
	Grades    []float64    `json:"grades"`   // quiz scores on the 2-6 scale, oldest first
	Material  string       `json:"material"` // source text for quiz generation; empty = none
	Memory    *MemoryState `json:"memory,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// HasMaterial reports whether quiz generation is possible for the topic.
func (t *Topic) HasMaterial() bool { return t.Material != "" }

// GradeAverage returns the mean quiz grade, or 0 if none recorded.
func (t *Topic) GradeAverage() float64 {
	if len(t.Grades) == 0 {
		return 0
	}
	sum := 0.0
	for _, g := range t.Grades {
		sum += g
	}
	return sum / float64(len(t.Grades))
}

// Subject groups topics and optionally carries an exam date.
type Subject struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ExamDate  *time.Time `json:"exam_date,omitempty"`
	Archived  bool       `json:"archived"`
	Topics    []Topic    `json:"topics"`
	CreatedAt time.Time  `json:"created_at"`
}

// DaysUntilExam returns whole days from asOf to the exam date, floored
// at 0, and false if no exam date is set.
func (s *Subject) DaysUntilExam(asOf time.Time) (int, bool) {
	if s.ExamDate == nil {
		return 0, false
	}
	d := DaysBetween(asOf, *s.ExamDate)
	if d < 0 {
		d = 0
	}
	return d, true
}

// TimerSession is one finished study-timer run. Immutable once ended.
// SubjectID and TopicID are weak references: deleting a subject does not
// delete its historical sessions.
type TimerSession struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subject_id"`
	TopicID   string    `json:"topic_id,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Duration  int       `json:"duration"` // minutes
}

// AppData is the full in-memory snapshot handed to the core packages.
// The store loads it; the core never touches storage itself.
type AppData struct {
	Subjects []Subject
	Sessions []TimerSession
}

// ActiveSubjects returns the non-archived subjects. Archived subjects are
// excluded from aggregator and predictor inputs at this boundary.
func (d *AppData) ActiveSubjects() []Subject {
	out := make([]Subject, 0, len(d.Subjects))
	for _, s := range d.Subjects {
		if !s.Archived {
			out = append(out, s)
		}
	}
	return out
}

// DateOnly truncates t to midnight in t's own location. All calendar-day
// arithmetic in the core goes through this so day boundaries follow the
// learner's clock, not UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the calendar-day difference to - from, which may be
// negative. Rounded rather than truncated so DST days (23h/25h) still
// count as one day.
func DaysBetween(from, to time.Time) int {
	return int(math.Round(DateOnly(to).Sub(DateOnly(from)).Hours() / 24))
}

// NewID returns a fresh UUID string for subjects, topics and sessions.
func NewID() string { return uuid.NewString() }
