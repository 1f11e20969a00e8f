package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/revisio/revisio/internal/memory"
	"github.com/revisio/revisio/internal/model"
)

var asOf = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

func topicWithState(name string, stability float64, reviewedDaysAgo int) model.Topic {
	return model.Topic{
		ID:     name,
		Name:   name,
		Status: model.StatusLearning,
		Memory: &model.MemoryState{
			Stability:   stability,
			Difficulty:  5,
			LastReview:  asOf.AddDate(0, 0, -reviewedDaysAgo),
			ReviewCount: 1,
		},
	}
}

func TestGradeTopicFirstReview(t *testing.T) {
	topic := model.Topic{ID: "t1", Name: "limits", Status: model.StatusUntouched}

	res, err := GradeTopic(topic, memory.Good, asOf)
	if err != nil {
		t.Fatalf("GradeTopic: %v", err)
	}
	if res.Topic.Memory == nil {
		t.Fatal("memory state not initialized on first review")
	}
	if res.Topic.Memory.ReviewCount != 1 {
		t.Errorf("review count = %d, want 1", res.Topic.Memory.ReviewCount)
	}
	if !res.Topic.Memory.LastReview.Equal(asOf) {
		t.Errorf("last review = %v, want %v", res.Topic.Memory.LastReview, asOf)
	}
	if res.Event.PrevInterval != 0 {
		t.Errorf("prev interval on first review = %d, want 0", res.Event.PrevInterval)
	}
	if res.Event.NewInterval < 1 {
		t.Errorf("new interval = %d, want >= 1", res.Event.NewInterval)
	}
	if res.Event.Grade != int(memory.Good) {
		t.Errorf("event grade = %d, want %d", res.Event.Grade, int(memory.Good))
	}

	// Input topic must be untouched.
	if topic.Memory != nil {
		t.Error("GradeTopic mutated its input")
	}
}

func TestGradeTopicRecordsIntervals(t *testing.T) {
	topic := topicWithState("t1", 4.0, 4)

	res, err := GradeTopic(topic, memory.Good, asOf)
	if err != nil {
		t.Fatalf("GradeTopic: %v", err)
	}
	if res.Event.PrevInterval != 4 {
		t.Errorf("prev interval = %d, want 4", res.Event.PrevInterval)
	}
	if res.Event.NewInterval <= res.Event.PrevInterval {
		t.Errorf("interval did not grow after Good: %d -> %d",
			res.Event.PrevInterval, res.Event.NewInterval)
	}
	if res.Topic.Memory.ReviewCount != 2 {
		t.Errorf("review count = %d, want 2", res.Topic.Memory.ReviewCount)
	}
}

func TestGradeTopicInvalidGrade(t *testing.T) {
	topic := topicWithState("t1", 2.0, 1)
	before := *topic.Memory

	_, err := GradeTopic(topic, memory.Grade(9), asOf)
	if !errors.Is(err, memory.ErrInvalidGrade) {
		t.Fatalf("error = %v, want ErrInvalidGrade", err)
	}
	if *topic.Memory != before {
		t.Error("memory state changed despite rejected grade")
	}
}

func TestGradeTopicInvalidState(t *testing.T) {
	topic := topicWithState("t1", -3, 1)
	if _, err := GradeTopic(topic, memory.Good, asOf); !errors.Is(err, memory.ErrInvalidState) {
		t.Fatalf("error = %v, want ErrInvalidState", err)
	}
}

func TestClassifyBuckets(t *testing.T) {
	sub := model.Subject{
		ID:   "s1",
		Name: "analysis",
		Topics: []model.Topic{
			{ID: "new", Name: "new"},                 // never reviewed
			topicWithState("forgotten", 1.0, 30),     // R ~ 0.23 -> overdue
			topicWithState("fading", 2.0, 10),        // R ~ 0.64 -> due
			topicWithState("soon", 3.5, 1),           // due in ~2 days -> upcoming
			topicWithState("solid", 60.0, 5),         // R ~ 0.99, due far out -> fresh
		},
	}

	q := Classify([]model.Subject{sub}, asOf)

	want := map[string]Bucket{
		"new":       BucketNeverReviewed,
		"forgotten": BucketOverdue,
		"fading":    BucketDue,
		"soon":      BucketUpcoming,
		"solid":     BucketFresh,
	}
	got := map[string]Bucket{}
	for _, e := range q.NeverReviewed {
		got[e.Topic.Name] = BucketNeverReviewed
	}
	for _, e := range q.Overdue {
		got[e.Topic.Name] = BucketOverdue
	}
	for _, e := range q.Due {
		got[e.Topic.Name] = BucketDue
	}
	for _, e := range q.Upcoming {
		got[e.Topic.Name] = BucketUpcoming
	}
	for _, e := range q.Fresh {
		got[e.Topic.Name] = BucketFresh
	}

	for name, bucket := range want {
		if got[name] != bucket {
			t.Errorf("topic %q in bucket %v, want %v", name, got[name], bucket)
		}
	}
	if q.Total() != len(want) {
		t.Errorf("total classified = %d, want %d", q.Total(), len(want))
	}

	// Never-reviewed topics carry zero retrievability: maximum urgency.
	if len(q.NeverReviewed) == 1 && q.NeverReviewed[0].Retrievability != 0 {
		t.Errorf("never-reviewed retrievability = %v, want 0", q.NeverReviewed[0].Retrievability)
	}
}

func TestClassifyOrdering(t *testing.T) {
	later := asOf.AddDate(0, 0, 20)
	sooner := asOf.AddDate(0, 0, 5)
	subs := []model.Subject{
		{ID: "a", Name: "a", ExamDate: &later, Topics: []model.Topic{
			topicWithState("weak-late-exam", 1.0, 25),
			topicWithState("weaker", 1.0, 60),
		}},
		{ID: "b", Name: "b", ExamDate: &sooner, Topics: []model.Topic{
			topicWithState("weak-soon-exam", 1.0, 25),
		}},
	}

	q := Classify(subs, asOf)
	if len(q.Overdue) != 3 {
		t.Fatalf("overdue count = %d, want 3", len(q.Overdue))
	}
	if q.Overdue[0].Topic.Name != "weaker" {
		t.Errorf("first overdue = %q, want weaker (lowest retrievability)", q.Overdue[0].Topic.Name)
	}
	// Equal retrievability: the earlier exam wins.
	if q.Overdue[1].Topic.Name != "weak-soon-exam" {
		t.Errorf("second overdue = %q, want weak-soon-exam", q.Overdue[1].Topic.Name)
	}
}

func TestClassifyEmpty(t *testing.T) {
	q := Classify(nil, asOf)
	if q.Total() != 0 {
		t.Errorf("total = %d, want 0", q.Total())
	}
}
