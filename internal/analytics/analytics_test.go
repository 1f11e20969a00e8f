package analytics

import (
	"testing"
	"time"

	"github.com/revisio/revisio/internal/model"
)

var asOf = time.Date(2026, 6, 15, 20, 0, 0, 0, time.UTC)

func snapshot() *model.AppData {
	exam := asOf.AddDate(0, 0, 21)
	return &model.AppData{
		Subjects: []model.Subject{
			{
				ID: "s1", Name: "math", ExamDate: &exam,
				Topics: []model.Topic{
					{ID: "t1", Name: "limits", Status: model.StatusMastered,
						Grades: []float64{5},
						Memory: &model.MemoryState{Stability: 20, Difficulty: 4,
							LastReview: asOf.AddDate(0, 0, -2), ReviewCount: 4}},
					{ID: "t2", Name: "series", Status: model.StatusLearning},
				},
			},
			{
				ID: "s2", Name: "old", Archived: true,
				Topics: []model.Topic{{ID: "t3", Name: "stale"}},
			},
		},
		Sessions: []model.TimerSession{
			{ID: "x1", SubjectID: "s1", StartedAt: asOf, Duration: 40},
			{ID: "x2", SubjectID: "s1", StartedAt: asOf.AddDate(0, 0, -1), Duration: 20},
			{ID: "x3", SubjectID: "s2", StartedAt: asOf.AddDate(0, 0, -1), Duration: 15},
		},
	}
}

func TestBuildExcludesArchivedSubjects(t *testing.T) {
	d := Build(snapshot(), asOf, Options{})

	if len(d.Readiness) != 1 {
		t.Fatalf("readiness entries = %d, want 1 (archived excluded)", len(d.Readiness))
	}
	if d.Readiness[0].SubjectID != "s1" {
		t.Errorf("readiness subject = %s, want s1", d.Readiness[0].SubjectID)
	}
	// The archived subject's never-reviewed topic must not show up.
	if d.Queue.NeverReviewed != 1 {
		t.Errorf("never reviewed = %d, want 1 (t2 only)", d.Queue.NeverReviewed)
	}
	// Historical sessions against the archived subject still count.
	if d.TotalMinutes != 75 {
		t.Errorf("total minutes = %d, want 75", d.TotalMinutes)
	}
}

func TestBuildStreakAndGoal(t *testing.T) {
	d := Build(snapshot(), asOf, Options{GoalMinutes: 30})

	if d.CurrentStreak != 2 {
		t.Errorf("streak = %d, want 2", d.CurrentStreak)
	}
	if !d.Goal.Met || d.Goal.TodayMinutes != 40 {
		t.Errorf("goal = %+v, want met with 40 minutes", d.Goal)
	}

	strict := Build(snapshot(), asOf, Options{GoalMinutes: 60})
	if strict.Goal.Met {
		t.Errorf("goal met with 40/60 minutes")
	}
}

func TestBuildDefaults(t *testing.T) {
	d := Build(snapshot(), asOf, Options{})
	if len(d.Days) != 30 {
		t.Errorf("chart days = %d, want default 30", len(d.Days))
	}
	if d.Goal.Met {
		t.Error("goal reported met with no goal configured")
	}
}

func TestBuildMostUrgentOrder(t *testing.T) {
	d := Build(snapshot(), asOf, Options{MostUrgentLimit: 2})
	if len(d.Queue.MostUrgent) == 0 {
		t.Fatal("no urgent entries")
	}
	// never-reviewed t2 leads the triage list
	if d.Queue.MostUrgent[0].Topic.ID != "t2" {
		t.Errorf("most urgent = %s, want t2", d.Queue.MostUrgent[0].Topic.ID)
	}
}

func TestBuildEmptySnapshot(t *testing.T) {
	d := Build(&model.AppData{}, asOf, Options{})
	if d.CurrentStreak != 0 || d.LongestStreak != 0 || d.TotalMinutes != 0 {
		t.Errorf("empty snapshot produced nonzero stats: %+v", d)
	}
	if len(d.Days) != 30 {
		t.Errorf("days = %d, want 30 zero-filled entries", len(d.Days))
	}
	q := d.Queue
	if q.NeverReviewed+q.Overdue+q.Due+q.Upcoming+q.Fresh != 0 {
		t.Errorf("empty snapshot produced a nonempty queue: %+v", q)
	}
}
