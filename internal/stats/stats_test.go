package stats

import (
	"testing"
	"time"

	"github.com/revisio/revisio/internal/model"
)

var today = time.Date(2026, 5, 20, 18, 30, 0, 0, time.UTC)

func session(daysAgo, minutes int, subjectID string) model.TimerSession {
	return model.TimerSession{
		ID:        model.NewID(),
		SubjectID: subjectID,
		StartedAt: today.AddDate(0, 0, -daysAgo),
		Duration:  minutes,
	}
}

func TestMinutesByDayZeroFilled(t *testing.T) {
	out := MinutesByDay(nil, 30, today)
	if len(out) != 30 {
		t.Fatalf("len = %d, want 30", len(out))
	}
	for i, d := range out {
		if d.Minutes != 0 {
			t.Errorf("day %d minutes = %d, want 0", i, d.Minutes)
		}
	}
	if !out[29].Date.Equal(model.DateOnly(today)) {
		t.Errorf("last entry = %v, want %v", out[29].Date, model.DateOnly(today))
	}
	if !out[0].Date.Equal(model.DateOnly(today).AddDate(0, 0, -29)) {
		t.Errorf("first entry = %v, want 29 days back", out[0].Date)
	}
}

func TestMinutesByDaySums(t *testing.T) {
	sessions := []model.TimerSession{
		session(0, 25, "s1"),
		session(0, 30, "s2"),
		session(2, 45, "s1"),
		session(40, 60, "s1"), // outside range
	}
	out := MinutesByDay(sessions, 7, today)
	if len(out) != 7 {
		t.Fatalf("len = %d, want 7", len(out))
	}
	if got := out[6].Minutes; got != 55 {
		t.Errorf("today = %d minutes, want 55", got)
	}
	if got := out[4].Minutes; got != 45 {
		t.Errorf("two days ago = %d minutes, want 45", got)
	}
	if got := out[5].Minutes; got != 0 {
		t.Errorf("yesterday = %d minutes, want 0", got)
	}
}

func TestMinutesByDayDeterministic(t *testing.T) {
	sessions := []model.TimerSession{session(0, 25, "s1"), session(1, 10, "s1")}
	a := MinutesByDay(sessions, 14, today)
	b := MinutesByDay(sessions, 14, today)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic output at index %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestMinutesBySubject(t *testing.T) {
	subjects := []model.Subject{
		{ID: "s1", Name: "math"},
		{ID: "s2", Name: "history"},
		{ID: "s3", Name: "idle"},
	}
	sessions := []model.TimerSession{
		session(0, 75, "s1"),
		session(1, 25, "s2"),
		session(2, 20, "gone"), // unknown subject ignored
	}

	out := MinutesBySubject(sessions, subjects)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2 (zero-minute subject excluded)", len(out))
	}
	if out[0].SubjectID != "s1" || out[0].Minutes != 75 {
		t.Errorf("top subject = %+v, want s1 with 75 minutes", out[0])
	}
	if out[0].Percentage != 75.0 {
		t.Errorf("s1 percentage = %v, want 75.0", out[0].Percentage)
	}
	if out[1].Percentage != 25.0 {
		t.Errorf("s2 percentage = %v, want 25.0", out[1].Percentage)
	}
}

func TestMinutesBySubjectEmpty(t *testing.T) {
	out := MinutesBySubject(nil, []model.Subject{{ID: "s1", Name: "math"}})
	if len(out) != 0 {
		t.Errorf("empty sessions should yield empty breakdown, got %+v", out)
	}
}

func TestCurrentStreak(t *testing.T) {
	sessions := []model.TimerSession{
		session(0, 25, "s1"),
		session(1, 10, "s1"),
		session(2, 5, "s1"),
		session(4, 60, "s1"), // gap at day 3 breaks the run
	}
	if got := CurrentStreak(sessions, today); got != 3 {
		t.Errorf("streak = %d, want 3", got)
	}
}

func TestCurrentStreakStrictToday(t *testing.T) {
	// Studied yesterday and the day before, nothing today: strict
	// semantics say the streak is 0.
	sessions := []model.TimerSession{
		session(1, 30, "s1"),
		session(2, 30, "s1"),
	}
	if got := CurrentStreak(sessions, today); got != 0 {
		t.Errorf("streak = %d, want 0 (no study on asOf day)", got)
	}
	// The display layer's grace variant: ask as of yesterday.
	if got := CurrentStreak(sessions, today.AddDate(0, 0, -1)); got != 2 {
		t.Errorf("streak as of yesterday = %d, want 2", got)
	}
}

func TestCurrentStreakEmpty(t *testing.T) {
	if got := CurrentStreak(nil, today); got != 0 {
		t.Errorf("streak = %d, want 0", got)
	}
}

func TestLongestStreak(t *testing.T) {
	sessions := []model.TimerSession{
		// Run of 2 ending today.
		session(0, 10, "s1"),
		session(1, 10, "s1"),
		// Run of 4 further back, split across subjects.
		session(10, 10, "s1"),
		session(11, 10, "s2"),
		session(12, 10, "s1"),
		session(13, 10, "s1"),
	}
	if got := LongestStreak(sessions); got != 4 {
		t.Errorf("longest streak = %d, want 4", got)
	}
}

func TestLongestStreakEmpty(t *testing.T) {
	if got := LongestStreak(nil); got != 0 {
		t.Errorf("longest streak = %d, want 0", got)
	}
}

func TestZeroDurationIgnored(t *testing.T) {
	sessions := []model.TimerSession{session(0, 0, "s1"), session(0, -5, "s1")}
	if got := CurrentStreak(sessions, today); got != 0 {
		t.Errorf("streak = %d, want 0 (zero-minute days do not count)", got)
	}
	if got := TotalMinutes(sessions); got != 0 {
		t.Errorf("total = %d, want 0", got)
	}
}
