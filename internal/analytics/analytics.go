// Package analytics composes the memory, stats and readiness packages
// into the view shapes the dashboard consumes. It owns no math of its
// own; it selects, filters (archived subjects drop out here) and bundles.
package analytics

import (
	"time"

	"github.com/revisio/revisio/internal/model"
	"github.com/revisio/revisio/internal/readiness"
	"github.com/revisio/revisio/internal/scheduler"
	"github.com/revisio/revisio/internal/stats"
)

// QueueSummary is the review queue reduced to counts plus the most
// urgent entries, enough for the dashboard widget.
type QueueSummary struct {
	NeverReviewed int               `json:"never_reviewed"`
	Overdue       int               `json:"overdue"`
	Due           int               `json:"due"`
	Upcoming      int               `json:"upcoming"`
	Fresh         int               `json:"fresh"`
	MostUrgent    []scheduler.Entry `json:"most_urgent"`
}

// GoalProgress is the display-level daily goal. The goal threshold has
// no bearing on streak math; streaks count any day with >0 minutes.
type GoalProgress struct {
	GoalMinutes  int  `json:"goal_minutes"`
	TodayMinutes int  `json:"today_minutes"`
	Met          bool `json:"met"`
}

// Dashboard is the composite view for the main screen.
type Dashboard struct {
	Days          []stats.DayMinutes     `json:"days"`
	Subjects      []stats.SubjectMinutes `json:"subjects"`
	CurrentStreak int                    `json:"current_streak"`
	LongestStreak int                    `json:"longest_streak"`
	TotalMinutes  int                    `json:"total_minutes"`
	Goal          GoalProgress           `json:"goal"`
	Queue         QueueSummary           `json:"queue"`
	Readiness     []readiness.Report     `json:"readiness"`
}

// Options tune the dashboard shape.
type Options struct {
	RangeDays       int // days of history in the chart; default 30
	MostUrgentLimit int // entries in the urgent list; default 5
	GoalMinutes     int // daily goal for the progress widget; 0 = no goal
}

func (o *Options) defaults() {
	if o.RangeDays <= 0 {
		o.RangeDays = 30
	}
	if o.MostUrgentLimit <= 0 {
		o.MostUrgentLimit = 5
	}
}

// Build assembles the dashboard from an AppData snapshot. Archived
// subjects are excluded from every view; historical timer sessions keep
// counting regardless (weak reference semantics).
func Build(data *model.AppData, asOf time.Time, opts Options) *Dashboard {
	opts.defaults()
	subjects := data.ActiveSubjects()

	q := scheduler.Classify(subjects, asOf)
	todayMinutes := minutesOn(data.Sessions, asOf)

	d := &Dashboard{
		Days:          stats.MinutesByDay(data.Sessions, opts.RangeDays, asOf),
		Subjects:      stats.MinutesBySubject(data.Sessions, subjects),
		CurrentStreak: stats.CurrentStreak(data.Sessions, asOf),
		LongestStreak: stats.LongestStreak(data.Sessions),
		TotalMinutes:  stats.TotalMinutes(data.Sessions),
		Goal: GoalProgress{
			GoalMinutes:  opts.GoalMinutes,
			TodayMinutes: todayMinutes,
			Met:          opts.GoalMinutes > 0 && todayMinutes >= opts.GoalMinutes,
		},
		Queue: QueueSummary{
			NeverReviewed: len(q.NeverReviewed),
			Overdue:       len(q.Overdue),
			Due:           len(q.Due),
			Upcoming:      len(q.Upcoming),
			Fresh:         len(q.Fresh),
			MostUrgent:    mostUrgent(q, opts.MostUrgentLimit),
		},
		Readiness: make([]readiness.Report, 0, len(subjects)),
	}

	for i := range subjects {
		d.Readiness = append(d.Readiness, readiness.Evaluate(&subjects[i], asOf))
	}
	return d
}

// mostUrgent flattens the queue in urgency order: never-reviewed first
// (new-content triage), then overdue, then due.
func mostUrgent(q *scheduler.Queue, limit int) []scheduler.Entry {
	out := make([]scheduler.Entry, 0, limit)
	for _, bucket := range [][]scheduler.Entry{q.NeverReviewed, q.Overdue, q.Due} {
		for _, e := range bucket {
			if len(out) == limit {
				return out
			}
			out = append(out, e)
		}
	}
	return out
}

func minutesOn(sessions []model.TimerSession, day time.Time) int {
	total := 0
	for _, s := range stats.MinutesByDay(sessions, 1, day) {
		total += s.Minutes
	}
	return total
}
