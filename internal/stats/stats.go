// Package stats derives time-bucketed and streak statistics from the
// immutable timer-session log. Every function here is total: empty input
// yields zero-valued, well-formed output, never an error.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/revisio/revisio/internal/model"
)

// dayFormat keys daily buckets. Sessions are bucketed by the start
// time's own calendar date, so day boundaries follow the learner's
// clock, not UTC.
const dayFormat = "2006-01-02"

// DayMinutes is one day's study total.
type DayMinutes struct {
	Date    time.Time `json:"date"`
	Minutes int       `json:"minutes"`
}

// SubjectMinutes is one subject's share of total study time.
type SubjectMinutes struct {
	SubjectID   string  `json:"subject_id"`
	SubjectName string  `json:"subject_name"`
	Minutes     int     `json:"minutes"`
	Percentage  float64 `json:"percentage"`
}

// dailyTotals sums session minutes per calendar day. Keyed by formatted
// date rather than time.Time so sessions from different locations on the
// same calendar day land in the same bucket.
func dailyTotals(sessions []model.TimerSession) map[string]int {
	totals := make(map[string]int, len(sessions))
	for _, s := range sessions {
		if s.Duration <= 0 {
			continue
		}
		totals[s.StartedAt.Format(dayFormat)] += s.Duration
	}
	return totals
}

// MinutesByDay returns one entry per day for the rangeDays days ending at
// asOf inclusive, zero-filled and ordered chronologically ascending.
func MinutesByDay(sessions []model.TimerSession, rangeDays int, asOf time.Time) []DayMinutes {
	if rangeDays <= 0 {
		return []DayMinutes{}
	}
	totals := dailyTotals(sessions)
	end := model.DateOnly(asOf)

	out := make([]DayMinutes, 0, rangeDays)
	for i := rangeDays - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)
		out = append(out, DayMinutes{Date: day, Minutes: totals[day.Format(dayFormat)]})
	}
	return out
}

// MinutesBySubject breaks total study time down per subject. Subjects
// with zero recorded minutes are excluded. Percentages are rounded to one
// decimal and guard the zero-total case (no 0/0).
func MinutesBySubject(sessions []model.TimerSession, subjects []model.Subject) []SubjectMinutes {
	names := make(map[string]string, len(subjects))
	for _, s := range subjects {
		names[s.ID] = s.Name
	}

	minutes := make(map[string]int)
	total := 0
	for _, s := range sessions {
		if s.Duration <= 0 {
			continue
		}
		if _, ok := names[s.SubjectID]; !ok {
			continue
		}
		minutes[s.SubjectID] += s.Duration
		total += s.Duration
	}

	out := make([]SubjectMinutes, 0, len(minutes))
	for _, sub := range subjects {
		m := minutes[sub.ID]
		if m == 0 {
			continue
		}
		pct := 0.0
		if total > 0 {
			pct = math.Round(float64(m)/float64(total)*1000) / 10
		}
		out = append(out, SubjectMinutes{
			SubjectID:   sub.ID,
			SubjectName: sub.Name,
			Minutes:     m,
			Percentage:  pct,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Minutes > out[j].Minutes })
	return out
}

// CurrentStreak counts consecutive calendar days with any study (>0
// minutes) ending at asOf. Strict: if asOf itself has no minutes the
// streak is 0, regardless of yesterday. Grace for "haven't logged today
// yet" belongs to the display layer, which can call this with yesterday's
// date instead.
func CurrentStreak(sessions []model.TimerSession, asOf time.Time) int {
	totals := dailyTotals(sessions)
	day := model.DateOnly(asOf)

	streak := 0
	for totals[day.Format(dayFormat)] > 0 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// LongestStreak scans the whole session history for the maximal run of
// consecutive days with any study.
func LongestStreak(sessions []model.TimerSession) int {
	totals := dailyTotals(sessions)
	if len(totals) == 0 {
		return 0
	}

	days := make([]string, 0, len(totals))
	for d := range totals {
		days = append(days, d)
	}
	sort.Strings(days) // lexicographic == chronological for this format

	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		prev, _ := time.Parse(dayFormat, days[i-1])
		cur, _ := time.Parse(dayFormat, days[i])
		if model.DaysBetween(prev, cur) == 1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// TotalMinutes sums all positive session durations.
func TotalMinutes(sessions []model.TimerSession) int {
	total := 0
	for _, s := range sessions {
		if s.Duration > 0 {
			total += s.Duration
		}
	}
	return total
}
