// Package readiness forecasts exam preparedness per subject: a 0-100
// readiness score, a predicted grade on the 2-6 scale, a categorical risk
// status, and a Monte-Carlo grade band. All functions are total over
// well-formed input; an empty subject degrades to zeroes, never an error.
package readiness

import (
	"math"
	"sort"
	"time"

	"github.com/revisio/revisio/internal/memory"
	"github.com/revisio/revisio/internal/model"
)

// Status is the categorical exam-risk classification.
type Status string

const (
	StatusReady   Status = "ready"
	StatusOnTrack Status = "on_track"
	StatusAtRisk  Status = "at_risk"
	StatusBehind  Status = "behind"
)

// Grading scale bounds (Swiss scale, 6 best, 4 pass).
const (
	GradeMin = 2.0
	GradeMax = 6.0
)

// Score blend weights. Fixed policy constants: coverage and average
// retrievability carry equal weight, exam proximity the remainder. The
// preparedness term equals 1 when coverage is complete regardless of the
// date, so a close exam only depresses the score while coverage is
// incomplete.
const (
	coverageWeight  = 0.4
	retentionWeight = 0.4
	urgencyWeight   = 0.2

	// urgencyRampDays is the horizon over which exam proximity matters.
	// At or beyond it the preparedness term is 1.
	urgencyRampDays = 30.0
)

// Status decision table bands, plus the urgency override: with the exam
// urgentWithinDays away or less and readiness below readyBand, the status
// is forced down to at least at_risk.
const (
	readyBand   = 85.0
	onTrackBand = 60.0
	atRiskBand  = 35.0

	urgentWithinDays = 3
)

// Simulation shape: per-topic grade samples are normal around the topic's
// grade average with spread shrinking as review count grows.
const (
	baseSigma = 1.2
)

// Estimated grade per status, used where a topic has no quiz history yet.
var statusGrade = map[model.TopicStatus]float64{
	model.StatusUntouched:  2.5,
	model.StatusStruggling: 3.0,
	model.StatusLearning:   4.5,
	model.StatusMastered:   5.5,
}

// Rand is the injectable random source for Simulate. *rand.Rand
// satisfies it; tests pass a seeded instance for reproducible bands.
type Rand interface {
	NormFloat64() float64
}

// Report is the full readiness assessment for one subject.
type Report struct {
	SubjectID      string  `json:"subject_id"`
	SubjectName    string  `json:"subject_name"`
	Coverage       float64 `json:"coverage"`        // 0-1
	Retention      float64 `json:"retention"`       // 0-1, mean retrievability
	Readiness      float64 `json:"readiness"`       // 0-100
	PredictedGrade float64 `json:"predicted_grade"` // 2.0-6.0
	Status         Status  `json:"status"`
	DaysUntilExam  int     `json:"days_until_exam"` // -1 when no exam set
}

// Band is the simulated grade range for a subject.
type Band struct {
	Expected  float64 `json:"expected"`
	BestCase  float64 `json:"best_case"`  // 95th percentile
	WorstCase float64 `json:"worst_case"` // 5th percentile
	Trials    int     `json:"trials"`
}

// Coverage is the fraction of topics marked mastered. A plain ratio with
// no memory-decay weighting; the decay signal enters the blend separately.
func Coverage(sub *model.Subject) float64 {
	if len(sub.Topics) == 0 {
		return 0
	}
	mastered := 0
	for _, t := range sub.Topics {
		if t.Status == model.StatusMastered {
			mastered++
		}
	}
	return float64(mastered) / float64(len(sub.Topics))
}

// Retention is the mean retrievability across all topics at asOf. Topics
// never reviewed contribute 0; topics with malformed state likewise (the
// store validates on write, this only guards old rows).
func Retention(sub *model.Subject, asOf time.Time) float64 {
	if len(sub.Topics) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range sub.Topics {
		r, err := memory.Retrievability(t.Memory, asOf)
		if err != nil {
			continue
		}
		sum += r
	}
	return sum / float64(len(sub.Topics))
}

// ReadinessPercent blends coverage, retention and exam proximity into a
// 0-100 score:
//
//	prep  = coverage + (1-coverage) * min(1, daysUntil/urgencyRampDays)
//	score = 100 * (cw*coverage + rw*retention + uw*prep)
//
// Monotone: more coverage or retention never lowers the score; a closer
// exam with incomplete coverage never raises it. Without an exam date the
// preparedness term is neutral (1).
func ReadinessPercent(sub *model.Subject, asOf time.Time) float64 {
	cov := Coverage(sub)
	ret := Retention(sub, asOf)

	prep := 1.0
	if days, ok := sub.DaysUntilExam(asOf); ok {
		ramp := math.Min(1, float64(days)/urgencyRampDays)
		prep = cov + (1-cov)*ramp
	}

	score := 100 * (coverageWeight*cov + retentionWeight*ret + urgencyWeight*prep)
	return math.Min(100, math.Max(0, score))
}

// PredictedGrade estimates the exam grade from historical quiz averages,
// scaled by readiness. Topics without quiz history fall back to a
// per-status estimate. An empty subject maps readiness straight onto the
// grade scale.
func PredictedGrade(sub *model.Subject, asOf time.Time) float64 {
	readiness := ReadinessPercent(sub, asOf)
	if len(sub.Topics) == 0 {
		return clampGrade(GradeMin + (GradeMax-GradeMin)*readiness/100)
	}

	sum := 0.0
	for _, t := range sub.Topics {
		sum += topicGrade(&t)
	}
	perf := sum / float64(len(sub.Topics))

	// Full readiness keeps the historical average; low readiness drags
	// the estimate down toward 70% of it.
	return clampGrade(perf * (0.7 + 0.3*readiness/100))
}

// StatusFor applies the decision table to a readiness score. hasExam and
// daysUntil drive the urgency override; pass hasExam=false when the
// subject has no exam date.
func StatusFor(readiness float64, daysUntil int, hasExam bool) Status {
	var s Status
	switch {
	case readiness >= readyBand:
		s = StatusReady
	case readiness >= onTrackBand:
		s = StatusOnTrack
	case readiness >= atRiskBand:
		s = StatusAtRisk
	default:
		s = StatusBehind
	}

	if hasExam && daysUntil <= urgentWithinDays && readiness < readyBand {
		if s == StatusReady || s == StatusOnTrack {
			s = StatusAtRisk
		}
	}
	return s
}

// Evaluate produces the full readiness report for one subject.
func Evaluate(sub *model.Subject, asOf time.Time) Report {
	rep := Report{
		SubjectID:     sub.ID,
		SubjectName:   sub.Name,
		Coverage:      Coverage(sub),
		Retention:     Retention(sub, asOf),
		DaysUntilExam: -1,
	}
	rep.Readiness = ReadinessPercent(sub, asOf)
	rep.PredictedGrade = PredictedGrade(sub, asOf)

	days, hasExam := sub.DaysUntilExam(asOf)
	if hasExam {
		rep.DaysUntilExam = days
	}
	rep.Status = StatusFor(rep.Readiness, days, hasExam)
	return rep
}

// Simulate runs a Monte-Carlo forecast of the final grade. Each trial
// samples every topic's contribution from a normal distribution centered
// on its grade average, with spread baseSigma/sqrt(1+reviews) so heavily
// reviewed topics contribute tighter estimates. Reports the mean and the
// 5th/95th percentiles across trials.
//
// The random source is injected; with a seeded source the band is fully
// reproducible.
func Simulate(sub *model.Subject, trials int, rng Rand) Band {
	if trials <= 0 || len(sub.Topics) == 0 {
		g := clampGrade(subjectGradeMean(sub))
		return Band{Expected: g, BestCase: g, WorstCase: g, Trials: 0}
	}

	results := make([]float64, trials)
	for i := 0; i < trials; i++ {
		sum := 0.0
		for j := range sub.Topics {
			t := &sub.Topics[j]
			mean := topicGrade(t)
			sigma := baseSigma / math.Sqrt(1+float64(reviewCount(t)))
			sum += clampGrade(mean + sigma*rng.NormFloat64())
		}
		results[i] = sum / float64(len(sub.Topics))
	}
	sort.Float64s(results)

	total := 0.0
	for _, g := range results {
		total += g
	}

	return Band{
		Expected:  total / float64(trials),
		WorstCase: results[percentileIndex(trials, 0.05)],
		BestCase:  results[percentileIndex(trials, 0.95)],
		Trials:    trials,
	}
}

func percentileIndex(n int, p float64) int {
	i := int(p * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

func topicGrade(t *model.Topic) float64 {
	if g := t.GradeAverage(); g > 0 {
		return g
	}
	if g, ok := statusGrade[t.Status]; ok {
		return g
	}
	return GradeMin
}

func reviewCount(t *model.Topic) int {
	if t.Memory == nil {
		return 0
	}
	return t.Memory.ReviewCount
}

func subjectGradeMean(sub *model.Subject) float64 {
	if len(sub.Topics) == 0 {
		return GradeMin
	}
	sum := 0.0
	for i := range sub.Topics {
		sum += topicGrade(&sub.Topics[i])
	}
	return sum / float64(len(sub.Topics))
}

func clampGrade(g float64) float64 {
	return math.Min(GradeMax, math.Max(GradeMin, g))
}
