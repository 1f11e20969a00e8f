package memory

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/revisio/revisio/internal/model"
)

// Grade is the learner's self-rated recall quality on a review. It is a
// closed set; anything outside [Again, Easy] is rejected before any state
// mutation.
type Grade int

const (
	Again Grade = 1 // failed recall
	Hard  Grade = 2 // recalled with serious effort
	Good  Grade = 3 // recalled after hesitation
	Easy  Grade = 4 // effortless recall
)

// ValidGrade reports whether g is in the defined set.
func ValidGrade(g Grade) bool { return g >= Again && g <= Easy }

func (g Grade) String() string {
	switch g {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	}
	return fmt.Sprintf("grade(%d)", int(g))
}

// ParseGrade accepts the textual form used by the CLI and API.
func ParseGrade(s string) (Grade, error) {
	switch s {
	case "again":
		return Again, nil
	case "hard":
		return Hard, nil
	case "good":
		return Good, nil
	case "easy":
		return Easy, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, s)
}

var (
	// ErrInvalidGrade marks a grade value outside the defined set.
	ErrInvalidGrade = errors.New("invalid grade")
	// ErrInvalidState marks a malformed memory state (NaN, non-positive
	// stability, difficulty out of range).
	ErrInvalidState = errors.New("invalid memory state")
)

// Model constants. These are policy choices, fixed here so the scheduler,
// tests and any future tuning all read from one place.
const (
	// TargetRetention is the retrievability at which a topic comes due.
	TargetRetention = 0.9

	// MinStability keeps the forgetting curve non-degenerate.
	MinStability = 0.1

	MinDifficulty  = 1.0
	MaxDifficulty  = 10.0
	meanDifficulty = 5.0

	// Difficulty drifts toward the mean by this fraction every review,
	// so early mis-seeds wash out over time.
	difficultyReversion = 0.05

	// failFactor is the share of stability retained after a failed
	// recall. Failure shrinks, never resets to zero.
	failFactor = 0.3

	// Stability growth on successful recall:
	//   S' = S * (1 + growthScale * (11-D)/10 * S^-stabilityDecay *
	//            (e^(retrievabilityGain*(1-R)) - 1) * penalty)
	// Lower retrievability at review time means a bigger gain (the
	// spacing effect); higher difficulty and higher existing stability
	// damp it.
	growthScale        = 3.0
	stabilityDecay     = 0.2
	retrievabilityGain = 1.5
	hardPenalty        = 0.6
	easyBonus          = 1.4
)

// Initial seeds applied on the first-ever review, keyed by grade. Harder
// first impressions start less stable and more difficult.
var (
	initialStability  = map[Grade]float64{Again: 0.6, Hard: 1.2, Good: 2.5, Easy: 4.0}
	initialDifficulty = map[Grade]float64{Again: 8.0, Hard: 6.5, Good: 5.0, Easy: 3.5}

	// Per-review difficulty delta before mean reversion.
	difficultyDelta = map[Grade]float64{Again: 1.2, Hard: 0.5, Good: -0.1, Easy: -0.6}
)

// CheckState validates a stored memory state. A nil state is valid (the
// topic was never reviewed).
func CheckState(s *model.MemoryState) error {
	if s == nil {
		return nil
	}
	if math.IsNaN(s.Stability) || math.IsInf(s.Stability, 0) || s.Stability <= 0 {
		return fmt.Errorf("%w: stability %v", ErrInvalidState, s.Stability)
	}
	if math.IsNaN(s.Difficulty) || s.Difficulty < MinDifficulty || s.Difficulty > MaxDifficulty {
		return fmt.Errorf("%w: difficulty %v", ErrInvalidState, s.Difficulty)
	}
	if s.ReviewCount < 0 {
		return fmt.Errorf("%w: review count %d", ErrInvalidState, s.ReviewCount)
	}
	return nil
}

// Retrievability returns the probability, at asOf, that the topic can
// still be recalled. A nil state yields 0: no data means "review needed".
//
// Power-law forgetting curve: R = (1 + t / (9 S))^-1, with t the
// calendar-day difference since the last review, floored at 0 so reviews
// dated in the future read as fully fresh.
func Retrievability(s *model.MemoryState, asOf time.Time) (float64, error) {
	if s == nil {
		return 0, nil
	}
	if err := CheckState(s); err != nil {
		return 0, err
	}
	elapsed := model.DaysBetween(s.LastReview, asOf)
	if elapsed <= 0 {
		return 1.0, nil
	}
	return 1.0 / (1.0 + float64(elapsed)/(9.0*s.Stability)), nil
}

// NextState applies a grading event and returns the new memory state.
// The input state is not modified. A nil state means this is the topic's
// first review and the seed tables apply.
func NextState(s *model.MemoryState, g Grade, asOf time.Time) (*model.MemoryState, error) {
	if !ValidGrade(g) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGrade, int(g))
	}
	if err := CheckState(s); err != nil {
		return nil, err
	}

	if s == nil {
		return &model.MemoryState{
			Stability:   initialStability[g],
			Difficulty:  initialDifficulty[g],
			LastReview:  asOf,
			ReviewCount: 1,
		}, nil
	}

	r, err := Retrievability(s, asOf)
	if err != nil {
		return nil, err
	}

	next := &model.MemoryState{
		Difficulty:  nextDifficulty(s.Difficulty, g),
		LastReview:  asOf,
		ReviewCount: s.ReviewCount + 1,
	}
	if g == Again {
		next.Stability = math.Max(MinStability, s.Stability*failFactor)
	} else {
		next.Stability = nextStability(s.Stability, next.Difficulty, r, g)
	}
	return next, nil
}

func nextDifficulty(d float64, g Grade) float64 {
	nd := d + difficultyDelta[g]
	nd += difficultyReversion * (meanDifficulty - nd)
	return clamp(nd, MinDifficulty, MaxDifficulty)
}

func nextStability(s, d, r float64, g Grade) float64 {
	penalty := 1.0
	switch g {
	case Hard:
		penalty = hardPenalty
	case Easy:
		penalty = easyBonus
	}
	growth := growthScale *
		(11.0 - d) / 10.0 *
		math.Pow(s, -stabilityDecay) *
		(math.Exp(retrievabilityGain*(1.0-r)) - 1.0) *
		penalty
	return math.Max(MinStability, s*(1.0+growth))
}

// NextReviewInterval returns the whole days until retrievability decays
// to TargetRetention, from the curve solved for t:
//   t = 9 S (1/target - 1)
// Rounded up, minimum one day. A nil state is due immediately.
func NextReviewInterval(s *model.MemoryState) (int, error) {
	if s == nil {
		return 1, nil
	}
	if err := CheckState(s); err != nil {
		return 0, err
	}
	days := 9.0 * s.Stability * (1.0/TargetRetention - 1.0)
	iv := int(math.Ceil(days))
	if iv < 1 {
		iv = 1
	}
	return iv, nil
}

// DueDate is the calendar date the topic next comes due.
func DueDate(s *model.MemoryState) (time.Time, error) {
	if s == nil {
		return time.Time{}, nil
	}
	iv, err := NextReviewInterval(s)
	if err != nil {
		return time.Time{}, err
	}
	return model.DateOnly(s.LastReview).AddDate(0, 0, iv), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
