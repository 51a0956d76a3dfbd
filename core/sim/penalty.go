package sim

import (
	"time"

	"github.com/kilianp07/bessopt/core/tariff"
)

// PeakPenalty converts the monthly demand tariff into a per-kW objective
// coefficient for myopic rolling-horizon solves. The policy sees the peak
// already committed this month and the tick being solved.
type PeakPenalty interface {
	Coefficient(currentPeakKW float64, at time.Time) float64
}

// ZeroPenalty disables peak shaving in the rolling objective.
type ZeroPenalty struct{}

// Coefficient implements PeakPenalty.
func (ZeroPenalty) Coefficient(float64, time.Time) float64 { return 0 }

// MarginalBracketPenalty charges the incremental rate of the tariff bracket
// the current monthly peak sits in. Raising the peak within a short window
// then costs roughly what it would cost the month. This is a heuristic
// stand-in for the true month-end step cost and carries no optimality
// guarantee against the full-horizon solve.
type MarginalBracketPenalty struct {
	Brackets *tariff.BracketSet
	// Scale lets callers soften or sharpen the incentive; zero means 1.
	Scale float64
}

// Coefficient implements PeakPenalty.
func (p MarginalBracketPenalty) Coefficient(currentPeakKW float64, _ time.Time) float64 {
	scale := p.Scale
	if scale == 0 {
		scale = 1
	}
	return p.Brackets.MarginalRate(currentPeakKW) * scale
}
