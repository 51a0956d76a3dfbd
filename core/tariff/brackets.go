// Package tariff models progressive power-demand tariffs and time-varying
// energy rates.
//
// A demand tariff bills a fixed monthly amount depending on which power
// bracket the monthly peak import falls into. For use inside a linear
// program the step function is relaxed into per-bracket fill fractions:
// with widths w and incremental costs q, any fill vector z in [0,1]^N
// ordered z[i] <= z[i-1] reconstructs a peak sum(w[i]*z[i]) and a cost
// sum(q[i]*z[i]). Because incremental costs are non-decreasing and the
// objective minimizes cost, the solver fills brackets bottom-up and the
// relaxation matches the piecewise-linear envelope of the true tariff.
package tariff

import (
	"fmt"
	"math"
)

// Bracket is one tier of a demand-tariff schedule. CostPerMonth is the
// cumulative monthly charge billed when the peak lands in this tier.
type Bracket struct {
	FromKW       float64 `json:"from_kw" yaml:"from_kw"`
	ToKW         float64 `json:"to_kw" yaml:"to_kw"`
	CostPerMonth float64 `json:"cost_per_month" yaml:"cost_per_month"`
}

// Schedule is an ordered demand-tariff bracket list.
type Schedule struct {
	Brackets []Bracket `json:"brackets" yaml:"brackets"`
}

// Validate enforces the preconditions the LP relaxation relies on: brackets
// sorted and contiguous from zero, finite uppers, and non-negative,
// non-decreasing incremental costs. A schedule with decreasing incremental
// costs would let the solver fill a cheap high bracket before a low one and
// is rejected outright.
func (s Schedule) Validate() error {
	if len(s.Brackets) == 0 {
		return fmt.Errorf("tariff schedule has no brackets")
	}
	prevTo := 0.0
	prevCost := 0.0
	prevInc := 0.0
	for i, b := range s.Brackets {
		if math.IsInf(b.ToKW, 0) || math.IsNaN(b.ToKW) || math.IsNaN(b.FromKW) {
			return fmt.Errorf("bracket %d: bounds must be finite", i)
		}
		if b.FromKW != prevTo {
			return fmt.Errorf("bracket %d: starts at %v kW, want %v kW (schedule must be contiguous from zero)", i, b.FromKW, prevTo)
		}
		if b.ToKW <= b.FromKW {
			return fmt.Errorf("bracket %d: upper bound %v kW not above lower %v kW", i, b.ToKW, b.FromKW)
		}
		if b.CostPerMonth < prevCost {
			return fmt.Errorf("bracket %d: cumulative cost %v below previous %v", i, b.CostPerMonth, prevCost)
		}
		inc := b.CostPerMonth - prevCost
		if i > 0 && inc < prevInc {
			return fmt.Errorf("bracket %d: incremental cost %v below previous %v, fill order would not be monotone", i, inc, prevInc)
		}
		prevTo = b.ToKW
		prevCost = b.CostPerMonth
		prevInc = inc
	}
	return nil
}

// BracketSet is the derived linear representation of a Schedule.
type BracketSet struct {
	widths []float64
	incs   []float64
	sched  Schedule
}

// NewBracketSet validates the schedule and derives (width, incremental cost)
// pairs.
func NewBracketSet(s Schedule) (*BracketSet, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("tariff schedule: %w", err)
	}
	n := len(s.Brackets)
	bs := &BracketSet{
		widths: make([]float64, n),
		incs:   make([]float64, n),
		sched:  s,
	}
	prevCost := 0.0
	for i, b := range s.Brackets {
		bs.widths[i] = b.ToKW - b.FromKW
		bs.incs[i] = b.CostPerMonth - prevCost
		prevCost = b.CostPerMonth
	}
	return bs, nil
}

// N returns the number of brackets.
func (b *BracketSet) N() int { return len(b.widths) }

// Widths returns the bracket widths in kW. The slice must not be mutated.
func (b *BracketSet) Widths() []float64 { return b.widths }

// IncrementalCosts returns the per-bracket cost increments. The slice must
// not be mutated.
func (b *BracketSet) IncrementalCosts() []float64 { return b.incs }

// TopKW is the highest peak the schedule covers.
func (b *BracketSet) TopKW() float64 { return b.sched.Brackets[len(b.sched.Brackets)-1].ToKW }

// StepCostAt returns the billed monthly cost for a peak, i.e. the cumulative
// cost of the bracket containing it. Peaks at a boundary bill the lower
// bracket; peaks above the schedule bill the top bracket.
func (b *BracketSet) StepCostAt(peakKW float64) float64 {
	if peakKW <= 0 {
		return b.sched.Brackets[0].CostPerMonth
	}
	for _, br := range b.sched.Brackets {
		if peakKW <= br.ToKW {
			return br.CostPerMonth
		}
	}
	return b.sched.Brackets[len(b.sched.Brackets)-1].CostPerMonth
}

// LinearCostAt evaluates the piecewise-linear relaxation at a peak. This is
// the cost an ordered fill vector reconstructs; it equals StepCostAt exactly
// at bracket upper boundaries and interpolates inside a bracket.
func (b *BracketSet) LinearCostAt(peakKW float64) float64 {
	remaining := peakKW
	cost := 0.0
	for i := range b.widths {
		if remaining <= 0 {
			break
		}
		fill := math.Min(remaining, b.widths[i])
		cost += b.incs[i] * fill / b.widths[i]
		remaining -= fill
	}
	return cost
}

// MarginalRate returns the incremental cost per kW of the bracket containing
// the peak. Used by rolling-horizon peak-penalty policies.
func (b *BracketSet) MarginalRate(peakKW float64) float64 {
	for i, br := range b.sched.Brackets {
		if peakKW < br.ToKW {
			return b.incs[i] / b.widths[i]
		}
	}
	last := len(b.widths) - 1
	return b.incs[last] / b.widths[last]
}
