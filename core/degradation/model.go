// Package degradation linearizes lithium-iron-phosphate cell wear for use
// inside a cost-minimizing LP.
//
// Wear per timestep is the maximum of a cyclic term, proportional to energy
// throughput, and a calendar term, proportional to elapsed time. Both the
// absolute value in the throughput and the max() are expressed as linear
// relaxations whose tightness is driven by the objective: the wear variable
// carries a positive cost, so any optimal solution pins it to the larger of
// the two bounds.
package degradation

import (
	"fmt"

	"github.com/kilianp07/bessopt/core/model"
)

const hoursPerYear = 8760

// Model precomputes the coefficients of the linearized wear terms for one
// battery.
type Model struct {
	capacityKWh float64
	rho         float64 // percent wear per unit of absolute DOD
	calPerHour  float64 // percent wear per hour at rest
	costPerPct  float64 // NOK per percent of wear
}

// New derives a Model from validated degradation parameters.
func New(p model.DegradationParams, capacityKWh float64) (*Model, error) {
	if capacityKWh <= 0 {
		return nil, fmt.Errorf("degradation model requires positive capacity, got %v", capacityKWh)
	}
	if p.CycleLife <= 0 || p.CalendarLifeYears <= 0 || p.EndOfLifePercent <= 0 {
		return nil, fmt.Errorf("degradation parameters must be positive: cycle life %v, calendar life %v, end of life %v",
			p.CycleLife, p.CalendarLifeYears, p.EndOfLifePercent)
	}
	return &Model{
		capacityKWh: capacityKWh,
		rho:         p.EndOfLifePercent / p.CycleLife,
		calPerHour:  p.EndOfLifePercent / (p.CalendarLifeYears * hoursPerYear),
		costPerPct:  p.CellCostPerKWh * capacityKWh / 100,
	}, nil
}

// CapacityKWh returns the capacity the model was built for.
func (m *Model) CapacityKWh() float64 { return m.capacityKWh }

// Rho is the cyclic wear in percent per unit of absolute depth of discharge.
func (m *Model) Rho() float64 { return m.rho }

// CalendarStepPercent is the constant calendar wear over one timestep.
func (m *Model) CalendarStepPercent(stepHours float64) float64 {
	return m.calPerHour * stepHours
}

// CostPerPercent converts wear percent into money: cell cost times capacity
// over one hundred.
func (m *Model) CostPerPercent() float64 { return m.costPerPct }

// Cost prices a total wear figure in percent.
func (m *Model) Cost(totalPercent float64) float64 { return totalPercent * m.costPerPct }

// EquivalentFullCycles converts total energy throughput (charged plus
// discharged kWh) into full-cycle equivalents.
func (m *Model) EquivalentFullCycles(throughputKWh float64) float64 {
	return throughputKWh / (2 * m.capacityKWh)
}
