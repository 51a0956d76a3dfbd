package optimizer

import "time"

// Solution is the deserialized primal result of one window solve. When
// Feasible is false every array is zero-filled and Message carries the
// solver diagnostic; callers must not fold such a solution into carried
// state.
type Solution struct {
	Feasible bool
	Message  string

	Objective float64

	WindowStart time.Time
	WindowEnd   time.Time
	StepHours   float64

	ChargeKW    []float64
	DischargeKW []float64
	GridImport  []float64
	GridExport  []float64
	EnergyKWh   []float64
	CurtailKW   []float64

	// Wear arrays; nil when degradation is disabled.
	DeltaPosKWh  []float64
	DeltaNegKWh  []float64
	DODFrac      []float64
	CycWearPct   []float64
	TotalWearPct []float64

	PeakKW      float64
	BracketFill []float64

	EnergyCost      float64
	TariffCost      float64
	DegradationCost float64

	MaxImportKW float64
	FinalSoCKWh float64
	TotalWear   float64 // percent over the window
}

// negTol absorbs tiny negative values the simplex leaves on variables that
// are zero at the optimum.
const negTol = 1e-7

func chop(v float64) float64 {
	if v < 0 && v > -negTol {
		return 0
	}
	return v
}

// extract maps the raw variable vector back into named arrays and computes
// the cost breakdown.
func extract(p *Problem, x []float64, objective float64) Solution {
	l := p.Layout
	sol := Solution{
		Feasible:    true,
		Objective:   objective,
		WindowStart: p.Window.Start(),
		WindowEnd:   p.Window.End(),
		StepHours:   p.StepHours,
		ChargeKW:    block(x, l.Charge, l.T),
		DischargeKW: block(x, l.Discharge, l.T),
		GridImport:  block(x, l.GridImport, l.T),
		GridExport:  block(x, l.GridExport, l.T),
		EnergyKWh:   block(x, l.Energy, l.T),
		CurtailKW:   block(x, l.Curtail, l.T),
		PeakKW:      chop(x[l.Peak]),
		BracketFill: block(x, l.Fill, l.Brackets),
	}
	if l.Wear {
		sol.DeltaPosKWh = block(x, l.DeltaPos, l.T)
		sol.DeltaNegKWh = block(x, l.DeltaNeg, l.T)
		sol.DODFrac = block(x, l.DOD, l.T)
		sol.CycWearPct = block(x, l.CycWear, l.T)
		sol.TotalWearPct = block(x, l.TotalWear, l.T)
	}

	for i := 0; i < l.T; i++ {
		sol.EnergyCost += (sol.GridImport[i]*p.ImportPrices[i] - sol.GridExport[i]*p.ExportPrices[i]) * p.StepHours
		if sol.GridImport[i] > sol.MaxImportKW {
			sol.MaxImportKW = sol.GridImport[i]
		}
	}
	sol.TariffCost = p.Brackets.LinearCostAt(sol.PeakKW)
	if l.Wear {
		for i := 0; i < l.T; i++ {
			sol.TotalWear += sol.TotalWearPct[i]
		}
		sol.DegradationCost = p.Wear.Cost(sol.TotalWear)
	}
	sol.FinalSoCKWh = sol.EnergyKWh[l.T-1]
	return sol
}

func block(x []float64, off, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = chop(x[off+i])
	}
	return out
}

// failed builds the zero-filled solution returned when the solver reports
// infeasibility or does not converge.
func failed(p *Problem, msg string) Solution {
	l := p.Layout
	sol := Solution{
		Feasible:    false,
		Message:     msg,
		WindowStart: p.Window.Start(),
		WindowEnd:   p.Window.End(),
		StepHours:   p.StepHours,
		ChargeKW:    make([]float64, l.T),
		DischargeKW: make([]float64, l.T),
		GridImport:  make([]float64, l.T),
		GridExport:  make([]float64, l.T),
		EnergyKWh:   make([]float64, l.T),
		CurtailKW:   make([]float64, l.T),
		BracketFill: make([]float64, l.Brackets),
	}
	if l.Wear {
		sol.DeltaPosKWh = make([]float64, l.T)
		sol.DeltaNegKWh = make([]float64, l.T)
		sol.DODFrac = make([]float64, l.T)
		sol.CycWearPct = make([]float64, l.T)
		sol.TotalWearPct = make([]float64, l.T)
	}
	return sol
}
