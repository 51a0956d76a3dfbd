package optimizer

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/bessopt/core/degradation"
	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/core/tariff"
)

// Request carries everything needed to assemble the LP for one forecast
// window. Initial SOC and peak are the state carried over from the previous
// window.
type Request struct {
	Window   model.ForecastWindow
	Battery  model.BatteryConfig
	Grid     model.GridConfig
	Brackets *tariff.BracketSet
	Rates    tariff.EnergyRates

	InitialSoCKWh float64
	InitialPeakKW float64

	// BracketCosts puts the bracket cost increments into the objective
	// (full-horizon pricing). PeakPenaltyPerKW adds a linear charge on the
	// peak variable instead (rolling-horizon pricing). Exactly one of the
	// two is normally active.
	BracketCosts     bool
	PeakPenaltyPerKW float64
}

// Problem is an assembled LP in general form: minimize Obj subject to
// AEq*x = BEq, AUb*x <= BUb. Variable bounds are encoded as inequality rows
// so the whole problem fits the solver's Convert entry point.
type Problem struct {
	Layout Layout
	Obj    []float64
	AEq    *mat.Dense
	BEq    []float64
	AUb    *mat.Dense
	BUb    []float64

	Window       model.ForecastWindow
	Brackets     *tariff.BracketSet
	Wear         *degradation.Model
	ImportPrices []float64
	ExportPrices []float64
	StepHours    float64
}

type rowSet struct {
	nv   int
	rows []float64
	rhs  []float64
}

func newRowSet(nv int) *rowSet { return &rowSet{nv: nv} }

// add appends one constraint row given as sparse (index, coefficient) pairs.
func (r *rowSet) add(rhs float64, terms ...term) {
	row := make([]float64, r.nv)
	for _, t := range terms {
		row[t.i] = t.c
	}
	r.rows = append(r.rows, row...)
	r.rhs = append(r.rhs, rhs)
}

func (r *rowSet) matrix() (*mat.Dense, []float64) {
	if len(r.rhs) == 0 {
		return nil, nil
	}
	return mat.NewDense(len(r.rhs), r.nv, r.rows), r.rhs
}

type term struct {
	i int
	c float64
}

// Build assembles the LP for the request. All failure modes here are
// configuration errors; infeasibility of a well-formed problem is only
// discovered at solve time.
func Build(req Request) (*Problem, error) {
	if err := req.Window.Validate(); err != nil {
		return nil, fmt.Errorf("forecast window: %w", err)
	}
	if err := req.Battery.Validate(); err != nil {
		return nil, fmt.Errorf("battery config: %w", err)
	}
	if err := req.Grid.Validate(); err != nil {
		return nil, fmt.Errorf("grid config: %w", err)
	}
	if err := req.Rates.Validate(); err != nil {
		return nil, fmt.Errorf("energy rates: %w", err)
	}
	if req.Brackets == nil {
		return nil, fmt.Errorf("bracket set is required")
	}
	if req.InitialPeakKW > req.Brackets.TopKW() {
		return nil, fmt.Errorf("initial peak %v kW exceeds top tariff bracket %v kW", req.InitialPeakKW, req.Brackets.TopKW())
	}

	bat := req.Battery
	var wear *degradation.Model
	if bat.DegradationEnabled() {
		m, err := degradation.New(*bat.Degradation, bat.CapacityKWh)
		if err != nil {
			return nil, err
		}
		wear = m
	}

	t := req.Window.Steps()
	n := req.Brackets.N()
	l := NewLayout(t, n, wear != nil)
	dt := req.Window.StepHours

	impPrice, expPrice := req.Rates.PriceVectors(req.Window)

	// Carried-over state can sit a solver tolerance outside the SOC
	// envelope; clamp instead of failing the whole window.
	e0 := clamp(req.InitialSoCKWh, bat.MinEnergyKWh(), bat.MaxEnergyKWh())

	obj := make([]float64, l.NumVars)
	for i := 0; i < t; i++ {
		obj[l.GridImport+i] = impPrice[i] * dt
		obj[l.GridExport+i] = -expPrice[i] * dt
	}
	if wear != nil {
		for i := 0; i < t; i++ {
			obj[l.TotalWear+i] = wear.CostPerPercent()
		}
	}
	if req.BracketCosts {
		for i, inc := range req.Brackets.IncrementalCosts() {
			obj[l.Fill+i] = inc
		}
	}
	obj[l.Peak] += req.PeakPenaltyPerKW

	eq := newRowSet(l.NumVars)
	ub := newRowSet(l.NumVars)

	etaC := bat.ChargeEfficiency()
	etaD := bat.DischargeEfficiency()

	for i := 0; i < t; i++ {
		s := req.Window.Samples[i]

		// Site balance: production + import + discharge feeds load, export,
		// charging and curtailment.
		eq.add(s.ProductionKW-s.LoadKW,
			term{l.Charge + i, 1},
			term{l.Discharge + i, -1},
			term{l.GridImport + i, -1},
			term{l.GridExport + i, 1},
			term{l.Curtail + i, 1},
		)

		// Storage dynamics: E[i] = E[i-1] + etaC*c*dt - d*dt/etaD.
		terms := []term{
			{l.Energy + i, 1},
			{l.Charge + i, -etaC * dt},
			{l.Discharge + i, dt / etaD},
		}
		rhs := 0.0
		if i == 0 {
			rhs = e0
		} else {
			terms = append(terms, term{l.Energy + i - 1, -1})
		}
		eq.add(rhs, terms...)

		// Peak tracking: the peak variable dominates every import.
		ub.add(0, term{l.GridImport + i, 1}, term{l.Peak, -1})
	}

	// Peak definition through the bracket fills.
	peakDef := []term{{l.Peak, 1}}
	for i, w := range req.Brackets.Widths() {
		peakDef = append(peakDef, term{l.Fill + i, -w})
	}
	eq.add(0, peakDef...)

	// Ordered activation: a bracket can only fill as far as the one below.
	for i := 1; i < n; i++ {
		ub.add(0, term{l.Fill + i, 1}, term{l.Fill + i - 1, -1})
	}

	if wear != nil {
		rho := wear.Rho()
		calStep := wear.CalendarStepPercent(dt)
		for i := 0; i < t; i++ {
			// deltaPos - deltaNeg = E[i] - E[i-1], both halves non-negative.
			terms := []term{
				{l.DeltaPos + i, 1},
				{l.DeltaNeg + i, -1},
				{l.Energy + i, -1},
			}
			rhs := -e0
			if i > 0 {
				terms = append(terms, term{l.Energy + i - 1, 1})
				rhs = 0
			}
			eq.add(rhs, terms...)

			// capacity * dod = deltaPos + deltaNeg.
			eq.add(0,
				term{l.DOD + i, bat.CapacityKWh},
				term{l.DeltaPos + i, -1},
				term{l.DeltaNeg + i, -1},
			)

			// Cyclic wear proportional to absolute DOD.
			eq.add(0, term{l.CycWear + i, 1}, term{l.DOD + i, -rho})

			// totalWear >= max(cycWear, calendar constant), made tight by
			// the positive objective coefficient on totalWear.
			ub.add(0, term{l.CycWear + i, 1}, term{l.TotalWear + i, -1})
			ub.add(-calStep, term{l.TotalWear + i, -1})
		}
	}

	if req.InitialPeakKW > 0 {
		// The monthly peak already reached cannot be undone within the month.
		ub.add(-req.InitialPeakKW, term{l.Peak, -1})
	}

	addBounds(ub, l, bat, req.Grid, req.Brackets, wear != nil)

	p := &Problem{
		Layout:       l,
		Obj:          obj,
		Window:       req.Window,
		Brackets:     req.Brackets,
		Wear:         wear,
		ImportPrices: impPrice,
		ExportPrices: expPrice,
		StepHours:    dt,
	}
	p.AEq, p.BEq = eq.matrix()
	p.AUb, p.BUb = ub.matrix()
	return p, nil
}

// addBounds encodes variable bounds as inequality rows: x <= ub and
// -x <= -lb. Curtailment stays unbounded above as the feasibility valve for
// surplus production.
func addBounds(ub *rowSet, l Layout, bat model.BatteryConfig, grid model.GridConfig, brackets *tariff.BracketSet, wear bool) {
	lower := func(off int, lb float64) {
		for i := 0; i < l.T; i++ {
			ub.add(-lb, term{off + i, -1})
		}
	}
	upper := func(off int, v float64) {
		for i := 0; i < l.T; i++ {
			ub.add(v, term{off + i, 1})
		}
	}

	power := bat.PowerKW
	if bat.CapacityKWh == 0 {
		power = 0
	}
	lower(l.Charge, 0)
	upper(l.Charge, power)
	lower(l.Discharge, 0)
	upper(l.Discharge, power)

	lower(l.GridImport, 0)
	if grid.ImportLimitKW > 0 {
		upper(l.GridImport, grid.ImportLimitKW)
	}
	lower(l.GridExport, 0)
	if grid.ExportLimitKW > 0 {
		upper(l.GridExport, grid.ExportLimitKW)
	}

	lower(l.Energy, bat.MinEnergyKWh())
	upper(l.Energy, bat.MaxEnergyKWh())

	lower(l.Curtail, 0)

	if wear {
		lower(l.DeltaPos, 0)
		lower(l.DeltaNeg, 0)
		lower(l.DOD, 0)
	}

	ub.add(brackets.TopKW(), term{l.Peak, 1})
	for i := 0; i < l.Brackets; i++ {
		ub.add(0, term{l.Fill + i, -1})
		ub.add(1, term{l.Fill + i, 1})
	}
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
