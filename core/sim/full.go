package sim

import (
	"fmt"

	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/core/optimizer"
)

// RunFull solves each window exactly once, keeping the entire solved
// trajectory, and threads SOC and monthly peak through the sequence.
// Windows must be in chronological order; the month and week splits on
// model.ForecastWindow are the usual inputs.
func (r *Runner) RunFull(windows []model.ForecastWindow, initialSoCKWh float64) (*RunResult, error) {
	if len(windows) == 0 {
		return nil, fmt.Errorf("no windows to solve")
	}
	runID := newRunID()
	state := NewState(initialSoCKWh, windows[0].Start())
	res := &RunResult{
		RunID:        runID,
		Mode:         "full",
		MonthlyPeaks: make(map[string]float64),
	}
	throughput := 0.0

	for wi, win := range windows {
		req := optimizer.Request{
			Window:        win,
			Battery:       r.Battery,
			Grid:          r.Grid,
			Brackets:      r.Brackets,
			Rates:         r.Rates,
			InitialSoCKWh: state.SoCKWh,
			// The carried-in peak only parameterizes rolling solves; a full
			// window prices its own peak from zero and billing happens on
			// the folded monthly maximum afterwards.
			InitialPeakKW: 0,
			BracketCosts:  true,
		}
		sol, err := r.solve(req, runID, "full")
		if err != nil {
			return nil, fmt.Errorf("window %d: %w", wi, err)
		}
		if !sol.Feasible {
			res.FailedWindows++
			r.log().Errorf("window %d starting %s failed: %s", wi, sol.WindowStart, sol.Message)
			if r.AbortOnFailure {
				return res, fmt.Errorf("window %d starting %s: %s", wi, sol.WindowStart, sol.Message)
			}
			continue
		}

		for i, s := range win.Samples {
			res.Steps = append(res.Steps, PlanStep{
				Timestamp:   s.Timestamp,
				ChargeKW:    sol.ChargeKW[i],
				DischargeKW: sol.DischargeKW[i],
				ImportKW:    sol.GridImport[i],
				ExportKW:    sol.GridExport[i],
				CurtailKW:   sol.CurtailKW[i],
				SoCKWh:      sol.EnergyKWh[i],
				SpotPrice:   s.SpotPrice,
			})
		}
		res.EnergyCost += sol.EnergyCost
		res.DegradationCost += sol.DegradationCost
		res.Objective += sol.Objective
		res.SolvedWindows++
		throughput += throughputKWh(state.SoCKWh, sol.EnergyKWh)

		// The last sample still belongs to this window's month; using the
		// exclusive window end would tip month windows into the next month
		// one step early.
		lastTs := win.Samples[len(win.Samples)-1].Timestamp
		if key := monthKeyOf(state); monthKey(lastTs) != key {
			res.MonthlyPeaks[key] = state.MonthlyPeakKW
		}
		if err := state.Advance(sol.FinalSoCKWh, sol.MaxImportKW, lastTs); err != nil {
			return nil, err
		}
	}

	r.finalize(res, state, throughput)
	return res, nil
}
