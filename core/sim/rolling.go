package sim

import (
	"fmt"
	"math"

	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/core/optimizer"
)

// RollingConfig parameterizes the receding-horizon loop.
type RollingConfig struct {
	// WindowSteps is the lookahead length of every solve, e.g. 24 for a
	// day at hourly resolution.
	WindowSteps int
	// Penalty prices the monthly peak in the myopic objective. Nil means
	// MarginalBracketPenalty over the runner's bracket set.
	Penalty PeakPenalty
}

// RunRolling re-solves a fixed-length window at every tick of the forecast,
// executes only the first scheduled step, advances state by that step and
// moves on. Bracket costs are dropped from the objective in favour of the
// peak-penalty policy. A failed solve leaves the state untouched: the tick
// becomes a no-action step and the loop continues.
func (r *Runner) RunRolling(forecast model.ForecastWindow, initialSoCKWh float64, cfg RollingConfig) (*RunResult, error) {
	if err := forecast.Validate(); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	if cfg.WindowSteps <= 0 {
		return nil, fmt.Errorf("window steps must be positive, got %d", cfg.WindowSteps)
	}
	penalty := cfg.Penalty
	if penalty == nil {
		penalty = MarginalBracketPenalty{Brackets: r.Brackets}
	}

	runID := newRunID()
	state := NewState(initialSoCKWh, forecast.Start())
	res := &RunResult{
		RunID:        runID,
		Mode:         "rolling",
		MonthlyPeaks: make(map[string]float64),
	}
	throughput := 0.0
	dt := forecast.StepHours

	for k := 0; k < forecast.Steps(); k++ {
		win := forecast.Slice(k, cfg.WindowSteps)
		tick := win.Samples[0]
		req := optimizer.Request{
			Window:           win,
			Battery:          r.Battery,
			Grid:             r.Grid,
			Brackets:         r.Brackets,
			Rates:            r.Rates,
			InitialSoCKWh:    state.SoCKWh,
			InitialPeakKW:    state.MonthlyPeakKW,
			BracketCosts:     false,
			PeakPenaltyPerKW: penalty.Coefficient(state.MonthlyPeakKW, tick.Timestamp),
		}
		sol, err := r.solve(req, runID, "rolling")
		if err != nil {
			return nil, fmt.Errorf("tick %d: %w", k, err)
		}
		if !sol.Feasible {
			res.FailedWindows++
			r.log().Errorf("tick %d at %s failed: %s", k, tick.Timestamp, sol.Message)
			res.Steps = append(res.Steps, PlanStep{
				Timestamp: tick.Timestamp,
				SoCKWh:    state.SoCKWh,
				SpotPrice: tick.SpotPrice,
			})
			continue
		}

		// Only the first scheduled action is executed; the rest of the
		// window is lookahead and will be re-planned next tick.
		step := PlanStep{
			Timestamp:   tick.Timestamp,
			ChargeKW:    sol.ChargeKW[0],
			DischargeKW: sol.DischargeKW[0],
			ImportKW:    sol.GridImport[0],
			ExportKW:    sol.GridExport[0],
			CurtailKW:   sol.CurtailKW[0],
			SoCKWh:      sol.EnergyKWh[0],
			SpotPrice:   tick.SpotPrice,
		}
		res.Steps = append(res.Steps, step)
		res.SolvedWindows++
		res.EnergyCost += (step.ImportKW*r.Rates.ImportPrice(tick.Timestamp, tick.SpotPrice) -
			step.ExportKW*r.Rates.ExportPrice(tick.Timestamp, tick.SpotPrice)) * dt
		if len(sol.TotalWearPct) > 0 && sol.TotalWear > 0 {
			// Only the executed step's share of the window wear is incurred.
			res.DegradationCost += sol.DegradationCost * sol.TotalWearPct[0] / sol.TotalWear
		}
		throughput += math.Abs(step.SoCKWh - state.SoCKWh)

		if key := monthKeyOf(state); monthKey(tick.Timestamp) != key {
			res.MonthlyPeaks[key] = state.MonthlyPeakKW
		}
		if err := state.Advance(step.SoCKWh, step.ImportKW, tick.Timestamp); err != nil {
			return nil, err
		}
	}

	r.finalize(res, state, throughput)
	// Overlapping lookahead objectives don't add up to anything meaningful;
	// report the executed ledger instead.
	res.Objective = res.EnergyCost + res.TariffCost + res.DegradationCost
	return res, nil
}
