package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/bessopt/core/logger"
	"github.com/kilianp07/bessopt/core/metrics"
	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/core/optimizer"
	"github.com/kilianp07/bessopt/core/tariff"
	"github.com/kilianp07/bessopt/internal/eventbus"
)

// PlanStep is one executed timestep of the final schedule.
type PlanStep struct {
	Timestamp   time.Time `json:"timestamp"`
	ChargeKW    float64   `json:"charge_kw"`
	DischargeKW float64   `json:"discharge_kw"`
	ImportKW    float64   `json:"import_kw"`
	ExportKW    float64   `json:"export_kw"`
	CurtailKW   float64   `json:"curtail_kw"`
	SoCKWh      float64   `json:"soc_kwh"`
	SpotPrice   float64   `json:"spot_price"`
}

// RunResult aggregates a whole run: the executed plan, per-month peaks and
// the cost ledger.
type RunResult struct {
	RunID string     `json:"run_id"`
	Mode  string     `json:"mode"`
	Steps []PlanStep `json:"steps"`

	EnergyCost      float64 `json:"energy_cost"`
	TariffCost      float64 `json:"tariff_cost"`
	DegradationCost float64 `json:"degradation_cost"`
	Objective       float64 `json:"objective"`

	MonthlyPeaks         map[string]float64 `json:"monthly_peaks"` // "2024-01" -> kW
	EquivalentFullCycles float64            `json:"equivalent_full_cycles"`
	SolvedWindows        int                `json:"solved_windows"`
	FailedWindows        int                `json:"failed_windows"`
}

// Runner owns the shared pieces of both orchestration modes. It is not safe
// for concurrent use; parallel scenario evaluation runs one Runner per
// scenario.
type Runner struct {
	Battery  model.BatteryConfig
	Grid     model.GridConfig
	Brackets *tariff.BracketSet
	Rates    tariff.EnergyRates

	Recorder metrics.SolveRecorder
	Log      logger.Logger
	Bus      *eventbus.TypedBus[metrics.WindowSolveEvent]

	// AbortOnFailure makes a failed full-horizon window abort the run
	// instead of being skipped.
	AbortOnFailure bool
}

func (r *Runner) recorder() metrics.SolveRecorder {
	if r.Recorder == nil {
		return metrics.NopRecorder{}
	}
	return r.Recorder
}

func (r *Runner) log() logger.Logger {
	if r.Log == nil {
		return logger.NopLogger{}
	}
	return r.Log
}

func (r *Runner) solve(req optimizer.Request, runID, mode string) (optimizer.Solution, error) {
	started := time.Now()
	sol, err := optimizer.BuildAndSolve(req)
	if err != nil {
		return sol, err
	}
	ev := metrics.WindowSolveEvent{
		RunID:           runID,
		Mode:            mode,
		WindowStart:     req.Window.Start(),
		Steps:           req.Window.Steps(),
		Feasible:        sol.Feasible,
		Message:         sol.Message,
		Objective:       sol.Objective,
		EnergyCost:      sol.EnergyCost,
		TariffCost:      sol.TariffCost,
		DegradationCost: sol.DegradationCost,
		PeakKW:          sol.PeakKW,
		FinalSoCKWh:     sol.FinalSoCKWh,
		Duration:        time.Since(started),
	}
	if err := r.recorder().RecordWindowSolve(ev); err != nil {
		r.log().Warnf("record solve event: %v", err)
	}
	if r.Bus != nil {
		r.Bus.Publish(ev)
	}
	return sol, nil
}

func monthKey(ts time.Time) string { return fmt.Sprintf("%04d-%02d", ts.Year(), int(ts.Month())) }

// throughputKWh sums absolute SOC movement over a trajectory starting at e0.
func throughputKWh(e0 float64, energy []float64) float64 {
	total := 0.0
	prev := e0
	for _, e := range energy {
		total += math.Abs(e - prev)
		prev = e
	}
	return total
}

func (r *Runner) finalize(res *RunResult, state *BatterySystemState, throughput float64) {
	if last := monthKeyOf(state); last != "" && state.MonthlyPeakKW > res.MonthlyPeaks[last] {
		res.MonthlyPeaks[last] = state.MonthlyPeakKW
	}
	for _, peak := range res.MonthlyPeaks {
		res.TariffCost += r.Brackets.StepCostAt(peak)
	}
	if r.Battery.CapacityKWh > 0 {
		res.EquivalentFullCycles = throughput / (2 * r.Battery.CapacityKWh)
	}
}

func monthKeyOf(state *BatterySystemState) string {
	y, m := state.Month()
	if y == 0 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", y, int(m))
}

func newRunID() string { return uuid.NewString() }
