package sim

import (
	"math"
	"testing"
	"time"

	"github.com/kilianp07/bessopt/core/metrics"
	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/core/tariff"
)

const tol = 1e-6

type captureRecorder struct {
	events []metrics.WindowSolveEvent
}

func (c *captureRecorder) RecordWindowSolve(ev metrics.WindowSolveEvent) error {
	c.events = append(c.events, ev)
	return nil
}

// spot price 1 everywhere, import price == export price == spot.
func flatRates() tariff.EnergyRates {
	return tariff.EnergyRates{DayStartHour: 0, DayEndHour: 24}
}

func hourly(start time.Time, load []float64) model.ForecastWindow {
	w := model.ForecastWindow{StepHours: 1}
	for i, l := range load {
		w.Samples = append(w.Samples, model.ForecastSample{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			LoadKW:    l,
			SpotPrice: 1,
		})
	}
	return w
}

func testRunner(t *testing.T, grid model.GridConfig) (*Runner, *captureRecorder) {
	t.Helper()
	bs, err := tariff.NewBracketSet(tariff.Schedule{Brackets: []tariff.Bracket{
		{FromKW: 0, ToKW: 5, CostPerMonth: 100},
		{FromKW: 5, ToKW: 10, CostPerMonth: 250},
	}})
	if err != nil {
		t.Fatal(err)
	}
	rec := &captureRecorder{}
	return &Runner{
		Battery:  model.BatteryConfig{},
		Grid:     grid,
		Brackets: bs,
		Rates:    flatRates(),
		Recorder: rec,
	}, rec
}

func TestRunFull_MonthBoundary(t *testing.T) {
	r, rec := testRunner(t, model.GridConfig{})

	// Two hours of January and two of February; each month bills its own peak.
	start := time.Date(2024, 1, 31, 22, 0, 0, 0, time.UTC)
	forecast := hourly(start, []float64{3, 3, 7, 7})
	windows := forecast.SplitMonths()
	if len(windows) != 2 {
		t.Fatalf("month split: %d windows", len(windows))
	}

	res, err := r.RunFull(windows, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.SolvedWindows != 2 || res.FailedWindows != 0 {
		t.Fatalf("windows: solved %d failed %d", res.SolvedWindows, res.FailedWindows)
	}
	if len(res.Steps) != 4 {
		t.Fatalf("steps: %d", len(res.Steps))
	}
	for i, want := range []float64{3, 3, 7, 7} {
		if math.Abs(res.Steps[i].ImportKW-want) > tol {
			t.Fatalf("step %d import: got %v want %v", i, res.Steps[i].ImportKW, want)
		}
	}
	if math.Abs(res.EnergyCost-20) > tol {
		t.Fatalf("energy cost: got %v want 20", res.EnergyCost)
	}
	if got := res.MonthlyPeaks["2024-01"]; math.Abs(got-3) > tol {
		t.Fatalf("january peak: got %v want 3", got)
	}
	if got := res.MonthlyPeaks["2024-02"]; math.Abs(got-7) > tol {
		t.Fatalf("february peak: got %v want 7", got)
	}
	// January bills the first bracket, February the second.
	if math.Abs(res.TariffCost-350) > tol {
		t.Fatalf("tariff cost: got %v want 350", res.TariffCost)
	}
	if res.EquivalentFullCycles != 0 {
		t.Fatalf("cycles without a battery: %v", res.EquivalentFullCycles)
	}

	if len(rec.events) != 2 {
		t.Fatalf("recorded events: %d", len(rec.events))
	}
	for _, ev := range rec.events {
		if ev.Mode != "full" || ev.RunID != res.RunID || !ev.Feasible {
			t.Fatalf("event: %+v", ev)
		}
	}
}

func TestRunFull_SkipsFailedWindow(t *testing.T) {
	r, _ := testRunner(t, model.GridConfig{ImportLimitKW: 5})

	start := time.Date(2024, 1, 31, 22, 0, 0, 0, time.UTC)
	windows := hourly(start, []float64{3, 3, 7, 7}).SplitMonths()

	res, err := r.RunFull(windows, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.SolvedWindows != 1 || res.FailedWindows != 1 {
		t.Fatalf("windows: solved %d failed %d", res.SolvedWindows, res.FailedWindows)
	}
	// Only the feasible January window contributes steps and costs.
	if len(res.Steps) != 2 {
		t.Fatalf("steps: %d", len(res.Steps))
	}
	if math.Abs(res.TariffCost-100) > tol {
		t.Fatalf("tariff cost: got %v want 100", res.TariffCost)
	}
	if _, ok := res.MonthlyPeaks["2024-02"]; ok {
		t.Fatal("failed window must not contribute a peak")
	}
}

func TestRunFull_AbortOnFailure(t *testing.T) {
	r, _ := testRunner(t, model.GridConfig{ImportLimitKW: 5})
	r.AbortOnFailure = true

	start := time.Date(2024, 1, 31, 22, 0, 0, 0, time.UTC)
	windows := hourly(start, []float64{3, 3, 7, 7}).SplitMonths()

	if _, err := r.RunFull(windows, 0); err == nil {
		t.Fatal("expected abort error")
	}
}

func TestRunFull_NoWindows(t *testing.T) {
	r, _ := testRunner(t, model.GridConfig{})
	if _, err := r.RunFull(nil, 0); err == nil {
		t.Fatal("expected error for empty window list")
	}
}

func TestRunRolling(t *testing.T) {
	r, rec := testRunner(t, model.GridConfig{})

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	forecast := hourly(start, []float64{2, 6, 2, 2})

	res, err := r.RunRolling(forecast, 0, RollingConfig{WindowSteps: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.SolvedWindows != 4 || res.FailedWindows != 0 {
		t.Fatalf("ticks: solved %d failed %d", res.SolvedWindows, res.FailedWindows)
	}
	if len(res.Steps) != 4 {
		t.Fatalf("steps: %d", len(res.Steps))
	}
	for i, want := range []float64{2, 6, 2, 2} {
		if math.Abs(res.Steps[i].ImportKW-want) > tol {
			t.Fatalf("step %d import: got %v want %v", i, res.Steps[i].ImportKW, want)
		}
	}
	if math.Abs(res.EnergyCost-12) > tol {
		t.Fatalf("energy cost: got %v want 12", res.EnergyCost)
	}
	// The 6 kW hour pushes the month into the second bracket.
	if got := res.MonthlyPeaks["2024-03"]; math.Abs(got-6) > tol {
		t.Fatalf("march peak: got %v want 6", got)
	}
	if math.Abs(res.TariffCost-250) > tol {
		t.Fatalf("tariff cost: got %v want 250", res.TariffCost)
	}
	if math.Abs(res.Objective-262) > tol {
		t.Fatalf("objective: got %v want 262", res.Objective)
	}

	if len(rec.events) != 4 {
		t.Fatalf("recorded events: %d", len(rec.events))
	}
	if rec.events[0].Mode != "rolling" {
		t.Fatalf("event mode: %s", rec.events[0].Mode)
	}
}

func TestRunRolling_FailedTickDoesNotAdvance(t *testing.T) {
	r, _ := testRunner(t, model.GridConfig{ImportLimitKW: 5})

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	forecast := hourly(start, []float64{2, 6, 2, 2})

	// Every lookahead window containing the 6 kW hour is infeasible under
	// the 5 kW import limit.
	res, err := r.RunRolling(forecast, 0, RollingConfig{WindowSteps: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.SolvedWindows != 2 || res.FailedWindows != 2 {
		t.Fatalf("ticks: solved %d failed %d", res.SolvedWindows, res.FailedWindows)
	}
	if len(res.Steps) != 4 {
		t.Fatalf("steps: %d", len(res.Steps))
	}
	// Failed ticks become no-action steps.
	for _, i := range []int{0, 1} {
		if res.Steps[i].ImportKW != 0 || res.Steps[i].SoCKWh != 0 {
			t.Fatalf("failed step %d not a no-op: %+v", i, res.Steps[i])
		}
	}
	if math.Abs(res.EnergyCost-4) > tol {
		t.Fatalf("energy cost: got %v want 4", res.EnergyCost)
	}
	// Only the executed 2 kW hours count toward the peak.
	if got := res.MonthlyPeaks["2024-03"]; math.Abs(got-2) > tol {
		t.Fatalf("march peak: got %v want 2", got)
	}
}

func TestRunRolling_Validation(t *testing.T) {
	r, _ := testRunner(t, model.GridConfig{})
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	forecast := hourly(start, []float64{2, 2})

	if _, err := r.RunRolling(forecast, 0, RollingConfig{WindowSteps: 0}); err == nil {
		t.Fatal("zero window steps accepted")
	}
	if _, err := r.RunRolling(model.ForecastWindow{StepHours: 1}, 0, RollingConfig{WindowSteps: 2}); err == nil {
		t.Fatal("empty forecast accepted")
	}
}

func TestThroughputKWh(t *testing.T) {
	got := throughputKWh(2, []float64{5, 5, 1})
	if math.Abs(got-7) > tol {
		t.Fatalf("throughput: got %v want 7", got)
	}
}
