package model

import (
	"fmt"
	"math"
	"time"
)

// ForecastSample is one aligned timestep of site forecasts.
type ForecastSample struct {
	Timestamp    time.Time `json:"timestamp"`
	ProductionKW float64   `json:"production_kw"`
	LoadKW       float64   `json:"load_kw"`
	SpotPrice    float64   `json:"price"` // currency per kWh
}

// ForecastWindow is a contiguous run of samples at a uniform timestep.
// Alignment and resampling happen upstream; the window only verifies what it
// was given.
type ForecastWindow struct {
	Samples   []ForecastSample
	StepHours float64
}

// timestepTolerance absorbs sub-second jitter in upstream timestamps.
const timestepTolerance = time.Second

// Validate checks length, timestep and contiguity.
func (w ForecastWindow) Validate() error {
	if len(w.Samples) == 0 {
		return fmt.Errorf("forecast window is empty")
	}
	if w.StepHours <= 0 {
		return fmt.Errorf("timestep must be positive, got %v", w.StepHours)
	}
	step := time.Duration(w.StepHours * float64(time.Hour))
	for i := 1; i < len(w.Samples); i++ {
		gap := w.Samples[i].Timestamp.Sub(w.Samples[i-1].Timestamp)
		if diff := gap - step; diff > timestepTolerance || diff < -timestepTolerance {
			return fmt.Errorf("non-uniform timestep at sample %d: got %v, want %v", i, gap, step)
		}
	}
	for i, s := range w.Samples {
		if s.ProductionKW < 0 || s.LoadKW < 0 {
			return fmt.Errorf("negative power at sample %d", i)
		}
		if math.IsNaN(s.ProductionKW) || math.IsNaN(s.LoadKW) || math.IsNaN(s.SpotPrice) {
			return fmt.Errorf("NaN value at sample %d", i)
		}
	}
	return nil
}

// Steps returns the number of timesteps.
func (w ForecastWindow) Steps() int { return len(w.Samples) }

// Start returns the timestamp of the first sample.
func (w ForecastWindow) Start() time.Time { return w.Samples[0].Timestamp }

// End returns the instant just after the last sample.
func (w ForecastWindow) End() time.Time {
	last := w.Samples[len(w.Samples)-1].Timestamp
	return last.Add(time.Duration(w.StepHours * float64(time.Hour)))
}

// Slice returns the sub-window [from, from+n), clipped to the available
// samples. The returned window shares the backing array.
func (w ForecastWindow) Slice(from, n int) ForecastWindow {
	if from >= len(w.Samples) {
		return ForecastWindow{StepHours: w.StepHours}
	}
	end := from + n
	if end > len(w.Samples) {
		end = len(w.Samples)
	}
	return ForecastWindow{Samples: w.Samples[from:end], StepHours: w.StepHours}
}

// SplitMonths partitions the window into calendar-month sub-windows, in order.
func (w ForecastWindow) SplitMonths() []ForecastWindow {
	return w.split(func(a, b time.Time) bool {
		return a.Year() != b.Year() || a.Month() != b.Month()
	})
}

// SplitWeeks partitions the window into ISO-week sub-windows, in order.
func (w ForecastWindow) SplitWeeks() []ForecastWindow {
	return w.split(func(a, b time.Time) bool {
		ya, wa := a.ISOWeek()
		yb, wb := b.ISOWeek()
		return ya != yb || wa != wb
	})
}

func (w ForecastWindow) split(boundary func(a, b time.Time) bool) []ForecastWindow {
	if len(w.Samples) == 0 {
		return nil
	}
	var out []ForecastWindow
	start := 0
	for i := 1; i < len(w.Samples); i++ {
		if boundary(w.Samples[i-1].Timestamp, w.Samples[i].Timestamp) {
			out = append(out, ForecastWindow{Samples: w.Samples[start:i], StepHours: w.StepHours})
			start = i
		}
	}
	out = append(out, ForecastWindow{Samples: w.Samples[start:], StepHours: w.StepHours})
	return out
}
