package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/sixdouglas/suncalc"

	"github.com/kilianp07/bessopt/core/model"
)

// SyntheticConfig parameterizes a generated scenario. The PV curve follows
// the sine of the solar altitude at the given coordinates, the load is a
// two-peak residential shape and the spot price follows a day/night split.
type SyntheticConfig struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	PVPeakKW    float64 `json:"pv_peak_kw"`
	BaseLoadKW  float64 `json:"base_load_kw"`
	PeakLoadKW  float64 `json:"peak_load_kw"`
	DayPrice    float64 `json:"day_price"`
	NightPrice  float64 `json:"night_price"`
	StepMinutes int     `json:"step_minutes"`
}

// SetDefaults fills in a plausible Norwegian single-site scenario.
func (c *SyntheticConfig) SetDefaults() {
	if c.Latitude == 0 && c.Longitude == 0 {
		c.Latitude, c.Longitude = 59.91, 10.75 // Oslo
	}
	if c.PVPeakKW == 0 {
		c.PVPeakKW = 10
	}
	if c.BaseLoadKW == 0 {
		c.BaseLoadKW = 2
	}
	if c.PeakLoadKW == 0 {
		c.PeakLoadKW = 8
	}
	if c.DayPrice == 0 {
		c.DayPrice = 1.2
	}
	if c.NightPrice == 0 {
		c.NightPrice = 0.6
	}
	if c.StepMinutes == 0 {
		c.StepMinutes = 60
	}
}

// Validate checks the generation parameters.
func (c SyntheticConfig) Validate() error {
	if c.StepMinutes <= 0 || 60%c.StepMinutes != 0 && c.StepMinutes%60 != 0 {
		return fmt.Errorf("step minutes must divide or be a multiple of an hour, got %d", c.StepMinutes)
	}
	if c.PVPeakKW < 0 || c.BaseLoadKW < 0 || c.PeakLoadKW < 0 {
		return fmt.Errorf("powers must be non-negative")
	}
	return nil
}

// Generate produces a deterministic forecast window from start spanning the
// given duration.
func Generate(cfg SyntheticConfig, start time.Time, span time.Duration) (model.ForecastWindow, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return model.ForecastWindow{}, err
	}
	step := time.Duration(cfg.StepMinutes) * time.Minute
	steps := int(span / step)
	if steps < 2 {
		return model.ForecastWindow{}, fmt.Errorf("span %v too short for step %v", span, step)
	}

	samples := make([]model.ForecastSample, steps)
	for i := 0; i < steps; i++ {
		ts := start.Add(time.Duration(i) * step)
		samples[i] = model.ForecastSample{
			Timestamp:    ts,
			ProductionKW: pvOutput(cfg, ts),
			LoadKW:       loadShape(cfg, ts),
			SpotPrice:    priceShape(cfg, ts),
		}
	}
	return model.ForecastWindow{Samples: samples, StepHours: step.Hours()}, nil
}

// pvOutput maps solar altitude to PV power; below the horizon it is zero.
func pvOutput(cfg SyntheticConfig, ts time.Time) float64 {
	pos := suncalc.GetPosition(ts, cfg.Latitude, cfg.Longitude)
	if pos.Altitude <= 0 {
		return 0
	}
	return cfg.PVPeakKW * math.Sin(pos.Altitude)
}

// loadShape is a double-peak profile: morning ramp around 07-09 and an
// evening peak around 17-21 on top of the base load.
func loadShape(cfg SyntheticConfig, ts time.Time) float64 {
	h := float64(ts.Hour()) + float64(ts.Minute())/60
	peak := cfg.PeakLoadKW - cfg.BaseLoadKW
	if peak < 0 {
		peak = 0
	}
	morning := gauss(h, 8, 1.2)
	evening := gauss(h, 18.5, 1.8)
	return cfg.BaseLoadKW + peak*math.Max(morning, evening)
}

func priceShape(cfg SyntheticConfig, ts time.Time) float64 {
	h := ts.Hour()
	if h >= 7 && h < 22 {
		return cfg.DayPrice
	}
	return cfg.NightPrice
}

func gauss(x, mu, sigma float64) float64 {
	d := (x - mu) / sigma
	return math.Exp(-0.5 * d * d)
}
