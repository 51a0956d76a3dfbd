package tariff

import (
	"fmt"
	"time"

	"github.com/kilianp07/bessopt/core/model"
)

// EnergyRates converts spot prices into the effective per-kWh prices the
// site pays and receives. The grid energy tariff has a day and a night rate
// (night also applies on weekends), the consumption tax is seasonal, and
// exports earn the spot price plus a feed-in premium.
type EnergyRates struct {
	DayRate      float64 `json:"day_rate"`       // grid tariff, NOK/kWh weekdays DayStart..DayEnd
	NightRate    float64 `json:"night_rate"`     // grid tariff otherwise
	DayStartHour int     `json:"day_start_hour"` // inclusive
	DayEndHour   int     `json:"day_end_hour"`   // exclusive
	TaxWinter    float64 `json:"tax_winter"`     // consumption tax Jan-Mar, NOK/kWh
	TaxSummer    float64 `json:"tax_summer"`     // consumption tax Apr-Dec, NOK/kWh
	FeedInUplift float64 `json:"feed_in_uplift"` // premium added to the spot price on export
}

// SetDefaults applies the common Norwegian day window.
func (r *EnergyRates) SetDefaults() {
	if r.DayStartHour == 0 && r.DayEndHour == 0 {
		r.DayStartHour = 6
		r.DayEndHour = 22
	}
}

// Validate checks rate consistency.
func (r EnergyRates) Validate() error {
	if r.DayRate < 0 || r.NightRate < 0 {
		return fmt.Errorf("energy tariff rates must be non-negative")
	}
	if r.DayStartHour < 0 || r.DayEndHour > 24 || r.DayStartHour >= r.DayEndHour {
		return fmt.Errorf("day window must satisfy 0 <= start < end <= 24, got [%d, %d)", r.DayStartHour, r.DayEndHour)
	}
	if r.TaxWinter < 0 || r.TaxSummer < 0 {
		return fmt.Errorf("consumption tax must be non-negative")
	}
	return nil
}

func (r EnergyRates) gridRate(ts time.Time) float64 {
	wd := ts.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return r.NightRate
	}
	h := ts.Hour()
	if h >= r.DayStartHour && h < r.DayEndHour {
		return r.DayRate
	}
	return r.NightRate
}

func (r EnergyRates) tax(ts time.Time) float64 {
	switch ts.Month() {
	case time.January, time.February, time.March:
		return r.TaxWinter
	default:
		return r.TaxSummer
	}
}

// ImportPrice is the effective cost of one kWh imported at ts.
func (r EnergyRates) ImportPrice(ts time.Time, spot float64) float64 {
	return spot + r.gridRate(ts) + r.tax(ts)
}

// ExportPrice is the effective revenue of one kWh exported at ts.
func (r EnergyRates) ExportPrice(ts time.Time, spot float64) float64 {
	return spot + r.FeedInUplift
}

// PriceVectors expands a forecast window into per-timestep import and export
// prices for the problem builder.
func (r EnergyRates) PriceVectors(w model.ForecastWindow) (imp, exp []float64) {
	imp = make([]float64, len(w.Samples))
	exp = make([]float64, len(w.Samples))
	for i, s := range w.Samples {
		imp[i] = r.ImportPrice(s.Timestamp, s.SpotPrice)
		exp[i] = r.ExportPrice(s.Timestamp, s.SpotPrice)
	}
	return imp, exp
}
