package model

import (
	"fmt"
	"math"
)

// BatteryConfig describes a stationary battery system. A zero capacity is
// valid and models a site without storage.
type BatteryConfig struct {
	CapacityKWh  float64 `json:"capacity_kwh"`
	PowerKW      float64 `json:"power_kw"`
	RoundTripEff float64 `json:"round_trip_efficiency"` // 0-1, split equally between charge and discharge
	MinSoCFrac   float64 `json:"min_soc"`               // fraction of capacity
	MaxSoCFrac   float64 `json:"max_soc"`               // fraction of capacity

	// Degradation is optional; nil disables wear modelling.
	Degradation *DegradationParams `json:"degradation,omitempty"`
}

// DegradationParams holds the cell-wear parameters for LFP-style batteries.
type DegradationParams struct {
	CycleLife         float64 `json:"cycle_life"`          // full cycles at 100% DOD until end of life
	CalendarLifeYears float64 `json:"calendar_life_years"` // shelf life until end of life
	EndOfLifePercent  float64 `json:"end_of_life_percent"` // degradation level considered end of life
	CellCostPerKWh    float64 `json:"cell_cost_per_kwh"`   // replacement cost basis
}

// Validate rejects configurations that can never produce a solvable problem.
func (b BatteryConfig) Validate() error {
	if b.CapacityKWh < 0 {
		return fmt.Errorf("capacity must be non-negative, got %v", b.CapacityKWh)
	}
	if b.PowerKW < 0 {
		return fmt.Errorf("power rating must be non-negative, got %v", b.PowerKW)
	}
	if b.CapacityKWh == 0 {
		return nil
	}
	if b.RoundTripEff <= 0 || b.RoundTripEff > 1 {
		return fmt.Errorf("round-trip efficiency must be in (0,1], got %v", b.RoundTripEff)
	}
	if b.MinSoCFrac < 0 || b.MaxSoCFrac > 1 || b.MinSoCFrac >= b.MaxSoCFrac {
		return fmt.Errorf("soc bounds must satisfy 0 <= min < max <= 1, got [%v, %v]", b.MinSoCFrac, b.MaxSoCFrac)
	}
	if d := b.Degradation; d != nil {
		if d.CycleLife <= 0 {
			return fmt.Errorf("cycle life must be positive, got %v", d.CycleLife)
		}
		if d.CalendarLifeYears <= 0 {
			return fmt.Errorf("calendar life must be positive, got %v", d.CalendarLifeYears)
		}
		if d.EndOfLifePercent <= 0 || d.EndOfLifePercent > 100 {
			return fmt.Errorf("end-of-life percent must be in (0,100], got %v", d.EndOfLifePercent)
		}
		if d.CellCostPerKWh < 0 {
			return fmt.Errorf("cell cost must be non-negative, got %v", d.CellCostPerKWh)
		}
	}
	return nil
}

// ChargeEfficiency returns the one-way charge efficiency, the square root of
// the round-trip value. Batteries with zero capacity report 1 so the storage
// dynamics stay well defined.
func (b BatteryConfig) ChargeEfficiency() float64 {
	if b.CapacityKWh == 0 {
		return 1
	}
	return math.Sqrt(b.RoundTripEff)
}

// DischargeEfficiency mirrors ChargeEfficiency.
func (b BatteryConfig) DischargeEfficiency() float64 { return b.ChargeEfficiency() }

// MinEnergyKWh is the lowest storable energy level.
func (b BatteryConfig) MinEnergyKWh() float64 { return b.MinSoCFrac * b.CapacityKWh }

// MaxEnergyKWh is the highest storable energy level.
func (b BatteryConfig) MaxEnergyKWh() float64 {
	if b.CapacityKWh == 0 {
		return 0
	}
	return b.MaxSoCFrac * b.CapacityKWh
}

// DegradationEnabled reports whether wear modelling is configured.
func (b BatteryConfig) DegradationEnabled() bool {
	return b.Degradation != nil && b.CapacityKWh > 0
}

// GridConfig bounds the grid connection. Zero means unlimited.
type GridConfig struct {
	ImportLimitKW float64 `json:"import_limit_kw"`
	ExportLimitKW float64 `json:"export_limit_kw"`
}

// Validate checks the connection limits.
func (g GridConfig) Validate() error {
	if g.ImportLimitKW < 0 || g.ExportLimitKW < 0 {
		return fmt.Errorf("grid limits must be non-negative, got import %v export %v", g.ImportLimitKW, g.ExportLimitKW)
	}
	return nil
}
