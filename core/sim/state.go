// Package sim carries battery state across window solves and drives the
// full-horizon and rolling-horizon orchestration loops.
package sim

import (
	"fmt"
	"time"
)

// BatterySystemState is the mutable record threaded through sequential
// window solves: current stored energy, the peak grid import seen so far in
// the current calendar month, and which month that is. One state belongs to
// exactly one run; runs never share it.
type BatterySystemState struct {
	SoCKWh        float64
	MonthlyPeakKW float64

	year  int
	month time.Month

	initialized bool
}

// NewState creates a state anchored at start with the given initial stored
// energy.
func NewState(initialSoCKWh float64, start time.Time) *BatterySystemState {
	return &BatterySystemState{
		SoCKWh:      initialSoCKWh,
		year:        start.Year(),
		month:       start.Month(),
		initialized: true,
	}
}

// Advance folds a solved window into the state: the final SOC replaces the
// current one, and the window's maximum grid import updates the monthly
// peak. Crossing a calendar-month boundary resets the peak first — the old
// peak belongs to the finished month.
func (s *BatterySystemState) Advance(finalSoCKWh, maxImportKW float64, windowEnd time.Time) error {
	if !s.initialized {
		return fmt.Errorf("state not initialized")
	}
	s.SoCKWh = finalSoCKWh
	if windowEnd.Year() != s.year || windowEnd.Month() != s.month {
		s.MonthlyPeakKW = 0
		s.year = windowEnd.Year()
		s.month = windowEnd.Month()
	}
	if maxImportKW > s.MonthlyPeakKW {
		s.MonthlyPeakKW = maxImportKW
	}
	return nil
}

// Month returns the calendar month the peak belongs to.
func (s *BatterySystemState) Month() (int, time.Month) { return s.year, s.month }
