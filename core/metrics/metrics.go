// Package metrics defines the observability events emitted by the window
// solve pipeline and the sink interfaces that record them.
package metrics

import "time"

// WindowSolveEvent describes one LP window solve.
type WindowSolveEvent struct {
	RunID       string
	Mode        string // "full" or "rolling"
	WindowStart time.Time
	Steps       int
	Feasible    bool
	Message     string

	Objective       float64
	EnergyCost      float64
	TariffCost      float64
	DegradationCost float64
	PeakKW          float64
	FinalSoCKWh     float64

	Duration time.Duration
}

// SolveRecorder records window solve events for observability purposes.
type SolveRecorder interface {
	RecordWindowSolve(ev WindowSolveEvent) error
}

// NopRecorder discards all events.
type NopRecorder struct{}

// RecordWindowSolve implements SolveRecorder.
func (NopRecorder) RecordWindowSolve(WindowSolveEvent) error { return nil }

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}
