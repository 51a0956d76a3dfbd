package metrics

import coremetrics "github.com/kilianp07/bessopt/core/metrics"

// MultiSink fans window solve events out to multiple recorders.
type MultiSink struct {
	Sinks []coremetrics.SolveRecorder
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.SolveRecorder) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordWindowSolve forwards the event to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordWindowSolve(ev coremetrics.WindowSolveEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordWindowSolve(ev); err != nil {
			return err
		}
	}
	return nil
}
