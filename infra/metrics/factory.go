package metrics

import (
	"fmt"

	coremetrics "github.com/kilianp07/bessopt/core/metrics"
)

// FromConfig assembles the recorder stack described by the configuration.
// With nothing enabled it returns a NopRecorder.
func FromConfig(cfg coremetrics.Config) (coremetrics.SolveRecorder, error) {
	var sinks []coremetrics.SolveRecorder
	if cfg.PrometheusEnabled {
		sink, err := NewPromSink(cfg)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, NewInfluxSinkWithFallback(cfg))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopRecorder{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}
