package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/kilianp07/bessopt/core/metrics"
)

// PromSink records window solve events in Prometheus metrics.
type PromSink struct {
	solves    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	objective prometheus.Gauge
	peak      prometheus.Gauge
	soc       prometheus.Gauge
}

// NewPromSink registers solve metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.SolveRecorder, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.SolveRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "window_solves_total",
		Help: "Total number of window LP solves",
	}, []string{"mode", "feasible"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "window_solve_duration_seconds",
		Help:    "Wall time per window LP solve",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	objective := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "window_objective_value",
		Help: "Objective value of the most recent feasible solve",
	})
	peak := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "monthly_peak_kw",
		Help: "Peak grid import of the most recent feasible solve",
	})
	soc := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "battery_soc_kwh",
		Help: "State of charge at the end of the most recent feasible solve",
	})

	for _, c := range []prometheus.Collector{solves, duration, objective, peak, soc} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}

	return &PromSink{solves: solves, duration: duration, objective: objective, peak: peak, soc: soc}, nil
}

// RecordWindowSolve implements coremetrics.SolveRecorder.
func (s *PromSink) RecordWindowSolve(ev coremetrics.WindowSolveEvent) error {
	s.solves.WithLabelValues(ev.Mode, strconv.FormatBool(ev.Feasible)).Inc()
	s.duration.WithLabelValues(ev.Mode).Observe(ev.Duration.Seconds())
	if ev.Feasible {
		s.objective.Set(ev.Objective)
		s.peak.Set(ev.PeakKW)
		s.soc.Set(ev.FinalSoCKWh)
	}
	return nil
}

// StartPromServer serves the default registry on the given port until the
// context is cancelled.
func StartPromServer(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
