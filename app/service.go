// Package app wires configuration into a runnable optimization service.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kilianp07/bessopt/config"
	coremetrics "github.com/kilianp07/bessopt/core/metrics"
	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/core/sim"
	"github.com/kilianp07/bessopt/infra/forecast"
	"github.com/kilianp07/bessopt/infra/logger"
	"github.com/kilianp07/bessopt/infra/metrics"
	"github.com/kilianp07/bessopt/internal/eventbus"
	"github.com/kilianp07/bessopt/pkg/export"
)

// Service owns a configured runner and its observability plumbing.
type Service struct {
	cfg    *config.Config
	runner *sim.Runner
	bus    *eventbus.TypedBus[coremetrics.WindowSolveEvent]
	log    logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	brackets, err := cfg.LoadBrackets()
	if err != nil {
		return nil, fmt.Errorf("tariff schedule: %w", err)
	}
	recorder, err := metrics.FromConfig(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	bus := eventbus.NewTyped[coremetrics.WindowSolveEvent]()
	runner := &sim.Runner{
		Battery:        cfg.Battery,
		Grid:           cfg.Grid,
		Brackets:       brackets,
		Rates:          cfg.Rates,
		Recorder:       recorder,
		Log:            logger.New("runner"),
		Bus:            bus,
		AbortOnFailure: cfg.Horizon.AbortOnFailure,
	}
	return &Service{cfg: cfg, runner: runner, bus: bus, log: logg}, nil
}

// Plan runs a full-horizon optimization over the forecast CSV at inPath and
// writes the plan to outPath (format by extension: .csv or .json).
func (s *Service) Plan(ctx context.Context, inPath, outPath string) error {
	fw, err := forecast.LoadCSV(inPath)
	if err != nil {
		return fmt.Errorf("load forecast: %w", err)
	}
	var windows []model.ForecastWindow
	switch s.cfg.Horizon.Split {
	case "week":
		windows = fw.SplitWeeks()
	default:
		windows = fw.SplitMonths()
	}

	s.serveMetrics(ctx)
	done := s.watchProgress(ctx)
	res, err := s.runner.RunFull(windows, s.cfg.InitialSoCFrac*s.cfg.Battery.CapacityKWh)
	s.bus.Close()
	<-done
	if err != nil {
		return err
	}
	s.logSummary(res)
	return writeResult(outPath, res)
}

// Roll runs a rolling-horizon optimization over the forecast CSV at inPath.
func (s *Service) Roll(ctx context.Context, inPath, outPath string) error {
	fw, err := forecast.LoadCSV(inPath)
	if err != nil {
		return fmt.Errorf("load forecast: %w", err)
	}
	brackets := s.runner.Brackets
	cfg := sim.RollingConfig{
		WindowSteps: s.cfg.Horizon.WindowSteps,
		Penalty: sim.MarginalBracketPenalty{
			Brackets: brackets,
			Scale:    s.cfg.Horizon.PeakPenaltyScale,
		},
	}

	s.serveMetrics(ctx)
	done := s.watchProgress(ctx)
	res, err := s.runner.RunRolling(fw, s.cfg.InitialSoCFrac*s.cfg.Battery.CapacityKWh, cfg)
	s.bus.Close()
	<-done
	if err != nil {
		return err
	}
	s.logSummary(res)
	return writeResult(outPath, res)
}

// Synth generates a synthetic forecast CSV at outPath.
func (s *Service) Synth(start time.Time, span time.Duration, outPath string) error {
	fw, err := forecast.Generate(s.cfg.Synthetic, start, span)
	if err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return forecast.WriteCSV(f, fw)
}

// serveMetrics exposes the Prometheus endpoint for the duration of the run
// when enabled.
func (s *Service) serveMetrics(ctx context.Context) {
	if !s.cfg.Metrics.PrometheusEnabled {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
			s.log.Errorf("prometheus server: %v", err)
		}
	}()
}

// watchProgress logs solve events from the bus until it closes.
func (s *Service) watchProgress(ctx context.Context) <-chan struct{} {
	sub := s.bus.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if ev.Feasible {
					s.log.Debugw("window solved", map[string]any{
						"start":     ev.WindowStart,
						"steps":     ev.Steps,
						"objective": ev.Objective,
						"peak_kw":   ev.PeakKW,
						"duration":  ev.Duration,
					})
				} else {
					s.log.Warnf("window starting %s infeasible: %s", ev.WindowStart, ev.Message)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return done
}

func (s *Service) logSummary(res *sim.RunResult) {
	s.log.Infof("run %s: %d windows solved, %d failed, energy %.2f, tariff %.2f, degradation %.2f, %.2f full cycles",
		res.RunID, res.SolvedWindows, res.FailedWindows, res.EnergyCost, res.TariffCost, res.DegradationCost, res.EquivalentFullCycles)
}

func writeResult(outPath string, res *sim.RunResult) error {
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if filepath.Ext(outPath) == ".json" {
		return export.WriteJSON(f, res)
	}
	return export.WriteCSV(f, res)
}
