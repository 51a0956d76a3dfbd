package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/bessopt/core/metrics"
	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/core/tariff"
	"github.com/kilianp07/bessopt/infra/forecast"
)

// Config is the top-level configuration of a run.
type Config struct {
	Battery model.BatteryConfig `json:"battery"`
	Grid    model.GridConfig    `json:"grid"`
	Rates   tariff.EnergyRates  `json:"rates"`
	// TariffSchedulePath points at the bracket schedule file (yaml or json).
	TariffSchedulePath string                  `json:"tariff_schedule"`
	Horizon            HorizonConfig           `json:"horizon"`
	Metrics            metrics.Config          `json:"metrics"`
	Synthetic          forecast.SyntheticConfig `json:"synthetic"`

	// InitialSoCFrac is the SOC fraction the run starts from.
	InitialSoCFrac float64 `json:"initial_soc"`
}

// HorizonConfig selects and parameterizes the orchestration mode.
type HorizonConfig struct {
	// Split is "month" or "week" for full-horizon runs.
	Split string `json:"split"`
	// WindowSteps is the rolling-horizon lookahead length.
	WindowSteps int `json:"window_steps"`
	// PeakPenaltyScale softens or sharpens the rolling peak incentive.
	PeakPenaltyScale float64 `json:"peak_penalty_scale"`
	// AbortOnFailure stops a full-horizon run on the first failed window.
	AbortOnFailure bool `json:"abort_on_failure"`
}

// SetDefaults applies sane defaults.
func (h *HorizonConfig) SetDefaults() {
	if h.Split == "" {
		h.Split = "month"
	}
	if h.WindowSteps == 0 {
		h.WindowSteps = 24
	}
}

// Validate checks mandatory fields.
func (h HorizonConfig) Validate() error {
	if h.Split != "month" && h.Split != "week" {
		return fmt.Errorf("unknown horizon split %q", h.Split)
	}
	if h.WindowSteps <= 0 {
		return fmt.Errorf("window steps must be positive, got %d", h.WindowSteps)
	}
	if h.PeakPenaltyScale < 0 {
		return fmt.Errorf("peak penalty scale must be non-negative, got %v", h.PeakPenaltyScale)
	}
	return nil
}

// Load reads, defaults and validates the configuration at path. Environment
// variables prefixed with BESS_ override file values, with __ separating
// nesting levels.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("BESS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "bess_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Horizon.SetDefaults()
	cfg.Rates.SetDefaults()
	if cfg.InitialSoCFrac == 0 {
		cfg.InitialSoCFrac = 0.5
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects broken configurations before any solve is attempted.
func (c Config) Validate() error {
	if err := c.Battery.Validate(); err != nil {
		return fmt.Errorf("battery: %w", err)
	}
	if err := c.Grid.Validate(); err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	if err := c.Rates.Validate(); err != nil {
		return fmt.Errorf("rates: %w", err)
	}
	if err := c.Horizon.Validate(); err != nil {
		return fmt.Errorf("horizon: %w", err)
	}
	if c.TariffSchedulePath == "" {
		return fmt.Errorf("tariff_schedule is required")
	}
	if c.InitialSoCFrac < 0 || c.InitialSoCFrac > 1 {
		return fmt.Errorf("initial_soc must be in [0,1], got %v", c.InitialSoCFrac)
	}
	return nil
}

// LoadBrackets loads and derives the bracket set the config points at.
func (c Config) LoadBrackets() (*tariff.BracketSet, error) {
	sched, err := tariff.LoadSchedule(c.TariffSchedulePath)
	if err != nil {
		return nil, err
	}
	return tariff.NewBracketSet(sched)
}
