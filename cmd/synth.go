package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bessopt/app"
	"github.com/kilianp07/bessopt/config"
)

var (
	synthStart string
	synthDays  int
	synthOut   string
)

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Generate a synthetic forecast CSV",
	RunE:  runSynth,
}

func init() {
	synthCmd.Flags().StringVar(&synthStart, "start", "", "start timestamp, RFC3339 (default: next midnight UTC)")
	synthCmd.Flags().IntVar(&synthDays, "days", 7, "number of days to generate")
	synthCmd.Flags().StringVarP(&synthOut, "output", "o", "forecast.csv", "output CSV")
	rootCmd.AddCommand(synthCmd)
}

func runSynth(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	start := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	if synthStart != "" {
		start, err = time.Parse(time.RFC3339, synthStart)
		if err != nil {
			return fmt.Errorf("parse start: %w", err)
		}
	}
	return svc.Synth(start, time.Duration(synthDays)*24*time.Hour, synthOut)
}
