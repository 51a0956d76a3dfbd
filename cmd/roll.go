package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bessopt/app"
	"github.com/kilianp07/bessopt/config"
)

var (
	rollIn  string
	rollOut string
)

var rollCmd = &cobra.Command{
	Use:   "roll",
	Short: "Re-solve a fixed lookahead window at every tick, executing only the first step",
	RunE:  runRoll,
}

func init() {
	rollCmd.Flags().StringVarP(&rollIn, "input", "i", "", "forecast CSV (required)")
	rollCmd.Flags().StringVarP(&rollOut, "output", "o", "plan.csv", "plan output (.csv or .json)")
	_ = rollCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(rollCmd)
}

func runRoll(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	return svc.Roll(ctx, rollIn, rollOut)
}
