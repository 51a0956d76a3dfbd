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
	planIn  string
	planOut string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Solve the full horizon once per month or week",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planIn, "input", "i", "", "forecast CSV (required)")
	planCmd.Flags().StringVarP(&planOut, "output", "o", "plan.csv", "plan output (.csv or .json)")
	_ = planCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
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
	return svc.Plan(ctx, planIn, planOut)
}
