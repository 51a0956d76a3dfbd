package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "bessopt",
	Short: "Battery dispatch optimizer",
	Long: `bessopt computes cost-optimal charge/discharge schedules for a
grid-connected battery with co-located solar, under spot prices and a
progressive power-demand tariff.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
