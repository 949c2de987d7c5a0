package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tallyhq/abacus/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "abacus",
	Short: "Abacus - credit metering for generative-model usage",
	Long: `Abacus converts generative-model token usage into credits, the abstract
billing unit applications charge their own users in.

It provides:
  - Pre-call credit estimates from a per-model, per-feature pricing table
  - Post-call reconciliation of estimates against actual token usage
  - Optional synchronization with a remote billing dashboard`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		return logging.Configure(logging.Config{Level: level, Format: "text"})
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "pricing overrides file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
