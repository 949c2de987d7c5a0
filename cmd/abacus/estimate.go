package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tallyhq/abacus/pkg/config"
	"tallyhq/abacus/pkg/meter"
)

var (
	estimateModel            string
	estimateFeature          string
	estimatePromptTokens     int
	estimateCompletionTokens int
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the credit cost of a model call",
	Long: `Estimate computes the credit cost of a prospective model call from the
pricing configuration, without performing any call.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		credits, err := engine.EstimateCredits(estimateModel, estimateFeature,
			estimatePromptTokens, estimateCompletionTokens)
		if err != nil {
			return err
		}

		fmt.Printf("%g\n", credits)
		return nil
	},
}

// newEngine builds a metering engine, applying the overrides file when one
// was given.
func newEngine() (*meter.Engine, error) {
	var overrides *config.Overrides
	if cfgFile != "" {
		loaded, err := config.LoadOverrides(cfgFile)
		if err != nil {
			return nil, err
		}
		overrides = &loaded
	}
	return meter.New(meter.EngineConfig{Overrides: overrides}), nil
}

func init() {
	estimateCmd.Flags().StringVar(&estimateModel, "model", "", "model identifier (e.g. openai:gpt-4)")
	estimateCmd.Flags().StringVar(&estimateFeature, "feature", "", "feature identifier (e.g. chat)")
	estimateCmd.Flags().IntVar(&estimatePromptTokens, "prompt-tokens", 0, "estimated prompt tokens")
	estimateCmd.Flags().IntVar(&estimateCompletionTokens, "completion-tokens", 0, "estimated completion tokens")
	estimateCmd.MarkFlagRequired("model")

	rootCmd.AddCommand(estimateCmd)
}
