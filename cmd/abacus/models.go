package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List configured models and their features",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		cfg := engine.GetConfig()
		for _, model := range engine.AvailableModels() {
			mp := cfg.Models[model]
			fmt.Printf("%s  prompt $%g/1k  completion $%g/1k\n",
				model, mp.PromptCostPer1K, mp.CompletionCostPer1K)

			features, err := engine.AvailableFeatures(model)
			if err != nil {
				return err
			}
			for _, feature := range features {
				fmt.Printf("  %s  margin %g\n", feature, mp.Features[feature].Margin)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
