// Package config defines the pricing configuration model for the Abacus
// metering engine and the machinery that keeps it current.
//
// # Configuration Model
//
// A Configuration holds the dollar pricing per 1000 tokens for each model,
// optional per-feature margin multipliers, a default margin, and the
// dollar-to-credit conversion rate. Callers customize pricing by supplying
// Overrides, which are deep-merged onto the built-in defaults exactly once
// at engine construction:
//
//	cfg := config.Merge(config.Default(), config.Overrides{
//	    CreditPerDollar: ptr(500.0),
//	    Models: map[string]config.ModelOverride{
//	        "openai:gpt-4": {
//	            Features: map[string]config.FeaturePricing{
//	                "summarize": {Margin: 1.25},
//	            },
//	        },
//	    },
//	})
//
// The merge never removes default entries: override model entries replace
// only the scalar fields they set, and feature maps are merged key-by-key.
//
// # Live Replacement
//
// The Store holds the single live Configuration for an engine instance.
// Replacement is wholesale and atomic; readers always see a complete
// snapshot and no history is kept. Both the dashboard sync client and the
// local FileWatcher install updates through Store.Replace.
//
// # File Loading
//
// LoadConfig reads a partial YAML document, applies ABACUS_* environment
// variable overrides, merges onto the defaults, and validates the result.
package config
