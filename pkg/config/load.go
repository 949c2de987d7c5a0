package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadOverrides loads partial pricing configuration from a YAML file.
// The result is meant to be merged onto Default() with Merge; missing
// fields stay nil and keep their default values.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var ov Overrides
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return Overrides{}, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	return ov, nil
}

// LoadConfig loads overrides from a YAML file, applies environment variable
// overrides, merges the result onto the built-in defaults and validates it.
//
// The loading sequence is:
//  1. Parse YAML overrides from file
//  2. Apply environment variable overrides (ABACUS_*)
//  3. Merge onto Default()
//  4. Validate the final configuration
func LoadConfig(path string) (Configuration, error) {
	ov, err := LoadOverrides(path)
	if err != nil {
		return Configuration{}, err
	}

	applyEnvOverrides(&ov)

	cfg := Merge(Default(), ov)
	if err := Validate(cfg); err != nil {
		return Configuration{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the given
// overrides. Environment variables always take precedence over file-based
// configuration.
func applyEnvOverrides(ov *Overrides) {
	if val := os.Getenv("ABACUS_DEFAULT_MARGIN"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			ov.DefaultMargin = &f
		}
	}
	if val := os.Getenv("ABACUS_CREDIT_PER_DOLLAR"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			ov.CreditPerDollar = &f
		}
	}
}

// Validate checks a merged configuration for values that would make every
// estimate meaningless. It intentionally does not reject zero or negative
// CreditPerDollar: the conversion rate propagates as-is.
func Validate(cfg Configuration) error {
	if cfg.DefaultMargin < 0 {
		return fmt.Errorf("default_margin must be non-negative, got %v", cfg.DefaultMargin)
	}
	for name, mp := range cfg.Models {
		if mp.PromptCostPer1K < 0 {
			return fmt.Errorf("model %q: prompt_cost_per_1k must be non-negative, got %v", name, mp.PromptCostPer1K)
		}
		if mp.CompletionCostPer1K < 0 {
			return fmt.Errorf("model %q: completion_cost_per_1k must be non-negative, got %v", name, mp.CompletionCostPer1K)
		}
		for fname, fp := range mp.Features {
			if fp.Margin < 0 {
				return fmt.Errorf("model %q feature %q: margin must be non-negative, got %v", name, fname, fp.Margin)
			}
		}
	}
	return nil
}
