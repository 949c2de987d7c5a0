package pricing

import (
	"math"

	"tallyhq/abacus/pkg/config"
)

// Estimate computes the credit cost of a call against a configuration
// snapshot. It is a pure function: identical inputs against an unchanged
// snapshot always yield identical output, and zero tokens yield zero
// credits without error.
//
// The computation is baseCost * margin * creditPerDollar, where baseCost is
// the dollar cost of the token counts at the model's per-1k rates and
// margin is the feature margin when the feature is configured for the
// model, otherwise the configuration's default margin. The result is
// rounded to 6 decimal places, half away from zero.
//
// Returns *UnknownModelError when the model is not configured.
func Estimate(cfg config.Configuration, model, feature string, promptTokens, completionTokens int) (float64, error) {
	mp, ok := cfg.Models[model]
	if !ok {
		return 0, &UnknownModelError{Model: model, Available: cfg.ModelNames()}
	}

	baseCost := DollarCost(mp, promptTokens, completionTokens)
	margin := ResolveMargin(cfg, mp, feature)

	return Round6(baseCost * margin * cfg.CreditPerDollar), nil
}

// DollarCost computes the raw dollar cost of the token counts at the
// model's per-1k rates, without margin or credit conversion. Negative
// token counts are treated as zero.
func DollarCost(mp config.ModelPricing, promptTokens, completionTokens int) float64 {
	return tokenCost(promptTokens, mp.PromptCostPer1K) + tokenCost(completionTokens, mp.CompletionCostPer1K)
}

// ResolveMargin returns the margin multiplier for a feature of a model.
// A feature entry is authoritative whenever the key is present, including
// an explicit margin of 0 (a free feature); the default margin applies
// only when the feature key is absent.
func ResolveMargin(cfg config.Configuration, mp config.ModelPricing, feature string) float64 {
	if fp, ok := mp.Features[feature]; ok {
		return fp.Margin
	}
	return cfg.DefaultMargin
}

// Round6 rounds to 6 decimal places, half away from zero. All monetary and
// credit outputs of the engine pass through this before being returned.
func Round6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}

// tokenCost computes the cost for a token count at a per-1k-token rate.
func tokenCost(tokens int, costPer1K float64) float64 {
	if tokens <= 0 {
		return 0
	}
	return (float64(tokens) / 1000.0) * costPer1K
}
