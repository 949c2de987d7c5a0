package reconcile

import (
	"tallyhq/abacus/pkg/config"
	"tallyhq/abacus/pkg/pricing"
)

// Record is the outcome of reconciling a pre-call estimate against actual
// usage reported by the provider. All float fields are rounded to 6
// decimal places independently. A positive CreditDelta means the original
// estimate was too low.
type Record struct {
	// Model and Feature identify the pricing used for both evaluations.
	Model   string `json:"model"`
	Feature string `json:"feature"`

	// EstimatedPromptTokens and EstimatedCompletionTokens are the token
	// counts the estimate was computed from.
	EstimatedPromptTokens     int `json:"estimatedPromptTokens"`
	EstimatedCompletionTokens int `json:"estimatedCompletionTokens"`

	// ActualPromptTokens and ActualCompletionTokens are the token counts
	// extracted from the provider response.
	ActualPromptTokens     int `json:"actualPromptTokens"`
	ActualCompletionTokens int `json:"actualCompletionTokens"`

	// EstimatedCredits is the pre-call credit estimate.
	EstimatedCredits float64 `json:"estimatedCredits"`

	// ActualTokensUsed is the sum of actual prompt and completion tokens.
	ActualTokensUsed int `json:"actualTokensUsed"`

	// ActualCost is the dollar cost of the actual token counts, without
	// margin or credit conversion.
	ActualCost float64 `json:"actualCost"`

	// CreditDelta is actual credits minus estimated credits.
	CreditDelta float64 `json:"creditDelta"`

	// CostDelta is actual dollar cost minus estimated dollar cost.
	CostDelta float64 `json:"costDelta"`

	// MarginDelta is the difference between the effective
	// credits-per-dollar ratios of the actual and estimated evaluations.
	// It is defined as 0 when either dollar cost is 0, since the ratio
	// carries no information for a free call.
	MarginDelta float64 `json:"marginDelta"`
}

// Reconcile evaluates the pricing engine twice against the same
// configuration snapshot, once with estimated token counts and once with
// actual counts, and reports the deltas.
//
// Returns *pricing.UnknownModelError when the model is not configured.
func Reconcile(cfg config.Configuration, model, feature string, estPrompt, estCompletion, actualPrompt, actualCompletion int) (*Record, error) {
	estimatedCredits, err := pricing.Estimate(cfg, model, feature, estPrompt, estCompletion)
	if err != nil {
		return nil, err
	}

	mp := cfg.Models[model] // present, or Estimate would have failed
	margin := pricing.ResolveMargin(cfg, mp, feature)

	estimatedCost := pricing.DollarCost(mp, estPrompt, estCompletion)
	actualCost := pricing.DollarCost(mp, actualPrompt, actualCompletion)
	actualCredits := actualCost * margin * cfg.CreditPerDollar

	rec := &Record{
		Model:                     model,
		Feature:                   feature,
		EstimatedPromptTokens:     estPrompt,
		EstimatedCompletionTokens: estCompletion,
		ActualPromptTokens:        actualPrompt,
		ActualCompletionTokens:    actualCompletion,
		EstimatedCredits:          estimatedCredits,
		ActualTokensUsed:          actualPrompt + actualCompletion,
		ActualCost:                pricing.Round6(actualCost),
		CreditDelta:               pricing.Round6(actualCredits - estimatedCredits),
		CostDelta:                 pricing.Round6(actualCost - estimatedCost),
	}

	if estimatedCost != 0 && actualCost != 0 {
		rec.MarginDelta = pricing.Round6(actualCredits/actualCost - estimatedCredits/estimatedCost)
	}

	return rec, nil
}
