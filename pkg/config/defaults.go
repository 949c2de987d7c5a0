package config

// Default values for top-level configuration fields.
const (
	// DefaultMargin is the built-in default margin multiplier.
	DefaultMargin = 1.0

	// DefaultCreditPerDollar is the built-in dollar-to-credit conversion rate.
	DefaultCreditPerDollar = 1000.0
)

// Default returns the built-in default configuration. The pricing table
// covers the commonly metered hosted models; unknown models must be added
// via Overrides before they can be estimated.
//
// The returned value is freshly allocated on every call, so callers may
// mutate it without affecting later calls.
func Default() Configuration {
	return Configuration{
		DefaultMargin:   DefaultMargin,
		CreditPerDollar: DefaultCreditPerDollar,
		Models: map[string]ModelPricing{
			"openai:gpt-4": {
				PromptCostPer1K:     0.03,
				CompletionCostPer1K: 0.06,
				Features: map[string]FeaturePricing{
					"chat": {Margin: 2.0},
				},
			},
			"openai:gpt-4-turbo": {
				PromptCostPer1K:     0.01,
				CompletionCostPer1K: 0.03,
				Features: map[string]FeaturePricing{
					"chat": {Margin: 2.0},
				},
			},
			"openai:gpt-3.5-turbo": {
				PromptCostPer1K:     0.0005,
				CompletionCostPer1K: 0.0015,
				Features: map[string]FeaturePricing{
					"chat": {Margin: 1.5},
				},
			},
			"anthropic:claude-3-opus": {
				PromptCostPer1K:     0.015,
				CompletionCostPer1K: 0.075,
				Features: map[string]FeaturePricing{
					"chat": {Margin: 2.0},
				},
			},
			"anthropic:claude-3-haiku": {
				PromptCostPer1K:     0.00025,
				CompletionCostPer1K: 0.00125,
			},
		},
	}
}
