package config

import "sort"

// Configuration is the complete pricing configuration held by an engine
// instance. It is always a fully-populated value: partial caller input is
// expressed as Overrides and merged onto the built-in defaults at
// construction time (see Merge).
//
// A Configuration value is never mutated in place once installed in a
// Store; updates replace the whole value atomically so concurrent readers
// always observe a consistent snapshot.
type Configuration struct {
	// DefaultMargin is the multiplier applied to base dollar cost when no
	// feature-specific margin is configured. Zero is legal and yields zero
	// credits.
	DefaultMargin float64 `yaml:"default_margin" json:"defaultMargin"`

	// CreditPerDollar is the conversion rate from dollars to credits.
	// Zero or negative values are not rejected; they propagate into the
	// computed credits.
	CreditPerDollar float64 `yaml:"credit_per_dollar" json:"creditPerDollar"`

	// Models maps model identifiers (e.g. "openai:gpt-4") to their pricing.
	Models map[string]ModelPricing `yaml:"models" json:"models"`
}

// ModelPricing contains per-model token pricing and optional per-feature
// margins.
type ModelPricing struct {
	// PromptCostPer1K is the dollar cost per 1000 prompt tokens.
	PromptCostPer1K float64 `yaml:"prompt_cost_per_1k" json:"promptCostPer1k"`

	// CompletionCostPer1K is the dollar cost per 1000 completion tokens.
	CompletionCostPer1K float64 `yaml:"completion_cost_per_1k" json:"completionCostPer1k"`

	// Features maps feature identifiers (e.g. "chat") to feature pricing.
	Features map[string]FeaturePricing `yaml:"features,omitempty" json:"features,omitempty"`
}

// FeaturePricing contains the margin override for a single feature.
//
// A configured margin of exactly 0 is honored as a legitimate "free
// feature" configuration; fallback to DefaultMargin happens only when the
// feature key is absent.
type FeaturePricing struct {
	// Margin is the multiplier applied to base dollar cost for this feature.
	Margin float64 `yaml:"margin" json:"margin"`
}

// Clone returns a deep copy of the configuration. Callers may freely mutate
// the returned value without affecting the original.
func (c Configuration) Clone() Configuration {
	out := Configuration{
		DefaultMargin:   c.DefaultMargin,
		CreditPerDollar: c.CreditPerDollar,
	}
	if c.Models != nil {
		out.Models = make(map[string]ModelPricing, len(c.Models))
		for name, mp := range c.Models {
			out.Models[name] = mp.clone()
		}
	}
	return out
}

func (m ModelPricing) clone() ModelPricing {
	out := ModelPricing{
		PromptCostPer1K:     m.PromptCostPer1K,
		CompletionCostPer1K: m.CompletionCostPer1K,
	}
	if m.Features != nil {
		out.Features = make(map[string]FeaturePricing, len(m.Features))
		for name, fp := range m.Features {
			out.Features[name] = fp
		}
	}
	return out
}

// ModelNames returns the configured model identifiers in sorted order.
func (c Configuration) ModelNames() []string {
	names := make([]string, 0, len(c.Models))
	for name := range c.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FeatureNames returns the configured feature identifiers for a model in
// sorted order. The second return value reports whether the model exists.
func (c Configuration) FeatureNames(model string) ([]string, bool) {
	mp, ok := c.Models[model]
	if !ok {
		return nil, false
	}
	names := make([]string, 0, len(mp.Features))
	for name := range mp.Features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, true
}

// Overrides is a partial configuration supplied by the caller (or loaded
// from a YAML file). Pointer fields distinguish "explicitly set to zero"
// from "absent, use the default".
type Overrides struct {
	// DefaultMargin overrides Configuration.DefaultMargin when non-nil.
	DefaultMargin *float64 `yaml:"default_margin"`

	// CreditPerDollar overrides Configuration.CreditPerDollar when non-nil.
	CreditPerDollar *float64 `yaml:"credit_per_dollar"`

	// Models contains per-model overrides, merged key-by-key onto the
	// default model table.
	Models map[string]ModelOverride `yaml:"models"`
}

// ModelOverride is a partial ModelPricing. Nil scalar fields keep the
// default model's value; Features entries override or extend the default
// feature map without removing unmentioned default features.
type ModelOverride struct {
	PromptCostPer1K     *float64                  `yaml:"prompt_cost_per_1k"`
	CompletionCostPer1K *float64                  `yaml:"completion_cost_per_1k"`
	Features            map[string]FeaturePricing `yaml:"features"`
}
