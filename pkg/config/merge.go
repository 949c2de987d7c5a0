package config

// Merge deep-merges caller overrides onto a base configuration and returns
// the result. Neither input is modified. Merge never fails: absent override
// fields simply keep the base value.
//
// Merge rules:
//   - DefaultMargin and CreditPerDollar are taken from the overrides when
//     set, otherwise from the base.
//   - The model table starts as a copy of the base table. For each override
//     model: if the model already exists, its scalar costs are overridden
//     field-by-field and its feature map is merged key-by-key (override
//     features win, base features not mentioned are retained); if the model
//     is new, it is inserted as-is (nil scalar fields become zero).
func Merge(base Configuration, overrides Overrides) Configuration {
	out := base.Clone()

	if overrides.DefaultMargin != nil {
		out.DefaultMargin = *overrides.DefaultMargin
	}
	if overrides.CreditPerDollar != nil {
		out.CreditPerDollar = *overrides.CreditPerDollar
	}

	if len(overrides.Models) == 0 {
		return out
	}
	if out.Models == nil {
		out.Models = make(map[string]ModelPricing, len(overrides.Models))
	}

	for name, ov := range overrides.Models {
		mp := out.Models[name] // zero value when the model is new

		if ov.PromptCostPer1K != nil {
			mp.PromptCostPer1K = *ov.PromptCostPer1K
		}
		if ov.CompletionCostPer1K != nil {
			mp.CompletionCostPer1K = *ov.CompletionCostPer1K
		}
		if len(ov.Features) > 0 {
			merged := make(map[string]FeaturePricing, len(mp.Features)+len(ov.Features))
			for fname, fp := range mp.Features {
				merged[fname] = fp
			}
			for fname, fp := range ov.Features {
				merged[fname] = fp
			}
			mp.Features = merged
		}

		out.Models[name] = mp
	}

	return out
}
