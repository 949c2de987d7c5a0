// Package pricing turns model identifiers, feature identifiers and token
// counts into dollar cost and credit cost.
//
// All functions are stateless and operate on a configuration snapshot,
// so concurrent calls need no synchronization. Credits are derived as
//
//	credits = dollarCost(tokens) * margin * creditPerDollar
//
// rounded to 6 decimal places, half away from zero. The margin comes from
// the model's feature table when the feature is configured (an explicit 0
// is honored as a free feature) and from the configuration's default
// margin otherwise.
package pricing
