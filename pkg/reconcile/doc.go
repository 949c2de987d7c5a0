// Package reconcile compares a pre-call credit estimate against the actual
// usage reported by a provider and computes the credit, cost and margin
// deltas. Both evaluations run against the same configuration snapshot, so
// a concurrent configuration replacement cannot skew one side of the
// comparison.
package reconcile
