package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MeterMetrics tracks credit metering activity.
//
// Metrics:
//   - abacus_estimates_total: Number of credit estimates by model and feature
//   - abacus_credits_estimated_total: Sum of estimated credits by model and feature
//   - abacus_reconciliations_total: Number of reconciliations by model and feature
//   - abacus_credit_delta: Per-call credit delta distribution (histogram)
//   - abacus_dashboard_posts_total: Dashboard log posts by outcome
type MeterMetrics struct {
	estimatesTotal *prometheus.CounterVec

	creditsEstimated *prometheus.CounterVec

	reconciliationsTotal *prometheus.CounterVec

	// Credit delta per reconciliation. Negative deltas (actual under
	// estimate) are recorded by absolute value under the "under" label.
	creditDelta *prometheus.HistogramVec

	dashboardPosts *prometheus.CounterVec
}

// NewMeterMetrics creates and registers metering metrics with the provided
// registry.
func NewMeterMetrics(registry *prometheus.Registry) *MeterMetrics {
	mm := &MeterMetrics{
		estimatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "abacus",
				Name:      "estimates_total",
				Help:      "Number of credit estimates by model and feature",
			},
			[]string{"model", "feature"},
		),

		creditsEstimated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "abacus",
				Name:      "credits_estimated_total",
				Help:      "Sum of estimated credits by model and feature",
			},
			[]string{"model", "feature"},
		),

		reconciliationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "abacus",
				Name:      "reconciliations_total",
				Help:      "Number of reconciliations by model and feature",
			},
			[]string{"model", "feature"},
		),

		creditDelta: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "abacus",
				Name:      "credit_delta",
				Help:      "Absolute credit delta per reconciliation",
				// Credit buckets: fractions of a credit up to large drifts.
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 50, 100},
			},
			[]string{"model", "feature", "direction"},
		),

		dashboardPosts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "abacus",
				Name:      "dashboard_posts_total",
				Help:      "Dashboard reconciliation log posts by outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		mm.estimatesTotal,
		mm.creditsEstimated,
		mm.reconciliationsTotal,
		mm.creditDelta,
		mm.dashboardPosts,
	)

	return mm
}

// RecordEstimate records a single credit estimate.
func (m *MeterMetrics) RecordEstimate(model, feature string, credits float64) {
	if m == nil {
		return
	}
	m.estimatesTotal.WithLabelValues(model, feature).Inc()
	if credits > 0 {
		m.creditsEstimated.WithLabelValues(model, feature).Add(credits)
	}
}

// RecordReconciliation records the outcome of a reconciliation.
func (m *MeterMetrics) RecordReconciliation(model, feature string, creditDelta float64) {
	if m == nil {
		return
	}
	m.reconciliationsTotal.WithLabelValues(model, feature).Inc()

	direction := "over"
	if creditDelta < 0 {
		direction = "under"
		creditDelta = -creditDelta
	}
	m.creditDelta.WithLabelValues(model, feature, direction).Observe(creditDelta)
}

// RecordDashboardPost records one dashboard log-posting outcome.
func (m *MeterMetrics) RecordDashboardPost(success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.dashboardPosts.WithLabelValues(outcome).Inc()
}
