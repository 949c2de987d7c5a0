package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMeterMetrics_RecordEstimate(t *testing.T) {
	registry := prometheus.NewRegistry()
	mm := NewMeterMetrics(registry)

	mm.RecordEstimate("openai:gpt-4", "chat", 51)
	mm.RecordEstimate("openai:gpt-4", "chat", 51)

	count := testutil.ToFloat64(mm.estimatesTotal.WithLabelValues("openai:gpt-4", "chat"))
	if count != 2 {
		t.Errorf("estimates_total = %v, want 2", count)
	}
	credits := testutil.ToFloat64(mm.creditsEstimated.WithLabelValues("openai:gpt-4", "chat"))
	if credits != 102 {
		t.Errorf("credits_estimated_total = %v, want 102", credits)
	}
}

func TestMeterMetrics_RecordReconciliationDirection(t *testing.T) {
	registry := prometheus.NewRegistry()
	mm := NewMeterMetrics(registry)

	mm.RecordReconciliation("openai:gpt-4", "chat", -0.6)
	mm.RecordReconciliation("openai:gpt-4", "chat", 0.4)

	total := testutil.ToFloat64(mm.reconciliationsTotal.WithLabelValues("openai:gpt-4", "chat"))
	if total != 2 {
		t.Errorf("reconciliations_total = %v, want 2", total)
	}
}

func TestMeterMetrics_RecordDashboardPost(t *testing.T) {
	registry := prometheus.NewRegistry()
	mm := NewMeterMetrics(registry)

	mm.RecordDashboardPost(true)
	mm.RecordDashboardPost(false)
	mm.RecordDashboardPost(false)

	if got := testutil.ToFloat64(mm.dashboardPosts.WithLabelValues("success")); got != 1 {
		t.Errorf("success posts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(mm.dashboardPosts.WithLabelValues("failure")); got != 2 {
		t.Errorf("failure posts = %v, want 2", got)
	}
}

func TestMeterMetrics_NilSafe(t *testing.T) {
	var mm *MeterMetrics

	// A disabled collector must be callable.
	mm.RecordEstimate("m", "f", 1)
	mm.RecordReconciliation("m", "f", -1)
	mm.RecordDashboardPost(true)
}
