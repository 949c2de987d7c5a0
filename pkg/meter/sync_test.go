package meter

import (
	"testing"
	"time"

	"tallyhq/abacus/pkg/config"
	"tallyhq/abacus/pkg/dashboard"
)

func TestEnableDashboardSync_RequiresEndpoint(t *testing.T) {
	engine := New(EngineConfig{})
	defer engine.Close()

	if err := engine.EnableDashboardSync(SyncConfig{}); err == nil {
		t.Error("EnableDashboardSync without endpoint must fail")
	}
	if engine.IsDashboardSyncEnabled() {
		t.Error("sync must stay disabled after a rejected enable")
	}
}

func TestEnableDashboardSync_Idempotent(t *testing.T) {
	transport := &stubTransport{}
	engine := New(EngineConfig{})
	defer engine.Close()

	for i := 0; i < 3; i++ {
		if err := engine.EnableDashboardSync(SyncConfig{
			Endpoint:  "https://dash.test",
			APIKey:    "key",
			Transport: transport,
		}); err != nil {
			t.Fatalf("EnableDashboardSync failed: %v", err)
		}
	}
	if !engine.IsDashboardSyncEnabled() {
		t.Error("sync should be enabled")
	}
}

func TestDisableDashboardSync_Idempotent(t *testing.T) {
	transport := &stubTransport{}
	engine := New(EngineConfig{})
	defer engine.Close()

	// Disable before enable is a no-op.
	engine.DisableDashboardSync()

	if err := engine.EnableDashboardSync(SyncConfig{
		Endpoint:  "https://dash.test",
		APIKey:    "key",
		Transport: transport,
	}); err != nil {
		t.Fatalf("EnableDashboardSync failed: %v", err)
	}

	engine.DisableDashboardSync()
	engine.DisableDashboardSync()

	if engine.IsDashboardSyncEnabled() {
		t.Error("sync should be disabled")
	}
}

func TestDashboardSync_ConfigUpdatesReplaceEngineConfig(t *testing.T) {
	pushed := config.Default()
	pushed.CreditPerDollar = 5000

	// A rejected stream makes the subscription poll, and the first poll
	// fetches immediately.
	transport := &stubTransport{
		openErr:  &dashboard.ConnectionError{Endpoint: "https://dash.test", Message: "refused"},
		fetchCfg: pushed,
	}
	engine := New(EngineConfig{})
	defer engine.Close()

	if err := engine.EnableDashboardSync(SyncConfig{
		Endpoint:  "https://dash.test",
		APIKey:    "key",
		Transport: transport,
	}); err != nil {
		t.Fatalf("EnableDashboardSync failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if engine.GetConfig().CreditPerDollar == 5000 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("configuration never replaced; CreditPerDollar = %v",
		engine.GetConfig().CreditPerDollar)
}
