package meter

import (
	"fmt"

	"tallyhq/abacus/pkg/dashboard"
)

// SyncConfig configures dashboard synchronization.
type SyncConfig struct {
	// Endpoint is the dashboard base URL.
	Endpoint string

	// APIKey authenticates requests to the dashboard.
	APIKey string

	// ProjectID is attached to posted reconciliation logs (optional).
	ProjectID string

	// Transport overrides the dashboard transport; nil selects the HTTP
	// transport. Intended for tests.
	Transport dashboard.Transport
}

// EnableDashboardSync starts synchronizing with the dashboard: pricing
// configuration updates flow in through the subscription, and WrapCall
// reconciliation outcomes flow out as best-effort log posts.
//
// Enabling is idempotent; calling it while sync is active is a no-op.
// Connection problems never surface here — the subscription falls back to
// polling internally and the engine keeps working offline.
func (e *Engine) EnableDashboardSync(cfg SyncConfig) error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("dashboard endpoint is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sync != nil {
		return nil // already enabled
	}

	client := dashboard.NewClient(dashboard.ClientConfig{
		Endpoint:       cfg.Endpoint,
		APIKey:         cfg.APIKey,
		ProjectID:      cfg.ProjectID,
		Transport:      cfg.Transport,
		OnConfigUpdate: e.replaceConfig,
	})
	client.Subscribe()

	e.sync = client
	e.logger.Info("dashboard sync enabled", "endpoint", cfg.Endpoint)
	return nil
}

// DisableDashboardSync stops dashboard synchronization, closing any open
// stream and cancelling any polling timer. Idempotent.
func (e *Engine) DisableDashboardSync() {
	e.mu.Lock()
	client := e.sync
	e.sync = nil
	e.mu.Unlock()

	if client == nil {
		return
	}

	client.Unsubscribe()
	e.logger.Info("dashboard sync disabled")
}

// IsDashboardSyncEnabled reports whether dashboard sync is active.
func (e *Engine) IsDashboardSyncEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sync != nil
}

// syncClient returns the current dashboard client, or nil when sync is
// disabled.
func (e *Engine) syncClient() *dashboard.Client {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sync
}
