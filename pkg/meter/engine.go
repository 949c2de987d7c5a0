package meter

import (
	"log/slog"
	"sync"

	"tallyhq/abacus/pkg/config"
	"tallyhq/abacus/pkg/dashboard"
	"tallyhq/abacus/pkg/ledger"
	"tallyhq/abacus/pkg/pricing"
	"tallyhq/abacus/pkg/reconcile"
	"tallyhq/abacus/pkg/telemetry/metrics"
)

// EngineConfig configures a metering engine.
type EngineConfig struct {
	// Overrides is a partial pricing configuration deep-merged onto the
	// built-in defaults at construction. Nil uses the defaults as-is.
	Overrides *config.Overrides

	// Metrics receives metering telemetry. Nil disables metrics.
	Metrics *metrics.MeterMetrics

	// Ledger persists reconciliation outcomes locally. Nil disables the
	// ledger. The engine takes ownership and closes it on Close.
	Ledger ledger.Store
}

// Engine is the credit metering engine: it estimates credit costs before a
// model call, reconciles them against actual usage afterwards, and
// optionally synchronizes with a billing dashboard.
//
// Applications construct exactly one Engine per pricing domain and thread
// it through their own dependency graph; there is no package-level
// instance. All methods are safe for concurrent use.
type Engine struct {
	store   *config.Store
	metrics *metrics.MeterMetrics
	ledger  ledger.Store
	logger  *slog.Logger

	// Dashboard sync. sync is non-nil exactly while enabled.
	mu   sync.Mutex
	sync *dashboard.Client

	// Tracks in-flight asynchronous outcome submissions so Close can
	// flush them.
	wg sync.WaitGroup
}

// New creates a metering engine. The effective configuration is the
// built-in default pricing table with cfg.Overrides merged on top.
func New(cfg EngineConfig) *Engine {
	effective := config.Default()
	if cfg.Overrides != nil {
		effective = config.Merge(effective, *cfg.Overrides)
	}

	return &Engine{
		store:   config.NewStore(effective),
		metrics: cfg.Metrics,
		ledger:  cfg.Ledger,
		logger:  slog.Default().With("component", "meter.engine"),
	}
}

// EstimateCredits computes the credit cost of a prospective call from the
// current pricing configuration. Returns *pricing.UnknownModelError when
// the model is not configured.
func (e *Engine) EstimateCredits(model, feature string, promptTokens, completionTokens int) (float64, error) {
	credits, err := pricing.Estimate(e.store.Snapshot(), model, feature, promptTokens, completionTokens)
	if err != nil {
		return 0, err
	}

	e.metrics.RecordEstimate(model, feature, credits)
	return credits, nil
}

// Reconcile compares an estimate against actual token usage and returns
// the resulting record. Reconcile is deterministic and side-effect free;
// only WrapCall's reconciliations are submitted to the dashboard.
func (e *Engine) Reconcile(model, feature string, estPromptTokens, estCompletionTokens, actualPromptTokens, actualCompletionTokens int) (*reconcile.Record, error) {
	rec, err := reconcile.Reconcile(e.store.Snapshot(), model, feature,
		estPromptTokens, estCompletionTokens, actualPromptTokens, actualCompletionTokens)
	if err != nil {
		return nil, err
	}

	e.metrics.RecordReconciliation(model, feature, rec.CreditDelta)
	return rec, nil
}

// GetConfig returns a deep copy of the current pricing configuration.
func (e *Engine) GetConfig() config.Configuration {
	return e.store.Get()
}

// AvailableModels returns the configured model identifiers, sorted.
func (e *Engine) AvailableModels() []string {
	return e.store.Snapshot().ModelNames()
}

// AvailableFeatures returns the feature identifiers configured for the
// given model, sorted. Returns *pricing.UnknownModelError when the model
// is not configured.
func (e *Engine) AvailableFeatures(model string) ([]string, error) {
	cfg := e.store.Snapshot()
	features, ok := cfg.FeatureNames(model)
	if !ok {
		return nil, &pricing.UnknownModelError{Model: model, Available: cfg.ModelNames()}
	}
	return features, nil
}

// Close disables dashboard sync, waits for in-flight outcome submissions
// to finish, and closes the ledger if one was configured.
func (e *Engine) Close() error {
	e.DisableDashboardSync()
	e.wg.Wait()

	if e.ledger != nil {
		return e.ledger.Close()
	}
	return nil
}
