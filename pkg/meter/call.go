package meter

import (
	"context"
	"fmt"
	"time"

	"tallyhq/abacus/pkg/config"
	"tallyhq/abacus/pkg/ledger"
	"tallyhq/abacus/pkg/pricing"
	"tallyhq/abacus/pkg/reconcile"
)

// submitTimeout bounds the asynchronous outcome submission: long enough
// for the dashboard client's full retry schedule, short enough that Close
// never hangs on a dead endpoint.
const submitTimeout = 30 * time.Second

// CallRequest describes one metered model call.
type CallRequest struct {
	Model   string
	Feature string

	// PromptTokens and CompletionTokens are the pre-call estimates.
	PromptTokens     int
	CompletionTokens int

	// Invoke performs the actual provider call. It is the only step that
	// may take arbitrary time or fail with a caller-defined error; such
	// errors propagate unchanged.
	Invoke func(ctx context.Context) (any, error)

	// Extractor reads actual token usage from the response. When nil,
	// actual counts default to the estimates and the credit delta is
	// zero.
	Extractor Extractor
}

// CallResult is the outcome of a metered call.
type CallResult struct {
	// Response is whatever Invoke returned.
	Response any

	// Reconciliation compares the pre-call estimate with actual usage.
	Reconciliation *reconcile.Record
}

// WrapCall meters one model call: it estimates the credit cost, invokes
// the caller's function, extracts actual usage from the response,
// reconciles, and submits the outcome to the dashboard and ledger without
// blocking the return path.
//
// The pricing configuration is snapshotted once at entry; a concurrent
// configuration replacement never splits one call across two pricing
// tables. Invocation and extraction errors propagate unchanged; dashboard
// and ledger failures are logged and swallowed.
func (e *Engine) WrapCall(ctx context.Context, req CallRequest) (*CallResult, error) {
	if req.Invoke == nil {
		return nil, fmt.Errorf("invoke function is required")
	}

	cfg := e.store.Snapshot()

	// Validates the model before spending anything on the provider call.
	estimated, err := pricing.Estimate(cfg, req.Model, req.Feature, req.PromptTokens, req.CompletionTokens)
	if err != nil {
		return nil, err
	}
	e.metrics.RecordEstimate(req.Model, req.Feature, estimated)

	response, err := req.Invoke(ctx)
	if err != nil {
		return nil, err
	}

	actualPrompt, actualCompletion := req.PromptTokens, req.CompletionTokens
	if req.Extractor != nil {
		usage, err := req.Extractor.Extract(response)
		if err != nil {
			return nil, err
		}
		actualPrompt, actualCompletion = usage.PromptTokens, usage.CompletionTokens
	}

	rec, err := reconcile.Reconcile(cfg, req.Model, req.Feature,
		req.PromptTokens, req.CompletionTokens, actualPrompt, actualCompletion)
	if err != nil {
		return nil, err
	}
	e.metrics.RecordReconciliation(req.Model, req.Feature, rec.CreditDelta)

	e.submitOutcome(rec, cfg.CreditPerDollar)

	return &CallResult{Response: response, Reconciliation: rec}, nil
}

// submitOutcome records the reconciliation in the ledger and posts it to
// the dashboard, asynchronously and best-effort. Failures never reach the
// caller.
func (e *Engine) submitOutcome(rec *reconcile.Record, creditPerDollar float64) {
	client := e.syncClient()
	if client == nil && e.ledger == nil {
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		if e.ledger != nil {
			if err := e.ledger.Append(ctx, ledger.NewEntry(rec)); err != nil {
				e.logger.Warn("failed to record reconciliation in ledger",
					"model", rec.Model,
					"error", err,
				)
			}
		}

		if client != nil {
			if err := client.PostReconciliationLog(ctx, rec, creditPerDollar); err != nil {
				e.logger.Warn("failed to post reconciliation log",
					"model", rec.Model,
					"error", err,
				)
				e.metrics.RecordDashboardPost(false)
				return
			}
			e.metrics.RecordDashboardPost(true)
		}
	}()
}

// replaceConfig installs a configuration pushed by the dashboard.
func (e *Engine) replaceConfig(cfg config.Configuration) {
	e.store.Replace(cfg)
	e.logger.Info("pricing configuration replaced from dashboard",
		"models", len(cfg.Models),
		"credit_per_dollar", cfg.CreditPerDollar,
	)
}
