package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"tallyhq/abacus/pkg/config"
	"tallyhq/abacus/pkg/reconcile"
)

// Timing constants for the sync protocol.
const (
	// attemptTimeout bounds each individual transport attempt.
	attemptTimeout = 5 * time.Second

	// maxAttempts is the total number of transport attempts per operation
	// (1 initial + 3 retries).
	maxAttempts = 4

	// openTimeout bounds the streaming subscription handshake; when it
	// elapses the subscription falls back to polling.
	openTimeout = 10 * time.Second

	// reconnectDelay is the pause before re-opening a stream that closed
	// while still subscribed.
	reconnectDelay = 5 * time.Second

	// pollInterval is the period between configuration fetches in polling
	// mode.
	pollInterval = 30 * time.Second
)

// backoffDelays are the pauses between consecutive failed attempts.
var backoffDelays = []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}

// ClientConfig configures a dashboard sync client.
type ClientConfig struct {
	// Endpoint is the dashboard base URL (e.g. "https://dash.example.com").
	Endpoint string

	// APIKey authenticates every request via a bearer token.
	APIKey string

	// ProjectID is attached to every posted log entry (optional).
	ProjectID string

	// OnConfigUpdate is invoked with every configuration received from the
	// dashboard, whether pushed over the stream or fetched by polling.
	// It is called from the subscription goroutine; implementations must
	// be safe for that.
	OnConfigUpdate func(config.Configuration)

	// Transport overrides the HTTP transport; nil selects HTTPTransport.
	// Intended for tests.
	Transport Transport
}

// Client synchronizes pricing configuration from, and reconciliation logs
// to, a remote dashboard. All operations are best-effort: the metering
// engine stays fully functional when the dashboard is unreachable.
type Client struct {
	transport Transport
	endpoint  string
	projectID string
	onUpdate  func(config.Configuration)
	logger    *slog.Logger

	// sleep waits for a backoff or protocol delay, honoring context
	// cancellation. Replaced in tests to make timing deterministic.
	sleep func(ctx context.Context, d time.Duration) error

	// Subscription state. cancel is non-nil exactly while subscribed.
	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// NewClient creates a sync client. The subscription is not started until
// Subscribe is called.
func NewClient(cfg ClientConfig) *Client {
	transport := cfg.Transport
	if transport == nil {
		transport = NewHTTPTransport(cfg.Endpoint, cfg.APIKey)
	}

	onUpdate := cfg.OnConfigUpdate
	if onUpdate == nil {
		onUpdate = func(config.Configuration) {}
	}

	return &Client{
		transport: transport,
		endpoint:  cfg.Endpoint,
		projectID: cfg.ProjectID,
		onUpdate:  onUpdate,
		logger:    slog.Default().With("component", "dashboard.client"),
		sleep:     sleepContext,
		state:     StateUnsubscribed,
	}
}

// PostReconciliationLog serializes one reconciliation outcome and posts it
// to the dashboard, retrying failed attempts with exponential backoff
// (500ms, 1s, 2s). Each attempt has its own timeout; a timed-out attempt
// counts as failed and is retried like any other failure.
//
// After exhausting retries the returned error is an *APIError carrying the
// last HTTP status. Callers on the fire-and-forget path must swallow it.
func (c *Client) PostReconciliationLog(ctx context.Context, rec *reconcile.Record, creditPerDollar float64) error {
	entry := NewLogEntry(rec, creditPerDollar, c.projectID)

	return c.withRetry(ctx, "post reconciliation log", func(ctx context.Context) error {
		return c.transport.PostLog(ctx, entry)
	})
}

// FetchConfig retrieves the full pricing configuration with the same
// retry, backoff and per-attempt timeout policy as log posting.
func (c *Client) FetchConfig(ctx context.Context) (config.Configuration, error) {
	var cfg config.Configuration
	err := c.withRetry(ctx, "fetch config", func(ctx context.Context) error {
		var err error
		cfg, err = c.transport.FetchConfig(ctx)
		return err
	})
	if err != nil {
		return config.Configuration{}, err
	}
	return cfg, nil
}

// withRetry runs op up to maxAttempts times, pausing backoffDelays[i]
// after the i-th failure. The last failure is converted into an *APIError.
func (c *Client) withRetry(ctx context.Context, operation string, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelays[attempt-1]
			c.logger.Debug("retrying dashboard operation",
				"operation", operation,
				"attempt", attempt+1,
				"backoff", delay,
			)
			if err := c.sleep(ctx, delay); err != nil {
				return c.apiError(operation, attempt, lastErr)
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		err := op(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		// Give up immediately when the caller's own context ended; only
		// per-attempt timeouts are retryable.
		if ctx.Err() != nil {
			return c.apiError(operation, attempt+1, lastErr)
		}

		c.logger.Debug("dashboard operation attempt failed",
			"operation", operation,
			"attempt", attempt+1,
			"error", err,
		)
	}

	return c.apiError(operation, maxAttempts, lastErr)
}

// apiError shapes the final failure of a retried operation.
func (c *Client) apiError(operation string, attempts int, lastErr error) error {
	apiErr := &APIError{Operation: operation, Attempts: attempts, Cause: lastErr}

	var statusErr *StatusError
	if errors.As(lastErr, &statusErr) {
		apiErr.StatusCode = statusErr.StatusCode
		apiErr.Status = statusErr.Status
	}

	return apiErr
}

// sleepContext pauses for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
