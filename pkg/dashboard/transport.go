package dashboard

import (
	"context"
	"time"

	"tallyhq/abacus/pkg/config"
	"tallyhq/abacus/pkg/reconcile"
)

// Transport is the capability interface the sync client talks to the
// dashboard through. The production implementation is HTTPTransport;
// tests substitute deterministic fakes instead of patching network
// primitives.
type Transport interface {
	// PostLog delivers one reconciliation log entry. A non-2xx response
	// is reported as *StatusError. PostLog makes exactly one attempt;
	// retrying is the client's job.
	PostLog(ctx context.Context, entry *LogEntry) error

	// FetchConfig retrieves the full pricing configuration. FetchConfig
	// makes exactly one attempt; retrying is the client's job.
	FetchConfig(ctx context.Context) (config.Configuration, error)

	// OpenStream opens a persistent configuration-update stream. The
	// returned stream delivers one Configuration per update event until
	// it is closed by either side.
	OpenStream(ctx context.Context) (Stream, error)
}

// Stream is a live configuration-update subscription.
type Stream interface {
	// Next blocks until the next configuration update arrives.
	// Returns io.EOF when the stream is closed by the server.
	Next(ctx context.Context) (config.Configuration, error)

	// Close closes the stream and releases resources.
	Close() error
}

// LogEntry is the wire form of a reconciliation outcome posted to the
// dashboard. Field names match the dashboard's JSON contract.
type LogEntry struct {
	Model                     string    `json:"model"`
	Feature                   string    `json:"feature"`
	EstimatedPromptTokens     int       `json:"estimatedPromptTokens"`
	EstimatedCompletionTokens int       `json:"estimatedCompletionTokens"`
	ActualPromptTokens        int       `json:"actualPromptTokens"`
	ActualCompletionTokens    int       `json:"actualCompletionTokens"`
	EstimatedCredits          float64   `json:"estimatedCredits"`
	ActualTokensUsed          int       `json:"actualTokensUsed"`
	ActualCost                float64   `json:"actualCost"`
	CreditDelta               float64   `json:"creditDelta"`
	CostDelta                 float64   `json:"costDelta"`
	MarginDelta               float64   `json:"marginDelta"`
	CreditPerDollar           float64   `json:"creditPerDollar"`
	Timestamp                 time.Time `json:"timestamp"`
	ProjectID                 string    `json:"projectId,omitempty"`
}

// NewLogEntry builds a wire log entry from a reconciliation record.
// The timestamp is set to the current time in UTC.
func NewLogEntry(rec *reconcile.Record, creditPerDollar float64, projectID string) *LogEntry {
	return &LogEntry{
		Model:                     rec.Model,
		Feature:                   rec.Feature,
		EstimatedPromptTokens:     rec.EstimatedPromptTokens,
		EstimatedCompletionTokens: rec.EstimatedCompletionTokens,
		ActualPromptTokens:        rec.ActualPromptTokens,
		ActualCompletionTokens:    rec.ActualCompletionTokens,
		EstimatedCredits:          rec.EstimatedCredits,
		ActualTokensUsed:          rec.ActualTokensUsed,
		ActualCost:                rec.ActualCost,
		CreditDelta:               rec.CreditDelta,
		CostDelta:                 rec.CostDelta,
		MarginDelta:               rec.MarginDelta,
		CreditPerDollar:           creditPerDollar,
		Timestamp:                 time.Now().UTC(),
		ProjectID:                 projectID,
	}
}
