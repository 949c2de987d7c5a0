package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tallyhq/abacus/pkg/reconcile"
)

// Entry is one persisted reconciliation outcome.
type Entry struct {
	// ID uniquely identifies the entry.
	ID string

	Model   string
	Feature string

	EstimatedPromptTokens     int
	EstimatedCompletionTokens int
	ActualPromptTokens        int
	ActualCompletionTokens    int

	EstimatedCredits float64
	ActualTokensUsed int
	ActualCost       float64
	CreditDelta      float64
	CostDelta        float64
	MarginDelta      float64

	// Timestamp is when the reconciliation happened, in UTC.
	Timestamp time.Time
}

// NewEntry builds a ledger entry from a reconciliation record, assigning a
// fresh ID and the current UTC timestamp.
func NewEntry(rec *reconcile.Record) *Entry {
	return &Entry{
		ID:                        uuid.NewString(),
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
		Timestamp:                 time.Now().UTC(),
	}
}

// Store persists reconciliation entries. Implementations must be safe for
// concurrent use.
type Store interface {
	// Append stores one entry.
	Append(ctx context.Context, entry *Entry) error

	// List returns entries with Timestamp >= since, oldest first, up to
	// limit entries (0 means no limit).
	List(ctx context.Context, since time.Time, limit int) ([]*Entry, error)

	// Prune deletes entries with Timestamp < before and returns how many
	// were removed.
	Prune(ctx context.Context, before time.Time) (int, error)

	// Close releases backend resources.
	Close() error
}
