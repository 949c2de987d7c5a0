package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig controls scheduled pruning of old ledger entries.
type RetentionConfig struct {
	// Schedule is a standard cron expression, e.g. "0 3 * * *" for daily
	// at 3 AM. Empty disables scheduled pruning.
	Schedule string

	// MaxAge is how long entries are kept. Entries older than MaxAge at
	// prune time are deleted. Must be positive when Schedule is set.
	MaxAge time.Duration
}

// RetentionScheduler prunes old ledger entries on a cron schedule.
type RetentionScheduler struct {
	store   Store
	config  RetentionConfig
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewRetentionScheduler creates a retention scheduler for the given store.
func NewRetentionScheduler(store Store, config RetentionConfig) *RetentionScheduler {
	return &RetentionScheduler{
		store:  store,
		config: config,
		cron:   cron.New(),
		logger: slog.Default().With("component", "ledger.retention"),
	}
}

// Start begins scheduled pruning. If no schedule is configured, Start does
// nothing. The scheduler stops when the context is cancelled or Stop is
// called.
func (s *RetentionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Schedule == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}
	if s.config.MaxAge <= 0 {
		return fmt.Errorf("retention max age must be positive, got %v", s.config.MaxAge)
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Schedule, err)
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runPruning(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("ledger retention scheduler started",
		"schedule", s.config.Schedule,
		"max_age", s.config.MaxAge,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts scheduled pruning. Safe to call multiple times.
func (s *RetentionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Info("ledger retention scheduler stopped")
}

// runPruning executes one pruning cycle.
func (s *RetentionScheduler) runPruning(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.config.MaxAge)

	removed, err := s.store.Prune(ctx, cutoff)
	if err != nil {
		s.logger.Error("ledger pruning failed", "error", err)
		return
	}

	s.logger.Info("ledger pruning complete",
		"removed", removed,
		"cutoff", cutoff,
	)
}
