package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore persists ledger entries in a SQLite database. It is suitable
// for single-instance deployments that need the reconciliation history to
// survive restarts.
type SQLiteStore struct {
	db        *sql.DB
	closeOnce sync.Once

	appendStmt *sql.Stmt
	listStmt   *sql.Stmt
	pruneStmt  *sql.Stmt
}

// NewSQLiteStore opens (creating if necessary) a SQLite-backed ledger at
// the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reconciliations (
		id TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		feature TEXT NOT NULL,
		estimated_prompt_tokens INTEGER NOT NULL,
		estimated_completion_tokens INTEGER NOT NULL,
		actual_prompt_tokens INTEGER NOT NULL,
		actual_completion_tokens INTEGER NOT NULL,
		estimated_credits REAL NOT NULL,
		actual_tokens_used INTEGER NOT NULL,
		actual_cost REAL NOT NULL,
		credit_delta REAL NOT NULL,
		cost_delta REAL NOT NULL,
		margin_delta REAL NOT NULL,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reconciliations_timestamp
		ON reconciliations(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.appendStmt, err = s.db.Prepare(`
		INSERT INTO reconciliations (
			id, model, feature,
			estimated_prompt_tokens, estimated_completion_tokens,
			actual_prompt_tokens, actual_completion_tokens,
			estimated_credits, actual_tokens_used, actual_cost,
			credit_delta, cost_delta, margin_delta, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`
		SELECT id, model, feature,
			estimated_prompt_tokens, estimated_completion_tokens,
			actual_prompt_tokens, actual_completion_tokens,
			estimated_credits, actual_tokens_used, actual_cost,
			credit_delta, cost_delta, margin_delta, timestamp
		FROM reconciliations
		WHERE timestamp >= ?
		ORDER BY timestamp ASC
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("prepare list: %w", err)
	}

	s.pruneStmt, err = s.db.Prepare(`DELETE FROM reconciliations WHERE timestamp < ?`)
	if err != nil {
		return fmt.Errorf("prepare prune: %w", err)
	}

	return nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, entry *Entry) error {
	_, err := s.appendStmt.ExecContext(ctx,
		entry.ID, entry.Model, entry.Feature,
		entry.EstimatedPromptTokens, entry.EstimatedCompletionTokens,
		entry.ActualPromptTokens, entry.ActualCompletionTokens,
		entry.EstimatedCredits, entry.ActualTokensUsed, entry.ActualCost,
		entry.CreditDelta, entry.CostDelta, entry.MarginDelta,
		entry.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to append entry: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, since time.Time, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats negative LIMIT as unbounded
	}

	rows, err := s.listStmt.QueryContext(ctx, since.UnixMilli(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(
			&e.ID, &e.Model, &e.Feature,
			&e.EstimatedPromptTokens, &e.EstimatedCompletionTokens,
			&e.ActualPromptTokens, &e.ActualCompletionTokens,
			&e.EstimatedCredits, &e.ActualTokensUsed, &e.ActualCost,
			&e.CreditDelta, &e.CostDelta, &e.MarginDelta, &ts,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts).UTC()
		out = append(out, &e)
	}
	return out, rows.Err()
}

// Prune implements Store.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int, error) {
	res, err := s.pruneStmt.ExecContext(ctx, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.appendStmt != nil {
			s.appendStmt.Close()
		}
		if s.listStmt != nil {
			s.listStmt.Close()
		}
		if s.pruneStmt != nil {
			s.pruneStmt.Close()
		}
		err = s.db.Close()
	})
	return err
}
