package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process ledger backend. Entries are lost on restart;
// it is the default backend and the one tests use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewMemoryStore creates an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append implements Store.
func (m *MemoryStore) Append(ctx context.Context, entry *Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	copied := *entry
	m.mu.Lock()
	m.entries = append(m.entries, &copied)
	m.mu.Unlock()
	return nil
}

// List implements Store. Entries are held in append order, which is
// timestamp order for a single process.
func (m *MemoryStore) List(ctx context.Context, since time.Time, limit int) ([]*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Entry
	for _, e := range m.entries {
		if e.Timestamp.Before(since) {
			continue
		}
		copied := *e
		out = append(out, &copied)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Prune implements Store.
func (m *MemoryStore) Prune(ctx context.Context, before time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.entries[:0]
	removed := 0
	for _, e := range m.entries {
		if e.Timestamp.Before(before) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return removed, nil
}

// Close implements Store. It is a no-op for the memory backend.
func (m *MemoryStore) Close() error {
	return nil
}
