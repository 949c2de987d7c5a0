package config

import "sync"

// Store holds the live configuration for one engine instance.
//
// The stored value is replaced wholesale and never mutated in place, so a
// snapshot handed out by Get or Snapshot stays internally consistent even
// while a replacement is installed concurrently. Replacement typically
// comes from the dashboard sync client or a local file watcher.
type Store struct {
	mu      sync.RWMutex
	current Configuration
}

// NewStore creates a store holding the given initial configuration.
func NewStore(initial Configuration) *Store {
	return &Store{current: initial.Clone()}
}

// Get returns a deep copy of the current configuration. Callers cannot
// mutate live state through the returned value.
func (s *Store) Get() Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Snapshot returns the current configuration value without copying. The
// returned value must be treated as read-only; it is safe to read
// concurrently because stored configurations are never mutated in place.
func (s *Store) Snapshot() Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace atomically installs a new configuration. The store keeps its own
// copy, so later mutation of the argument by the caller has no effect.
func (s *Store) Replace(next Configuration) {
	clone := next.Clone()
	s.mu.Lock()
	s.current = clone
	s.mu.Unlock()
}
