package cache

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps the snapshot in process memory.
// Used in tests and for CACHE_TYPE=memory; nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot *Snapshot

	// GetErr and SetErr, when non-nil, are returned instead of touching the slot.
	GetErr error
	SetErr error

	gets, sets int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns a copy of the stored snapshot, or nil if empty.
func (m *MemoryStore) Get(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return cloneSnapshot(m.snapshot), nil
}

// Set replaces the stored snapshot with a copy of snapshot.
func (m *MemoryStore) Set(ctx context.Context, snapshot *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.SetErr != nil {
		return m.SetErr
	}
	m.snapshot = cloneSnapshot(snapshot)
	return nil
}

// Snapshot returns the stored snapshot without counting as a Get.
func (m *MemoryStore) Snapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSnapshot(m.snapshot)
}

// Sets returns how many times Set was called.
func (m *MemoryStore) Sets() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sets
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

func cloneSnapshot(s *Snapshot) *Snapshot {
	if s == nil {
		return nil
	}
	return &Snapshot{Timestamp: s.Timestamp, Items: slices.Clone(s.Items)}
}
