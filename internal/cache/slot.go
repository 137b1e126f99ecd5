package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"speechmeme/internal/core"
)

// Slot is the cache store used by the data provider: it loads, validates and
// saves the snapshot held by a Store, stamping saves with its clock.
type Slot struct {
	store Store
	now   func() time.Time
}

// NewSlot wraps store using the wall clock.
func NewSlot(store Store) *Slot {
	return &Slot{store: store, now: time.Now}
}

// SetClock replaces the clock used for timestamps and validity checks.
func (s *Slot) SetClock(now func() time.Time) {
	s.now = now
}

// Now returns the slot's current time.
func (s *Slot) Now() time.Time {
	return s.now()
}

// Load reads the persisted snapshot.
// A slot that was never written yields ErrNoSnapshot; unreadable or malformed
// content yields a wrapped error. Both are logged here.
func (s *Slot) Load(ctx context.Context) (*Snapshot, error) {
	snapshot, err := s.store.Get(ctx)
	if err != nil {
		slog.Warn("failed to load cached snapshot", "error", err)
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if snapshot == nil {
		slog.Info("cache snapshot not found")
		return nil, ErrNoSnapshot
	}
	return snapshot, nil
}

// IsValid reports whether snapshot is younger than maxAge, logging its age.
func (s *Slot) IsValid(snapshot *Snapshot, maxAge time.Duration) bool {
	now := s.now()
	valid := IsValid(snapshot, maxAge, now)
	if snapshot != nil {
		slog.Debug("cache snapshot age",
			"cached_at", snapshot.Timestamp.Format(time.DateTime),
			"elapsed_hours", fmt.Sprintf("%.1f", snapshot.Age(now).Hours()),
			"max_age", maxAge,
			"valid", valid,
		)
	}
	return valid
}

// Save overwrites the slot with items stamped at the current time.
// Failures are logged and returned; the caller keeps its in-memory items either way.
func (s *Slot) Save(ctx context.Context, items []core.Item) (*Snapshot, error) {
	if len(items) == 0 {
		return nil, ErrEmptySnapshot
	}
	snapshot := &Snapshot{
		Timestamp: s.now().UTC(),
		Items:     slices.Clone(items),
	}
	if err := s.store.Set(ctx, snapshot); err != nil {
		slog.Error("failed to save cached snapshot", "error", err, "items", len(items))
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return snapshot, nil
}

// Close closes the underlying store.
func (s *Slot) Close() error {
	return s.store.Close()
}

// IsMiss reports whether err from Load means the slot is simply empty.
func IsMiss(err error) bool {
	return errors.Is(err, ErrNoSnapshot)
}
