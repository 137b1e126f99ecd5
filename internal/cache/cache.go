// Package cache provides the single-slot snapshot store for fetched meme items.
// Backends: local file, in-memory, Redis, SQLite, PostgreSQL and MongoDB.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"speechmeme/internal/core"
)

var (
	// ErrNoSnapshot is returned by Slot.Load when the slot has never been written.
	ErrNoSnapshot = errors.New("no cached snapshot")

	// ErrMissingTimestamp is returned when a stored snapshot has no timestamp field.
	ErrMissingTimestamp = errors.New("snapshot has no timestamp")

	// ErrEmptySnapshot is returned by Slot.Save for an empty item list.
	ErrEmptySnapshot = errors.New("refusing to save empty snapshot")
)

// Snapshot is the most recent successful fetch.
type Snapshot struct {
	// Timestamp is the instant the items were fetched, in UTC.
	Timestamp time.Time
	Items     []core.Item
}

// Age returns how old the snapshot is at now.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.Timestamp)
}

// IsValid reports whether snapshot is younger than maxAge at now.
// The interval is half-open: an age equal to maxAge is expired.
func IsValid(snapshot *Snapshot, maxAge time.Duration, now time.Time) bool {
	if snapshot == nil {
		return false
	}
	return snapshot.Age(now) < maxAge
}

// Store is one persisted snapshot slot.
// Implementations must be safe for concurrent use; concurrent writers are last-writer-wins.
type Store interface {
	// Get retrieves the snapshot.
	// Returns nil, nil if the slot has never been written.
	Get(ctx context.Context) (*Snapshot, error)

	// Set overwrites the slot with snapshot.
	Set(ctx context.Context, snapshot *Snapshot) error

	// Close releases any resources held by the store.
	Close() error
}

// document is the persisted form shared by every backend:
//
//	{"timestamp": "2025-06-01T12:00:00Z", "data": [{"display_name": ..., "image_url": ..., "avatar_url": ...}]}
type document struct {
	Timestamp string      `json:"timestamp"`
	Data      []core.Item `json:"data"`
}

// naiveLayout matches timestamps written without a zone offset by older cache files.
// Fractional seconds are accepted by time.Parse even though the layout omits them.
const naiveLayout = "2006-01-02T15:04:05"

func encodeSnapshot(s *Snapshot, indent bool) ([]byte, error) {
	doc := document{
		Timestamp: s.Timestamp.UTC().Format(time.RFC3339Nano),
		Data:      s.Items,
	}
	if doc.Data == nil {
		doc.Data = []core.Item{}
	}
	var (
		raw []byte
		err error
	)
	if indent {
		raw, err = json.MarshalIndent(doc, "", "  ")
	} else {
		raw, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return raw, nil
}

func decodeSnapshot(raw []byte) (*Snapshot, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if doc.Timestamp == "" {
		return nil, ErrMissingTimestamp
	}
	ts, err := parseTimestamp(doc.Timestamp)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Timestamp: ts, Items: usableItems(doc.Data)}, nil
}

// usableItems drops entries without an image, as upstream parsing does.
func usableItems(items []core.Item) []core.Item {
	out := make([]core.Item, 0, len(items))
	for _, it := range items {
		if item, ok := core.NewItem(it.DisplayName, it.ImageURL, it.AvatarURL); ok {
			out = append(out, item)
		}
	}
	return out
}

func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.ParseInLocation(naiveLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid snapshot timestamp %q: %w", s, err)
	}
	return ts.UTC(), nil
}
