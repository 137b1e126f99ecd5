package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLiteStore keeps the snapshot in a single row of the snapshots table.
type SQLiteStore struct {
	db   *sql.DB
	slot string
}

// NewSQLiteStore creates the snapshots table if needed.
func NewSQLiteStore(ctx context.Context, db *sql.DB, slot string) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if slot == "" {
		slot = DefaultSlotName
	}

	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			slot TEXT PRIMARY KEY,
			updated_at INTEGER NOT NULL,
			data TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshots table: %w", err)
	}

	return &SQLiteStore{db: db, slot: slot}, nil
}

// Get returns the snapshot row, or nil if the slot is empty.
func (s *SQLiteStore) Get(ctx context.Context) (*Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM snapshots WHERE slot = ?", s.slot).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	return decodeSnapshot([]byte(payload))
}

// Set upserts the snapshot row.
func (s *SQLiteStore) Set(ctx context.Context, snapshot *Snapshot) error {
	payload, err := encodeSnapshot(snapshot, false)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (slot, updated_at, data) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET updated_at = excluded.updated_at, data = excluded.data
	`, s.slot, snapshot.Timestamp.Unix(), string(payload))
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// Close is a no-op; the shared connection is closed by its owner.
func (s *SQLiteStore) Close() error {
	return nil
}
