package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQLStore keeps the snapshot in a single row of the snapshots table.
type PostgreSQLStore struct {
	pool *pgxpool.Pool
	slot string
}

// NewPostgreSQLStore creates the snapshots table if needed.
func NewPostgreSQLStore(ctx context.Context, pool *pgxpool.Pool, slot string) (*PostgreSQLStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("connection pool is required")
	}
	if slot == "" {
		slot = DefaultSlotName
	}

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			slot TEXT PRIMARY KEY,
			updated_at BIGINT NOT NULL,
			data JSONB NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshots table: %w", err)
	}

	return &PostgreSQLStore{pool: pool, slot: slot}, nil
}

// Get returns the snapshot row, or nil if the slot is empty.
func (s *PostgreSQLStore) Get(ctx context.Context) (*Snapshot, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, "SELECT data FROM snapshots WHERE slot = $1", s.slot).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	return decodeSnapshot(payload)
}

// Set upserts the snapshot row.
func (s *PostgreSQLStore) Set(ctx context.Context, snapshot *Snapshot) error {
	payload, err := encodeSnapshot(snapshot, false)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO snapshots (slot, updated_at, data) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (slot) DO UPDATE SET updated_at = EXCLUDED.updated_at, data = EXCLUDED.data
	`, s.slot, snapshot.Timestamp.Unix(), payload)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// Close is a no-op; the pool is closed by its owner.
func (s *PostgreSQLStore) Close() error {
	return nil
}
