//go:build integration

// Package dbassert provides database assertion helpers for integration tests.
// It reads the raw snapshot rows and documents written by the cache backends.
package dbassert

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// SnapshotRow mirrors one stored slot.
// We use a separate type to avoid coupling tests to internal implementation details.
type SnapshotRow struct {
	Slot      string
	UpdatedAt int64
	Timestamp string
	Count     int
}

type payload struct {
	Timestamp string            `json:"timestamp"`
	Data      []json.RawMessage `json:"data"`
}

func decode(t *testing.T, slot string, updatedAt int64, data []byte) SnapshotRow {
	t.Helper()
	var p payload
	require.NoError(t, json.Unmarshal(data, &p), "snapshot payload must be JSON")
	return SnapshotRow{Slot: slot, UpdatedAt: updatedAt, Timestamp: p.Timestamp, Count: len(p.Data)}
}

// QuerySnapshotsPostgreSQL returns every row of the snapshots table.
func QuerySnapshotsPostgreSQL(t *testing.T, pool *pgxpool.Pool) []SnapshotRow {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rows, err := pool.Query(ctx, "SELECT slot, updated_at, data FROM snapshots ORDER BY slot")
	require.NoError(t, err)
	defer rows.Close()

	var out []SnapshotRow
	for rows.Next() {
		var (
			slot      string
			updatedAt int64
			data      []byte
		)
		require.NoError(t, rows.Scan(&slot, &updatedAt, &data))
		out = append(out, decode(t, slot, updatedAt, data))
	}
	require.NoError(t, rows.Err())
	return out
}

// QuerySnapshotsMongoDB returns every document of the snapshots collection.
func QuerySnapshotsMongoDB(t *testing.T, db *mongo.Database) []SnapshotRow {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := db.Collection("snapshots").Find(ctx, bson.M{})
	require.NoError(t, err)
	defer cursor.Close(ctx)

	var out []SnapshotRow
	for cursor.Next(ctx) {
		var doc struct {
			Slot      string `bson:"_id"`
			UpdatedAt int64  `bson:"updated_at"`
			Data      []byte `bson:"data"`
		}
		require.NoError(t, cursor.Decode(&doc))
		out = append(out, decode(t, doc.Slot, doc.UpdatedAt, doc.Data))
	}
	require.NoError(t, cursor.Err())
	return out
}

// ClearPostgreSQL removes all snapshot rows.
func ClearPostgreSQL(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), "DELETE FROM snapshots")
	require.NoError(t, err)
}

// ClearMongoDB removes all snapshot documents.
func ClearMongoDB(t *testing.T, db *mongo.Database) {
	t.Helper()
	_, err := db.Collection("snapshots").DeleteMany(context.Background(), bson.M{})
	require.NoError(t, err)
}
