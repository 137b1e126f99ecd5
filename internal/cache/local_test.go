package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"speechmeme/internal/core"
)

func TestLocalStore(t *testing.T) {
	t.Run("GetSetRoundTrip", func(t *testing.T) {
		tmpDir := t.TempDir()
		cacheFile := filepath.Join(tmpDir, "speechmeme_cache.json")

		store := NewLocalStore(cacheFile)
		ctx := context.Background()

		// Initially empty
		result, err := store.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != nil {
			t.Fatalf("expected nil result for empty cache, got %v", result)
		}

		data := &Snapshot{
			Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Items: []core.Item{
				{DisplayName: "alice", ImageURL: "https://img/1.gif", AvatarURL: "https://a/1.png"},
				{DisplayName: "unknown", ImageURL: "https://img/2.gif"},
			},
		}

		if err := store.Set(ctx, data); err != nil {
			t.Fatalf("unexpected error on set: %v", err)
		}

		result, err = store.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error on get: %v", err)
		}
		if result == nil {
			t.Fatal("expected result, got nil")
		}
		if !result.Timestamp.Equal(data.Timestamp) {
			t.Errorf("timestamp mismatch: got %v, want %v", result.Timestamp, data.Timestamp)
		}
		if len(result.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(result.Items))
		}
		if result.Items[0] != data.Items[0] || result.Items[1] != data.Items[1] {
			t.Errorf("items mismatch: got %+v, want %+v", result.Items, data.Items)
		}
	})

	t.Run("CreateDirectoryIfNeeded", func(t *testing.T) {
		tmpDir := t.TempDir()
		cacheFile := filepath.Join(tmpDir, "nested", "dir", "speechmeme_cache.json")

		store := NewLocalStore(cacheFile)
		data := &Snapshot{Timestamp: time.Now(), Items: []core.Item{{DisplayName: "a", ImageURL: "https://img/a.gif"}}}

		if err := store.Set(context.Background(), data); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(cacheFile); os.IsNotExist(err) {
			t.Fatal("cache file was not created")
		}
		if _, err := os.Stat(cacheFile + ".tmp"); !os.IsNotExist(err) {
			t.Error("temp file was left behind")
		}
	})

	t.Run("EmptyFilePath", func(t *testing.T) {
		store := NewLocalStore("")
		ctx := context.Background()

		result, err := store.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != nil {
			t.Fatal("expected nil result for empty path")
		}

		if err := store.Set(ctx, &Snapshot{Timestamp: time.Now()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		cacheFile := filepath.Join(t.TempDir(), "speechmeme_cache.json")
		if err := os.WriteFile(cacheFile, []byte("not valid json"), 0o644); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}

		if _, err := NewLocalStore(cacheFile).Get(context.Background()); err == nil {
			t.Fatal("expected error for invalid JSON")
		}
	})

	t.Run("LegacyFileFormat", func(t *testing.T) {
		cacheFile := filepath.Join(t.TempDir(), "speechmeme_cache.json")
		legacy := `{
  "timestamp": "2025-06-01T12:00:00.123456",
  "data": [
    {"display_name": "alice", "image_url": "https://img/1.gif", "avatar_url": null}
  ]
}`
		if err := os.WriteFile(cacheFile, []byte(legacy), 0o644); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}

		result, err := NewLocalStore(cacheFile).Get(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2025, 6, 1, 12, 0, 0, 123456000, time.Local)
		if !result.Timestamp.Equal(want) {
			t.Errorf("timestamp = %v, want %v", result.Timestamp, want)
		}
		if len(result.Items) != 1 || result.Items[0].AvatarURL != "" {
			t.Errorf("unexpected items: %+v", result.Items)
		}
	})
}
