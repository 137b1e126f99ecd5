package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// LocalStore implements Store using a single JSON file.
// This is suitable for single-instance deployments.
type LocalStore struct {
	mu       sync.RWMutex
	filePath string
}

// NewLocalStore creates a new local file-based store at filePath.
func NewLocalStore(filePath string) *LocalStore {
	return &LocalStore{
		filePath: filePath,
	}
}

// Path returns the file backing the slot.
func (c *LocalStore) Path() string {
	return c.filePath
}

// Get retrieves the snapshot from the local file.
func (c *LocalStore) Get(ctx context.Context) (*Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.filePath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No cache file yet, not an error
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	return decodeSnapshot(data)
}

// Set stores the snapshot to the local file.
func (c *LocalStore) Set(ctx context.Context, snapshot *Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.filePath == "" {
		return nil
	}

	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := encodeSnapshot(snapshot, true)
	if err != nil {
		return err
	}

	// Write atomically using temp file + rename
	tmpFile := c.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmpFile, c.filePath); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	return nil
}

// Close is a no-op for local store.
func (c *LocalStore) Close() error {
	return nil
}
