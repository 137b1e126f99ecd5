package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the default key used to store the snapshot in Redis.
const DefaultRedisKey = "speechmeme:snapshot"

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379" or "redis://:password@host:6379/0")
	URL string

	// Key is the Redis key holding the snapshot (defaults to "speechmeme:snapshot")
	Key string

	// TTL is the key expiry. Zero keeps the key until it is overwritten, so an
	// expired snapshot is still there when a refresh fails.
	TTL time.Duration
}

// RedisStore implements Store using a single Redis key.
// This is suitable for multi-instance deployments sharing one slot.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newRedisStore(client, cfg.Key, cfg.TTL), nil
}

func newRedisStore(client *redis.Client, key string, ttl time.Duration) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	slog.Info("redis cache connected", "key", key, "ttl", ttl)
	return &RedisStore{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// Get retrieves the snapshot from Redis.
func (c *RedisStore) Get(ctx context.Context) (*Snapshot, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot from redis: %w", err)
	}
	return decodeSnapshot(data)
}

// Set stores the snapshot in Redis.
func (c *RedisStore) Set(ctx context.Context, snapshot *Snapshot) error {
	data, err := encodeSnapshot(snapshot, false)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot in redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisStore) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
