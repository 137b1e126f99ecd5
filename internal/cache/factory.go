package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"speechmeme/config"
	"speechmeme/internal/storage"
)

// DefaultSlotName identifies the snapshot row/document in database backends.
const DefaultSlotName = "speechmeme"

// Result holds the initialized store and the storage connection it owns, if any.
type Result struct {
	Store   Store
	Storage storage.Storage
}

// Close releases resources held by the store.
func (r *Result) Close() error {
	var errs []error
	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}
	if r.Storage != nil {
		if err := r.Storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage close: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %w", errors.Join(errs...))
	}
	return nil
}

// New creates the snapshot store selected by cfg.Cache.Type.
func New(ctx context.Context, cfg *config.Config) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	switch cfg.Cache.Type {
	case config.CacheTypeMemory:
		slog.Info("using in-memory cache")
		return &Result{Store: NewMemoryStore()}, nil

	case config.CacheTypeRedis:
		store, err := NewRedisStore(RedisConfig{
			URL: cfg.Cache.Redis.URL,
			Key: cfg.Cache.Redis.Key,
			TTL: time.Duration(cfg.Cache.Redis.TTL) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return &Result{Store: store}, nil

	case config.CacheTypeSQLite, config.CacheTypePostgreSQL, config.CacheTypeMongoDB:
		conn, err := storage.New(ctx, buildStorageConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
		store, err := NewWithSharedStorage(ctx, conn)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		slog.Info("using database cache", "type", cfg.Cache.Type)
		return &Result{Store: store, Storage: conn}, nil

	default: // "local"
		slog.Info("using local file cache", "path", cfg.Cache.Local.Path)
		return &Result{Store: NewLocalStore(cfg.Cache.Local.Path)}, nil
	}
}

// NewWithSharedStorage creates a database-backed store on an existing connection.
func NewWithSharedStorage(ctx context.Context, shared storage.Storage) (Store, error) {
	if shared == nil {
		return nil, fmt.Errorf("shared storage is required")
	}
	switch shared.Type() {
	case storage.TypeSQLite:
		return NewSQLiteStore(ctx, shared.SQLiteDB(), DefaultSlotName)
	case storage.TypePostgreSQL:
		return NewPostgreSQLStore(ctx, shared.PostgreSQLPool(), DefaultSlotName)
	case storage.TypeMongoDB:
		return NewMongoDBStore(shared.MongoDatabase(), DefaultSlotName)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", shared.Type())
	}
}

func buildStorageConfig(cfg *config.Config) storage.Config {
	return storage.Config{
		Type: cfg.Cache.Type,
		SQLite: storage.SQLiteConfig{
			Path: cfg.Storage.SQLite.Path,
		},
		PostgreSQL: storage.PostgreSQLConfig{
			URL:      cfg.Storage.PostgreSQL.URL,
			MaxConns: cfg.Storage.PostgreSQL.MaxConns,
		},
		MongoDB: storage.MongoDBConfig{
			URL:      cfg.Storage.MongoDB.URL,
			Database: cfg.Storage.MongoDB.Database,
		},
	}
}
