// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Cache backend types
const (
	CacheTypeLocal      = "local"
	CacheTypeMemory     = "memory"
	CacheTypeRedis      = "redis"
	CacheTypeSQLite     = "sqlite"
	CacheTypePostgreSQL = "postgresql"
	CacheTypeMongoDB    = "mongodb"
)

// Log formats
const (
	LogFormatAuto   = "auto"
	LogFormatJSON   = "json"
	LogFormatPretty = "pretty"
)

const (
	// DefaultCacheDurationHours is how long a snapshot stays valid.
	DefaultCacheDurationHours = 2

	// DefaultCacheFile is the slot used by the local backend.
	DefaultCacheFile = "speechmeme_cache.json"

	// DefaultUpstreamURL is the Firestore runQuery endpoint for the speechmeme project.
	DefaultUpstreamURL = "https://firestore.googleapis.com/v1/projects/speechmeme-bf897/databases/(default)/documents:runQuery"

	// DefaultUpstreamLimit is the fixed page size requested from upstream.
	DefaultUpstreamLimit = 100
)

// Config holds the application configuration
type Config struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Cache    CacheConfig    `yaml:"cache"`
	Storage  StorageConfig  `yaml:"storage"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// DiscordConfig holds the bot session settings
type DiscordConfig struct {
	Token string `yaml:"token"`
}

// CacheConfig selects the snapshot backend and its validity window
type CacheConfig struct {
	// Type is one of local, memory, redis, sqlite, postgresql, mongodb (default: local)
	Type string `yaml:"type"`

	// DurationHours is CACHE_DURATION_HOURS; fractional values are allowed
	DurationHours float64 `yaml:"duration_hours"`

	Local LocalCacheConfig `yaml:"local"`
	Redis RedisConfig      `yaml:"redis"`
}

// Duration returns the validity window as a time.Duration.
func (c CacheConfig) Duration() time.Duration {
	return time.Duration(c.DurationHours * float64(time.Hour))
}

// LocalCacheConfig holds the file slot location
type LocalCacheConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig holds Redis slot configuration
type RedisConfig struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
	// TTL in seconds; 0 keeps the key until it is overwritten
	TTL int `yaml:"ttl"`
}

// StorageConfig holds database connection settings for the SQL and MongoDB slots
type StorageConfig struct {
	SQLite     SQLiteStorageConfig     `yaml:"sqlite"`
	PostgreSQL PostgreSQLStorageConfig `yaml:"postgresql"`
	MongoDB    MongoDBStorageConfig    `yaml:"mongodb"`
}

// SQLiteStorageConfig holds SQLite-specific configuration
type SQLiteStorageConfig struct {
	Path string `yaml:"path"`
}

// PostgreSQLStorageConfig holds PostgreSQL-specific configuration
type PostgreSQLStorageConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

// MongoDBStorageConfig holds MongoDB-specific configuration
type MongoDBStorageConfig struct {
	URL      string `yaml:"url"`
	Database string `yaml:"database"`
}

// UpstreamConfig describes the structured query sent to the document store
type UpstreamConfig struct {
	URL        string `yaml:"url"`
	Collection string `yaml:"collection"`
	OrderBy    string `yaml:"order_by"`
	Limit      int    `yaml:"limit"`
}

// ServerConfig holds the optional ops HTTP server configuration
type ServerConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Port      string `yaml:"port"`
	MasterKey string `yaml:"master_key"`
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// configPaths are searched in order when SPEECHMEME_CONFIG is not set.
var configPaths = []string{"config/config.yaml", "config.yaml"}

// Load reads configuration from .env, an optional YAML file and the environment.
// Environment variables always win over file values.
func Load() (*Config, error) {
	// .env is optional; existing environment variables are not overwritten
	_ = godotenv.Load()

	cfg := defaultConfig()

	path, err := findConfigFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Type:          CacheTypeLocal,
			DurationHours: DefaultCacheDurationHours,
			Local:         LocalCacheConfig{Path: DefaultCacheFile},
			Redis:         RedisConfig{Key: "speechmeme:snapshot"},
		},
		Storage: StorageConfig{
			SQLite:     SQLiteStorageConfig{Path: ".cache/speechmeme.db"},
			PostgreSQL: PostgreSQLStorageConfig{MaxConns: 10},
			MongoDB:    MongoDBStorageConfig{Database: "speechmeme"},
		},
		Upstream: UpstreamConfig{
			URL:        DefaultUpstreamURL,
			Collection: "posts",
			OrderBy:    "createdAt",
			Limit:      DefaultUpstreamLimit,
		},
		Server: ServerConfig{Port: "8080"},
		Metrics: MetricsConfig{
			Enabled:  true,
			Endpoint: "/metrics",
		},
		Log: LogConfig{
			Format: LogFormatAuto,
			Level:  "info",
		},
	}
}

func findConfigFile() (string, error) {
	if p := os.Getenv("SPEECHMEME_CONFIG"); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config file %s: %w", p, err)
		}
		return p, nil
	}
	for _, p := range configPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	expanded := expandString(string(raw))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandString replaces ${VAR} and ${VAR:-default} placeholders.
// A placeholder without a default whose variable is unset or empty is left as is.
func expandString(s string) string {
	if s == "" {
		return s
	}
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := placeholderPattern.FindStringSubmatch(match)
		name, hasDefault, def := parts[1], parts[2] != "", parts[3]
		if val := os.Getenv(name); val != "" {
			return val
		}
		if hasDefault {
			return def
		}
		return match
	})
}

// applyEnvOverrides copies well-known environment variables into cfg.
func applyEnvOverrides(cfg *Config) error {
	var errs []error

	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
			return
		}
		*dst = n
	}
	setBool := func(key string, dst *bool) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
			return
		}
		*dst = b
	}

	setString("DISCORD_BOT_TOKEN", &cfg.Discord.Token)

	setString("CACHE_TYPE", &cfg.Cache.Type)
	if v := os.Getenv("CACHE_DURATION_HOURS"); v != "" {
		hours, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid CACHE_DURATION_HOURS %q: %w", v, err))
		} else {
			cfg.Cache.DurationHours = hours
		}
	}
	setString("CACHE_FILE", &cfg.Cache.Local.Path)
	setString("REDIS_URL", &cfg.Cache.Redis.URL)
	setString("REDIS_KEY", &cfg.Cache.Redis.Key)
	setInt("REDIS_TTL", &cfg.Cache.Redis.TTL)

	setString("SQLITE_PATH", &cfg.Storage.SQLite.Path)
	setString("POSTGRES_URL", &cfg.Storage.PostgreSQL.URL)
	setInt("POSTGRES_MAX_CONNS", &cfg.Storage.PostgreSQL.MaxConns)
	setString("MONGODB_URL", &cfg.Storage.MongoDB.URL)
	setString("MONGODB_DATABASE", &cfg.Storage.MongoDB.Database)

	setString("UPSTREAM_URL", &cfg.Upstream.URL)
	setString("UPSTREAM_COLLECTION", &cfg.Upstream.Collection)
	setString("UPSTREAM_ORDER_BY", &cfg.Upstream.OrderBy)
	setInt("UPSTREAM_LIMIT", &cfg.Upstream.Limit)

	setBool("SERVER_ENABLED", &cfg.Server.Enabled)
	setString("PORT", &cfg.Server.Port)
	setString("SPEECHMEME_MASTER_KEY", &cfg.Server.MasterKey)

	setBool("METRICS_ENABLED", &cfg.Metrics.Enabled)
	setString("METRICS_ENDPOINT", &cfg.Metrics.Endpoint)

	setString("LOG_FORMAT", &cfg.Log.Format)
	setString("LOG_LEVEL", &cfg.Log.Level)

	return errors.Join(errs...)
}

// applyDefaults fills values a YAML file may have blanked out.
func applyDefaults(cfg *Config) {
	def := defaultConfig()
	cfg.Cache.Type = strings.ToLower(strings.TrimSpace(cfg.Cache.Type))
	if cfg.Cache.Type == "" {
		cfg.Cache.Type = def.Cache.Type
	}
	if cfg.Cache.Local.Path == "" {
		cfg.Cache.Local.Path = def.Cache.Local.Path
	}
	if cfg.Cache.Redis.Key == "" {
		cfg.Cache.Redis.Key = def.Cache.Redis.Key
	}
	if cfg.Upstream.URL == "" {
		cfg.Upstream.URL = def.Upstream.URL
	}
	if cfg.Upstream.Collection == "" {
		cfg.Upstream.Collection = def.Upstream.Collection
	}
	if cfg.Upstream.OrderBy == "" {
		cfg.Upstream.OrderBy = def.Upstream.OrderBy
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Metrics.Endpoint == "" {
		cfg.Metrics.Endpoint = def.Metrics.Endpoint
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}

// MaxCacheDurationHours is the largest window a time.Duration can hold.
const MaxCacheDurationHours = float64(math.MaxInt64 / int64(time.Hour))

// Validate reports configuration values the application cannot run with.
func (c *Config) Validate() error {
	switch c.Cache.Type {
	case CacheTypeLocal, CacheTypeMemory, CacheTypeRedis, CacheTypeSQLite, CacheTypePostgreSQL, CacheTypeMongoDB:
	default:
		return fmt.Errorf("unknown cache type: %s (valid: local, memory, redis, sqlite, postgresql, mongodb)", c.Cache.Type)
	}
	if !(c.Cache.DurationHours > 0) {
		return fmt.Errorf("cache duration must be positive, got %v hours", c.Cache.DurationHours)
	}
	if c.Cache.DurationHours > MaxCacheDurationHours {
		return fmt.Errorf("cache duration must be at most %v hours, got %v hours", MaxCacheDurationHours, c.Cache.DurationHours)
	}
	if c.Cache.Type == CacheTypeRedis && c.Cache.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required for cache type redis")
	}
	if c.Cache.Type == CacheTypePostgreSQL && c.Storage.PostgreSQL.URL == "" {
		return fmt.Errorf("POSTGRES_URL is required for cache type postgresql")
	}
	if c.Cache.Type == CacheTypeMongoDB && c.Storage.MongoDB.URL == "" {
		return fmt.Errorf("MONGODB_URL is required for cache type mongodb")
	}
	if c.Upstream.Limit <= 0 {
		return fmt.Errorf("upstream limit must be positive, got %d", c.Upstream.Limit)
	}
	switch c.Log.Format {
	case LogFormatAuto, LogFormatJSON, LogFormatPretty:
	default:
		return fmt.Errorf("unknown log format: %s (valid: auto, json, pretty)", c.Log.Format)
	}
	return nil
}
