package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service configuration
type Config struct {
	Service   ServiceConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Feed      FeedConfig
	Stats     StatsConfig
	Telemetry TelemetryConfig
}

// TelemetryConfig holds observability settings
type TelemetryConfig struct {
	EnablePprof bool
	PprofPort   int
	MetricsPort int
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name        string
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	MaxConns    int
	MinConns    int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig holds cache settings
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// FeedConfig holds change-feed listener settings
type FeedConfig struct {
	// Collections tracked by the listener. Writes to anything else are
	// invisible to the audit trail.
	Collections []string

	// Filter is an optional CEL expression evaluated per event with
	// `collection` and `op` in scope. Empty means record everything.
	Filter string

	// PollInterval is the fallback wakeup when no NOTIFY arrives.
	PollInterval time.Duration

	// BatchSize caps events read from the outbox per poll.
	BatchSize int

	// Stream is the Redis stream committed audit records are mirrored to.
	Stream string

	// StreamMaxLen caps the mirrored stream length. Zero disables
	// trimming.
	StreamMaxLen int64

	// SweepInterval controls how often soft-deleted documents past their
	// grace period are physically removed.
	SweepInterval time.Duration
	SweepAfter    time.Duration
}

// StatsConfig holds statistics reducer settings
type StatsConfig struct {
	// Concurrency bounds outstanding sibling-subtree reductions.
	Concurrency int
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:        serviceName,
			Port:        getEnvInt("PORT", 8080),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"),
		},
		Database: DatabaseConfig{
			Host:        getEnv("POSTGRES_HOST", "localhost"),
			Port:        getEnvInt("POSTGRES_PORT", 5432),
			Database:    getEnv("POSTGRES_DB", "cruxd"),
			User:        getEnv("POSTGRES_USER", "cruxd"),
			Password:    getEnv("POSTGRES_PASSWORD", "cruxd"),
			MaxConns:    getEnvInt("POSTGRES_MAX_CONNS", 50),
			MinConns:    getEnvInt("POSTGRES_MIN_CONNS", 10),
			MaxIdleTime: getEnvDuration("POSTGRES_MAX_IDLE_TIME", 30*time.Minute),
			MaxLifetime: getEnvDuration("POSTGRES_MAX_LIFETIME", 1*time.Hour),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Enabled:    getEnvBool("CACHE_ENABLED", true),
			DefaultTTL: getEnvDuration("CACHE_DEFAULT_TTL", 5*time.Minute),
		},
		Feed: FeedConfig{
			Collections:   getEnvSlice("FEED_COLLECTIONS", []string{"areas", "climbs", "organizations"}),
			Filter:        getEnv("FEED_FILTER", ""),
			PollInterval:  getEnvDuration("FEED_POLL_INTERVAL", 5*time.Second),
			BatchSize:     getEnvInt("FEED_BATCH_SIZE", 500),
			Stream:        getEnv("FEED_STREAM", "cruxd:audit"),
			StreamMaxLen:  int64(getEnvInt("FEED_STREAM_MAXLEN", 100000)),
			SweepInterval: getEnvDuration("FEED_SWEEP_INTERVAL", 10*time.Minute),
			SweepAfter:    getEnvDuration("FEED_SWEEP_AFTER", 1*time.Hour),
		},
		Stats: StatsConfig{
			Concurrency: getEnvInt("STATS_CONCURRENCY", 16),
		},
		Telemetry: TelemetryConfig{
			EnablePprof: getEnvBool("ENABLE_PPROF", true),
			PprofPort:   getEnvInt("PPROF_PORT", 6060),
			MetricsPort: getEnvInt("METRICS_PORT", 9090),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("max_conns must be >= min_conns")
	}

	if len(c.Feed.Collections) == 0 {
		return fmt.Errorf("feed must track at least one collection")
	}

	if c.Stats.Concurrency < 1 {
		return fmt.Errorf("stats concurrency must be >= 1")
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
	)
}

// RedisAddr returns the Redis host:port address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
