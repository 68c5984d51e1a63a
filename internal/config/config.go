package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/PrashansaChaudhary/amasift-compare/pkg/config"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/database"
)

// History backends.
const (
	HistoryBackendPostgres = "postgres"
	HistoryBackendRedis    = "redis"
)

// Config holds all configuration for the comparison service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"COMPARE_HTTP_PORT" envDefault:"8010"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"amasift"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"amasift_secret"`
	PostgresDB   string `env:"COMPARE_DB_NAME" envDefault:"amasift_compare"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Comparison history
	HistoryBackend       string `env:"HISTORY_BACKEND" envDefault:"postgres"`
	HistoryRedisTTLHours int    `env:"HISTORY_REDIS_TTL_HOURS" envDefault:"0"`

	// Kafka
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	EventsEnabled bool     `env:"COMPARISON_EVENTS_ENABLED" envDefault:"false"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// HTTP edge
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	RateLimitRPS       float64  `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst     int      `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// Comparison
	ReviewsPerProduct int `env:"REVIEWS_PER_PRODUCT" envDefault:"5"`

	// Store circuit breaker
	StoreBreakerTimeoutSecs int `env:"STORE_BREAKER_TIMEOUT_SECONDS" envDefault:"30"`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load compare config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom is Load over an explicit variable set.
func LoadFrom(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(cfg, vars); err != nil {
		return nil, fmt.Errorf("load compare config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges the env tags cannot express.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	switch c.HistoryBackend {
	case HistoryBackendPostgres:
	case HistoryBackendRedis:
		if c.RedisHost == "" {
			return fmt.Errorf("REDIS_HOST is required when HISTORY_BACKEND is redis")
		}
	default:
		return fmt.Errorf("HISTORY_BACKEND must be %q or %q, got %q",
			HistoryBackendPostgres, HistoryBackendRedis, c.HistoryBackend)
	}
	if c.HistoryRedisTTLHours < 0 {
		return fmt.Errorf("HISTORY_REDIS_TTL_HOURS must not be negative, got %d", c.HistoryRedisTTLHours)
	}
	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when COMPARISON_EVENTS_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.ReviewsPerProduct < 1 {
		return fmt.Errorf("REVIEWS_PER_PRODUCT must be positive, got %d", c.ReviewsPerProduct)
	}
	if c.StoreBreakerTimeoutSecs < 1 {
		return fmt.Errorf("STORE_BREAKER_TIMEOUT_SECONDS must be positive, got %d", c.StoreBreakerTimeoutSecs)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive when rate limiting is on, got %d", c.RateLimitBurst)
	}
	return nil
}

// Postgres returns the pool settings for the catalog database.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// Redis returns the client settings for the history store.
func (c *Config) Redis() database.RedisConfig {
	rc := database.DefaultRedisConfig()
	rc.Host = c.RedisHost
	rc.Port = c.RedisPort
	rc.Password = c.RedisPass
	rc.DB = c.RedisDB
	return rc
}

// HistoryTTL is how long redis keeps a session's history. 0 keeps it forever.
func (c *Config) HistoryTTL() time.Duration {
	return time.Duration(c.HistoryRedisTTLHours) * time.Hour
}

// BreakerTimeout is how long an open store breaker waits before probing.
func (c *Config) BreakerTimeout() time.Duration {
	return time.Duration(c.StoreBreakerTimeoutSecs) * time.Second
}
