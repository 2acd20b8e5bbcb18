package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // timezone names resolve inside slim containers

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	MongoDB     MongoDBConfig
	Redis       RedisConfig
	OTEL        OTELConfig
	Log         LogConfig
	Progression ProgressionConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        string
	BodyLimitKB int64
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
}

// OTELConfig holds OpenTelemetry exporter configuration
type OTELConfig struct {
	Enabled        bool
	Endpoint       string
	InstanceID     string
	Token          string
	ServiceName    string
	ServiceVersion string
	Environment    string
}

// LogConfig holds logrus configuration
type LogConfig struct {
	Level     string
	Format    string // json | text
	File      string // empty = stdout only
	MaxSizeMB int
}

// ProgressionConfig tunes record detection and chart caching
type ProgressionConfig struct {
	CacheTTL       time.Duration
	DefaultWeeks   int
	Timezone       string
	RecordRetries  int
	IdempotencyTTL time.Duration
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			BodyLimitKB: getEnvAsInt64("BODY_LIMIT_KB", 256),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "liftlog"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		OTEL: OTELConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			InstanceID:     getEnv("OTEL_INSTANCE_ID", ""),
			Token:          getEnv("OTEL_TOKEN", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "liftlog-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
		},
		Log: LogConfig{
			Level:     getEnv("LOG_LEVEL", "info"),
			Format:    getEnv("LOG_FORMAT", "text"),
			File:      getEnv("LOG_FILE", ""),
			MaxSizeMB: int(getEnvAsInt64("LOG_MAX_SIZE_MB", 50)),
		},
		Progression: ProgressionConfig{
			CacheTTL:       getEnvAsDuration("PROGRESSION_CACHE_TTL", 10*time.Minute),
			DefaultWeeks:   int(getEnvAsInt64("PROGRESSION_DEFAULT_WEEKS", 12)),
			Timezone:       getEnv("PROGRESSION_TIMEZONE", "UTC"),
			RecordRetries:  int(getEnvAsInt64("RECORD_MAX_RETRIES", 3)),
			IdempotencyTTL: getEnvAsDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.MongoDB.URI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if c.OTEL.Enabled && c.OTEL.Endpoint == "" {
		return fmt.Errorf("OTEL_ENDPOINT is required when OTEL_ENABLED is true")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}
	if _, err := time.LoadLocation(c.Progression.Timezone); err != nil {
		return fmt.Errorf("PROGRESSION_TIMEZONE is invalid: %w", err)
	}
	if c.Progression.DefaultWeeks <= 0 {
		return fmt.Errorf("PROGRESSION_DEFAULT_WEEKS must be positive")
	}
	if c.Progression.RecordRetries <= 0 {
		return fmt.Errorf("RECORD_MAX_RETRIES must be positive")
	}
	return nil
}

// Location resolves the progression timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Progression.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 retrieves an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings such as "90s" or "12h"
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
