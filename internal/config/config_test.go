package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("PROGRESSION_TIMEZONE", "")
	t.Setenv("RECORD_MAX_RETRIES", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, 12, cfg.Progression.DefaultWeeks)
	assert.Equal(t, 3, cfg.Progression.RecordRetries)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_ENDPOINT", "otlp.example.com")
	t.Setenv("PROGRESSION_CACHE_TTL", "90s")
	t.Setenv("PROGRESSION_TIMEZONE", "Europe/Belgrade")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.OTEL.Enabled)
	assert.Equal(t, 90*time.Second, cfg.Progression.CacheTTL)
	assert.Equal(t, "Europe/Belgrade", cfg.Location().String())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			MongoDB:     MongoDBConfig{URI: "mongodb://localhost:27017"},
			Log:         LogConfig{Format: "text"},
			Progression: ProgressionConfig{Timezone: "UTC", DefaultWeeks: 12, RecordRetries: 3},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"otel without endpoint", func(c *Config) { c.OTEL.Enabled = true }, "OTEL_ENDPOINT"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "LOG_FORMAT"},
		{"unknown timezone", func(c *Config) { c.Progression.Timezone = "Mars/Olympus" }, "PROGRESSION_TIMEZONE"},
		{"no weeks", func(c *Config) { c.Progression.DefaultWeeks = 0 }, "PROGRESSION_DEFAULT_WEEKS"},
		{"no retries", func(c *Config) { c.Progression.RecordRetries = 0 }, "RECORD_MAX_RETRIES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
