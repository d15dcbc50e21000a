package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validKey = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_ENCRYPTION_KEY", validKey)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./data/daynotes.db", cfg.DBPath)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, 5*time.Second, cfg.UndoTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.EditDebounce)
	assert.Equal(t, 24*time.Hour, cfg.BackupInterval)
	assert.True(t, cfg.ActivityAsyncMode)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_ENCRYPTION_KEY", validKey)
	t.Setenv("PAGE_SIZE", "5")
	t.Setenv("UNDO_TTL", "250ms")
	t.Setenv("ACTIVITY_ASYNC_MODE", "false")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BACKUP_INTERVAL_HOURS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, 250*time.Millisecond, cfg.UndoTTL)
	assert.False(t, cfg.ActivityAsyncMode)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 24*time.Hour, cfg.BackupInterval)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DBEncryptionKey: validKey,
			PageSize:        20,
			UndoTTL:         5 * time.Second,
			EditDebounce:    500 * time.Millisecond,
			RateLimitRPS:    50,
			RateLimitBurst:  100,
			LogFormat:       "text",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing key", func(c *Config) { c.DBEncryptionKey = "" }, "DB_ENCRYPTION_KEY is required"},
		{"short key", func(c *Config) { c.DBEncryptionKey = "short" }, "at least 32"},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, "PAGE_SIZE"},
		{"zero undo ttl", func(c *Config) { c.UndoTTL = 0 }, "UNDO_TTL"},
		{"negative debounce", func(c *Config) { c.EditDebounce = -time.Second }, "EDIT_DEBOUNCE"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}
