package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database configuration
	DBPath          string
	DBEncryptionKey string
	DBMaxOpenConns  int

	// Backup configuration
	BackupDir           string
	BackupPassphrase    string
	BackupInterval      time.Duration
	BackupRetentionDays int

	// Activity log
	ActivityLogPath   string
	ActivityAsyncMode bool

	// Rate limiting
	RateLimitRPS   int
	RateLimitBurst int

	// Note lifecycle
	PageSize     int
	UndoTTL      time.Duration
	EditDebounce time.Duration

	// Application settings
	Environment string
	LogLevel    string
	LogFormat   string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (not required in production)
	_ = godotenv.Load()

	config := &Config{
		DBPath:              getEnv("DB_PATH", "./data/daynotes.db"),
		DBEncryptionKey:     getEnv("DB_ENCRYPTION_KEY", ""),
		DBMaxOpenConns:      getEnvAsInt("DB_MAX_OPEN_CONNS", 4),
		BackupDir:           getEnv("BACKUP_DIR", "./backups"),
		BackupPassphrase:    getEnv("BACKUP_PASSPHRASE", ""),
		BackupInterval:      time.Duration(getEnvAsInt("BACKUP_INTERVAL_HOURS", 24)) * time.Hour,
		BackupRetentionDays: getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
		ActivityLogPath:     getEnv("ACTIVITY_LOG_PATH", "./logs/activity.log"),
		ActivityAsyncMode:   getEnvAsBool("ACTIVITY_ASYNC_MODE", true),
		RateLimitRPS:        getEnvAsInt("RATE_LIMIT_REQUESTS_PER_SECOND", 50),
		RateLimitBurst:      getEnvAsInt("RATE_LIMIT_BURST", 100),
		PageSize:            getEnvAsInt("PAGE_SIZE", 20),
		UndoTTL:             getEnvAsDuration("UNDO_TTL", 5*time.Second),
		EditDebounce:        getEnvAsDuration("EDIT_DEBOUNCE", 500*time.Millisecond),
		Environment:         getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate ensures all required configuration is present
func (c *Config) Validate() error {
	if c.DBEncryptionKey == "" {
		return fmt.Errorf("DB_ENCRYPTION_KEY is required")
	}

	if len(c.DBEncryptionKey) < 32 {
		return fmt.Errorf("DB_ENCRYPTION_KEY must be at least 32 characters")
	}

	if c.PageSize < 1 || c.PageSize > 500 {
		return fmt.Errorf("PAGE_SIZE must be between 1 and 500")
	}

	if c.UndoTTL <= 0 {
		return fmt.Errorf("UNDO_TTL must be positive")
	}

	if c.EditDebounce < 0 {
		return fmt.Errorf("EDIT_DEBOUNCE must not be negative")
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit settings must be positive")
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json")
	}

	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// SlogLevel maps LOG_LEVEL onto a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Helper functions to read environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
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
