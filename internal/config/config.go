package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend names accepted in STORAGE_BACKEND.
const (
	BackendBolt     = "bolt"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	DiscordToken string
	LogChannelID string
	AdminIDs     []string

	StorageBackend string
	BoltPath       string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	DatabaseDSN    string

	TZOffsetHours int
	MetricsPort   int
	LogLevel      string
	LogFormat     string
}

// Load loads configuration from an optional dotenv file and the environment
func Load(envFile string) (*Config, error) {
	// .env file is optional, continue with environment variables
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, &ConfigError{Field: "env file", Message: fmt.Sprintf("cannot load %s: %v", envFile, err)}
		}
	} else {
		_ = godotenv.Load()
	}

	config := &Config{
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		LogChannelID:   os.Getenv("LOG_CHANNEL_ID"),
		AdminIDs:       splitList(os.Getenv("ADMIN_IDS")),
		StorageBackend: envOr("STORAGE_BACKEND", BackendBolt),
		BoltPath:       envOr("BOLT_PATH", "voicetime.db"),
		RedisAddr:      envOr("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		DatabaseDSN:    os.Getenv("DATABASE_DSN"),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		LogFormat:      envOr("LOG_FORMAT", "text"),
	}

	var err error
	if config.RedisDB, err = envInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if config.TZOffsetHours, err = envInt("TZ_OFFSET_HOURS", 7); err != nil {
		return nil, err
	}
	if config.MetricsPort, err = envInt("METRICS_PORT", 0); err != nil {
		return nil, err
	}

	if config.DiscordToken == "" {
		return nil, &ConfigError{Field: "DISCORD_TOKEN", Message: "DISCORD_TOKEN is required"}
	}

	switch config.StorageBackend {
	case BackendBolt:
		// BoltPath always has a default
	case BackendRedis:
		if config.RedisAddr == "" {
			return nil, &ConfigError{Field: "REDIS_ADDR", Message: "REDIS_ADDR is required for the redis backend"}
		}
	case BackendPostgres:
		if config.DatabaseDSN == "" {
			return nil, &ConfigError{Field: "DATABASE_DSN", Message: "DATABASE_DSN is required for the postgres backend"}
		}
	default:
		return nil, &ConfigError{Field: "STORAGE_BACKEND", Message: fmt.Sprintf("unknown storage backend %q", config.StorageBackend)}
	}

	return config, nil
}

// Location returns the fixed reference timezone all windows and displayed
// timestamps use.
func (c *Config) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", c.TZOffsetHours), c.TZOffsetHours*3600)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: fmt.Sprintf("%s must be an integer, got %q", key, value)}
	}
	return n, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
