package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"voicetime/internal/config"
)

func setToken(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "test-token")
}

func TestLoadDefaults(t *testing.T) {
	setToken(t)

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "test-token", cfg.DiscordToken)
	require.Equal(t, config.BackendBolt, cfg.StorageBackend)
	require.Equal(t, "voicetime.db", cfg.BoltPath)
	require.Equal(t, 7, cfg.TZOffsetHours)
	require.Zero(t, cfg.MetricsPort)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	_, err := config.Load("")
	require.Error(t, err)
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "DISCORD_TOKEN", cfgErr.Field)
}

func TestLoadAdminList(t *testing.T) {
	setToken(t)
	t.Setenv("ADMIN_IDS", "1, 2 ,3,")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, cfg.AdminIDs)
}

func TestLoadBackendValidation(t *testing.T) {
	t.Run("postgres requires dsn", func(t *testing.T) {
		setToken(t)
		t.Setenv("STORAGE_BACKEND", "postgres")
		t.Setenv("DATABASE_DSN", "")

		_, err := config.Load("")
		require.Error(t, err)
	})

	t.Run("unknown backend rejected", func(t *testing.T) {
		setToken(t)
		t.Setenv("STORAGE_BACKEND", "csv")

		_, err := config.Load("")
		require.Error(t, err)
	})
}

func TestLocation(t *testing.T) {
	setToken(t)
	t.Setenv("TZ_OFFSET_HOURS", "9")

	cfg, err := config.Load("")
	require.NoError(t, err)

	_, offset := time.Now().In(cfg.Location()).Zone()
	require.Equal(t, 9*3600, offset)
}
