package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"voicetime/internal/config"
	"voicetime/internal/discord"
	"voicetime/internal/metrics"
	"voicetime/internal/storage"
	"voicetime/internal/storage/bolt"
	"voicetime/internal/storage/postgres"
	"voicetime/internal/storage/redis"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := setupLogger(cfg)
	metrics.Register()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()
	logger.Info().Str("backend", cfg.StorageBackend).Msg("Storage ready")

	var metricsServer *metrics.Server
	if cfg.MetricsPort > 0 {
		metricsServer = metrics.NewServer(cfg.MetricsPort, logger)
		metricsServer.Start()
	}

	bot, err := discord.New(cfg.DiscordToken, store, discord.Options{
		LogChannelID: cfg.LogChannelID,
		AdminIDs:     cfg.AdminIDs,
		Location:     cfg.Location(),
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	if err := bot.Start(); err != nil {
		return fmt.Errorf("start bot: %w", err)
	}
	logger.Info().Msg("Bot is running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutdown signal received, stopping")

	if err := bot.Stop(); err != nil {
		logger.Error().Err(err).Msg("Error closing Discord connection")
	}
	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Error().Err(err).Msg("Error stopping metrics server")
		}
	}

	return nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendBolt:
		return bolt.Open(cfg.BoltPath)
	case config.BackendRedis:
		return redis.Open(redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case config.BackendPostgres:
		return postgres.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// setupLogger configures the logger based on configuration
func setupLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "json" {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
}
