package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"voicetime/internal/storage"
)

// Key layout:
//
//	voicetime:sessions:<user>  list of JSON-encoded sessions (append-only)
//	voicetime:sessions:users   set of users with at least one session
//	voicetime:adjustments      hash user -> signed seconds
const (
	keySessionPrefix = "voicetime:sessions:"
	keySessionUsers  = "voicetime:sessions:users"
	keyAdjustments   = "voicetime:adjustments"
)

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Store implements the storage.Store interface using Redis. Appends use
// RPUSH and ledger mutations use HINCRBY, so every per-user write is a
// single atomic server-side operation.
type Store struct {
	client *redis.Client
}

// Open creates a Redis-backed store and verifies the connection.
func Open(cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Store{client: client}, nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Sessions returns the session store.
func (s *Store) Sessions() storage.SessionStore { return &sessionStore{client: s.client} }

// Ledger returns the adjustment ledger store.
func (s *Store) Ledger() storage.LedgerStore { return &ledgerStore{client: s.client} }
