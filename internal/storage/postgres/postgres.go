package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"voicetime/internal/storage"
)

// Store implements the storage.Store interface on PostgreSQL. Session rows
// are append-only and ledger balances are mutated with a single additive
// upsert, so per-user writes stay atomic.
type Store struct {
	conn *sql.DB
}

// Open connects to PostgreSQL and bootstraps the schema.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{conn: conn}
	if err := store.createTables(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Sessions returns the session store.
func (s *Store) Sessions() storage.SessionStore { return &sessionStore{conn: s.conn} }

// Ledger returns the adjustment ledger store.
func (s *Store) Ledger() storage.LedgerStore { return &ledgerStore{conn: s.conn} }

func (s *Store) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS voice_sessions (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			joined_at TIMESTAMPTZ NOT NULL,
			left_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS voice_sessions_user_idx ON voice_sessions (user_id)`,
		`CREATE TABLE IF NOT EXISTS time_adjustments (
			user_id TEXT PRIMARY KEY,
			total_seconds BIGINT NOT NULL DEFAULT 0
		)`,
	}

	for _, query := range queries {
		if _, err := s.conn.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}
