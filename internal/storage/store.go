package storage

import (
	"context"
	"errors"
	"time"

	"voicetime/internal/models"
)

// ErrInvalidInterval is returned when a session's leave time does not come
// after its join time.
var ErrInvalidInterval = errors.New("storage: leave must be after join")

// SessionStore keeps completed voice sessions, append-only per user.
type SessionStore interface {
	// Append persists one completed session. Appends are not deduplicated:
	// two calls with identical timestamps store two sessions.
	Append(ctx context.Context, userID string, join, leave time.Time) error
	// SessionsFor returns every stored session for a user, empty for
	// unknown users.
	SessionsFor(ctx context.Context, userID string) ([]models.Session, error)
	// Users lists every user with at least one stored session.
	Users(ctx context.Context) ([]string, error)
}

// LedgerStore keeps the signed manual-adjustment balance per user. Every
// mutation is a single atomic read-modify-write against the backend.
type LedgerStore interface {
	// ApplyDelta adds deltaSeconds (which may be negative) to a user's
	// balance and returns the new total. Totals are allowed to go negative.
	ApplyDelta(ctx context.Context, userID string, deltaSeconds int64) (int64, error)
	// TotalFor returns a user's balance, 0 for unknown users.
	TotalFor(ctx context.Context, userID string) (int64, error)
	// Users lists every user with a ledger entry.
	Users(ctx context.Context) ([]string, error)
}

// Store is the root storage interface.
type Store interface {
	Close() error
	Sessions() SessionStore
	Ledger() LedgerStore
}

// ValidateInterval rejects intervals whose leave does not come after join.
func ValidateInterval(join, leave time.Time) error {
	if !leave.After(join) {
		return ErrInvalidInterval
	}
	return nil
}
