package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

type ledgerStore struct {
	conn *sql.DB
}

// ApplyDelta upserts the balance additively and returns the new total in the
// same statement.
func (s *ledgerStore) ApplyDelta(ctx context.Context, userID string, deltaSeconds int64) (int64, error) {
	var total int64
	err := s.conn.QueryRowContext(ctx, `
		INSERT INTO time_adjustments (user_id, total_seconds)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET total_seconds = time_adjustments.total_seconds + EXCLUDED.total_seconds
		RETURNING total_seconds`,
		userID, deltaSeconds).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to apply adjustment: %w", err)
	}
	return total, nil
}

func (s *ledgerStore) TotalFor(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := s.conn.QueryRowContext(ctx,
		"SELECT total_seconds FROM time_adjustments WHERE user_id = $1",
		userID).Scan(&total)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to get adjustment: %w", err)
	}
	return total, nil
}

func (s *ledgerStore) Users(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT user_id FROM time_adjustments ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list adjustment users: %w", err)
	}
	defer rows.Close()

	users := make([]string, 0)
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, userID)
	}
	return users, rows.Err()
}
