package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"voicetime/internal/models"
	"voicetime/internal/storage"
)

type sessionStore struct {
	conn *sql.DB
}

func (s *sessionStore) Append(ctx context.Context, userID string, join, leave time.Time) error {
	if err := storage.ValidateInterval(join, leave); err != nil {
		return err
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO voice_sessions (user_id, joined_at, left_at)
		VALUES ($1, $2, $3)`,
		userID, join.UTC(), leave.UTC())
	if err != nil {
		return fmt.Errorf("failed to append session: %w", err)
	}
	return nil
}

func (s *sessionStore) SessionsFor(ctx context.Context, userID string) ([]models.Session, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT joined_at, left_at FROM voice_sessions
		WHERE user_id = $1 ORDER BY id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		var session models.Session
		if err := rows.Scan(&session.Join, &session.Leave); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (s *sessionStore) Users(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT user_id FROM voice_sessions
		GROUP BY user_id ORDER BY MIN(id)`)
	if err != nil {
		return nil, fmt.Errorf("failed to list session users: %w", err)
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
