package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"voicetime/internal/models"
	"voicetime/internal/storage"
)

type sessionStore struct {
	client *redis.Client
}

func (s *sessionStore) Append(ctx context.Context, userID string, join, leave time.Time) error {
	if err := storage.ValidateInterval(join, leave); err != nil {
		return err
	}

	data, err := json.Marshal(models.Session{Join: join.UTC(), Leave: leave.UTC()})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, keySessionPrefix+userID, data)
	pipe.SAdd(ctx, keySessionUsers, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append session: %w", err)
	}
	return nil
}

func (s *sessionStore) SessionsFor(ctx context.Context, userID string) ([]models.Session, error) {
	entries, err := s.client.LRange(ctx, keySessionPrefix+userID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]models.Session, 0, len(entries))
	for _, entry := range entries {
		var session models.Session
		if err := json.Unmarshal([]byte(entry), &session); err != nil {
			return nil, fmt.Errorf("unmarshal session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *sessionStore) Users(ctx context.Context) ([]string, error) {
	users, err := s.client.SMembers(ctx, keySessionUsers).Result()
	if err != nil {
		return nil, fmt.Errorf("list session users: %w", err)
	}
	return users, nil
}
