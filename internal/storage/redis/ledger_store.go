package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

type ledgerStore struct {
	client *redis.Client
}

// ApplyDelta relies on HINCRBY for the atomic read-modify-write.
func (s *ledgerStore) ApplyDelta(ctx context.Context, userID string, deltaSeconds int64) (int64, error) {
	total, err := s.client.HIncrBy(ctx, keyAdjustments, userID, deltaSeconds).Result()
	if err != nil {
		return 0, fmt.Errorf("apply adjustment: %w", err)
	}
	return total, nil
}

func (s *ledgerStore) TotalFor(ctx context.Context, userID string) (int64, error) {
	value, err := s.client.HGet(ctx, keyAdjustments, userID).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get adjustment: %w", err)
	}

	total, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode adjustment: %w", err)
	}
	return total, nil
}

func (s *ledgerStore) Users(ctx context.Context) ([]string, error) {
	users, err := s.client.HKeys(ctx, keyAdjustments).Result()
	if err != nil {
		return nil, fmt.Errorf("list adjustment users: %w", err)
	}
	return users, nil
}
