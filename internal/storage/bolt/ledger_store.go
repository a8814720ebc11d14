package bolt

import (
	"context"
	"fmt"
	"strconv"

	"go.etcd.io/bbolt"
)

type ledgerStore struct {
	db *bbolt.DB
}

// ApplyDelta adds deltaSeconds to the user's balance inside one write
// transaction and returns the new total.
func (s *ledgerStore) ApplyDelta(ctx context.Context, userID string, deltaSeconds int64) (int64, error) {
	var total int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		bucket := tx.Bucket([]byte(bucketAdjustments))
		if bucket == nil {
			return fmt.Errorf("adjustments bucket missing")
		}

		current, err := decodeTotal(bucket.Get([]byte(userID)))
		if err != nil {
			return err
		}
		total = current + deltaSeconds
		return bucket.Put([]byte(userID), []byte(strconv.FormatInt(total, 10)))
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *ledgerStore) TotalFor(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := s.db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		bucket := tx.Bucket([]byte(bucketAdjustments))
		if bucket == nil {
			return nil
		}
		current, err := decodeTotal(bucket.Get([]byte(userID)))
		if err != nil {
			return err
		}
		total = current
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *ledgerStore) Users(ctx context.Context) ([]string, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return bucketKeys(s.db, bucketAdjustments)
}

// decodeTotal treats a missing value as a zero balance.
func decodeTotal(data []byte) (int64, error) {
	if data == nil {
		return 0, nil
	}
	total, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode ledger total: %w", err)
	}
	return total, nil
}
