package bolt

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"voicetime/internal/models"
	"voicetime/internal/storage"
)

type sessionStore struct {
	db *bbolt.DB
}

// Append reads the user's session list, appends the new interval and writes
// the list back, all inside one write transaction.
func (s *sessionStore) Append(ctx context.Context, userID string, join, leave time.Time) error {
	if err := storage.ValidateInterval(join, leave); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		bucket := tx.Bucket([]byte(bucketSessions))
		if bucket == nil {
			return fmt.Errorf("sessions bucket missing")
		}

		sessions := make([]models.Session, 0)
		if data := bucket.Get([]byte(userID)); data != nil {
			if err := unmarshal(data, &sessions); err != nil {
				return err
			}
		}
		sessions = append(sessions, models.Session{Join: join.UTC(), Leave: leave.UTC()})

		data, err := marshal(sessions)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(userID), data)
	})
}

func (s *sessionStore) SessionsFor(ctx context.Context, userID string) ([]models.Session, error) {
	sessions := make([]models.Session, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		bucket := tx.Bucket([]byte(bucketSessions))
		if bucket == nil {
			return nil
		}
		data := bucket.Get([]byte(userID))
		if data == nil {
			return nil
		}
		return unmarshal(data, &sessions)
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *sessionStore) Users(ctx context.Context) ([]string, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return bucketKeys(s.db, bucketSessions)
}
