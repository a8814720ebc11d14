package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"voicetime/internal/models"
	"voicetime/internal/storage"
	"voicetime/internal/tracker"
)

type appended struct {
	userID string
	join   time.Time
	leave  time.Time
}

type recordingStore struct {
	records []appended
}

func (r *recordingStore) Append(_ context.Context, userID string, join, leave time.Time) error {
	if err := storage.ValidateInterval(join, leave); err != nil {
		return err
	}
	r.records = append(r.records, appended{userID: userID, join: join, leave: leave})
	return nil
}

func (r *recordingStore) SessionsFor(context.Context, string) ([]models.Session, error) {
	return nil, nil
}

func (r *recordingStore) Users(context.Context) ([]string, error) { return nil, nil }

// failingOnceStore errors on the first Append and then delegates.
type failingOnceStore struct {
	recordingStore
	failed bool
}

var errStorageDown = errors.New("storage unavailable")

func (f *failingOnceStore) Append(ctx context.Context, userID string, join, leave time.Time) error {
	if !f.failed {
		f.failed = true
		return errStorageDown
	}
	return f.recordingStore.Append(ctx, userID, join, leave)
}

type recordingNotifier struct {
	joins  []string
	leaves []string
}

func (n *recordingNotifier) NotifyJoin(userID, _ string, _ time.Time) {
	n.joins = append(n.joins, userID)
}

func (n *recordingNotifier) NotifyLeave(userID string, _ string, _, _ time.Time, _ int64) {
	n.leaves = append(n.leaves, userID)
}

func newTestTracker() (*tracker.Tracker, *recordingStore, *recordingNotifier) {
	store := &recordingStore{}
	notifier := &recordingNotifier{}
	return tracker.New(store, notifier, zerolog.Nop()), store, notifier
}

func event(prev, next string, at time.Time) models.VoiceEvent {
	return models.VoiceEvent{
		UserID:        "42",
		GuildID:       "guild",
		PrevChannelID: prev,
		NextChannelID: next,
		Timestamp:     at,
	}
}

func TestJoinThenLeave(t *testing.T) {
	trk, store, notifier := newTestTracker()
	ctx := context.Background()

	joinedAt := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	leftAt := joinedAt.Add(90 * time.Minute)

	require.NoError(t, trk.HandleVoiceEvent(ctx, event("", "general", joinedAt)))
	require.Equal(t, 1, trk.OpenCount())
	require.Equal(t, []string{"42"}, notifier.joins)
	require.Empty(t, store.records)

	require.NoError(t, trk.HandleVoiceEvent(ctx, event("general", "", leftAt)))
	require.Zero(t, trk.OpenCount())
	require.Equal(t, []string{"42"}, notifier.leaves)

	require.Len(t, store.records, 1)
	require.Equal(t, "42", store.records[0].userID)
	require.Equal(t, joinedAt, store.records[0].join)
	require.Equal(t, leftAt, store.records[0].leave)
}

func TestSameChannelUpdateIsNoop(t *testing.T) {
	trk, store, notifier := newTestTracker()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, trk.HandleVoiceEvent(ctx, event("general", "general", now)))
	require.Zero(t, trk.OpenCount())
	require.Empty(t, store.records)
	require.Empty(t, notifier.joins)
	require.Empty(t, notifier.leaves)
}

func TestChannelMoveClosesAndReopens(t *testing.T) {
	trk, store, notifier := newTestTracker()
	ctx := context.Background()

	joinedAt := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	movedAt := joinedAt.Add(20 * time.Minute)
	leftAt := movedAt.Add(10 * time.Minute)

	require.NoError(t, trk.HandleVoiceEvent(ctx, event("", "general", joinedAt)))
	require.NoError(t, trk.HandleVoiceEvent(ctx, event("general", "afk", movedAt)))

	require.Len(t, store.records, 1)
	require.Equal(t, joinedAt, store.records[0].join)
	require.Equal(t, movedAt, store.records[0].leave)
	require.Equal(t, 1, trk.OpenCount())
	require.Equal(t, []string{"42", "42"}, notifier.joins)

	require.NoError(t, trk.HandleVoiceEvent(ctx, event("afk", "", leftAt)))
	require.Len(t, store.records, 2)
	require.Equal(t, movedAt, store.records[1].join)
	require.Equal(t, leftAt, store.records[1].leave)
}

func TestUntrackedLeaveRecordsFallbackSession(t *testing.T) {
	trk, store, notifier := newTestTracker()
	ctx := context.Background()
	leftAt := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, trk.HandleVoiceEvent(ctx, event("general", "", leftAt)))

	require.Len(t, store.records, 1)
	require.Equal(t, leftAt, store.records[0].leave)
	require.Equal(t, leftAt.Add(-time.Second), store.records[0].join)
	require.Equal(t, []string{"42"}, notifier.leaves)
}

func TestReconcile(t *testing.T) {
	trk, store, _ := newTestTracker()
	ctx := context.Background()

	joinedAt := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	reconciledAt := joinedAt.Add(30 * time.Minute)
	leftAt := reconciledAt.Add(15 * time.Minute)

	require.NoError(t, trk.HandleVoiceEvent(ctx, event("", "general", joinedAt)))

	// "42" is already tracked and keeps its original start; "7" gets a
	// synthetic start at reconciliation time.
	trk.Reconcile([]string{"42", "7"}, reconciledAt)
	require.Equal(t, 2, trk.OpenCount())

	require.NoError(t, trk.HandleVoiceEvent(ctx, event("general", "", leftAt)))
	require.Equal(t, joinedAt, store.records[0].join)

	ev := event("general", "", leftAt)
	ev.UserID = "7"
	require.NoError(t, trk.HandleVoiceEvent(ctx, ev))
	require.Equal(t, reconciledAt, store.records[1].join)
}

func TestFailedAppendKeepsOpenSession(t *testing.T) {
	store := &failingOnceStore{}
	trk := tracker.New(store, nil, zerolog.Nop())
	ctx := context.Background()

	joinedAt := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	leftAt := joinedAt.Add(time.Hour)

	require.NoError(t, trk.HandleVoiceEvent(ctx, event("", "general", joinedAt)))

	// Persistence fails on the first leave: nothing is written and the
	// open session must survive so a retry can close the real interval.
	err := trk.HandleVoiceEvent(ctx, event("general", "", leftAt))
	require.ErrorIs(t, err, errStorageDown)
	require.Equal(t, 1, trk.OpenCount())
	require.Empty(t, store.records)

	require.NoError(t, trk.HandleVoiceEvent(ctx, event("general", "", leftAt)))
	require.Zero(t, trk.OpenCount())
	require.Len(t, store.records, 1)
	require.Equal(t, joinedAt, store.records[0].join)
	require.Equal(t, leftAt, store.records[0].leave)
}

func TestInvalidIntervalSurfaces(t *testing.T) {
	trk, _, _ := newTestTracker()
	ctx := context.Background()
	at := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, trk.HandleVoiceEvent(ctx, event("", "general", at)))

	// A leave timestamped before the join cannot produce a valid session.
	err := trk.HandleVoiceEvent(ctx, event("general", "", at.Add(-time.Minute)))
	require.ErrorIs(t, err, storage.ErrInvalidInterval)
}
