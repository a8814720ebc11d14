// Package tracker maintains the in-memory map of open voice sessions and
// turns voice-state changes into completed sessions.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"voicetime/internal/metrics"
	"voicetime/internal/models"
	"voicetime/internal/storage"
)

// Notifier receives join/leave announcements. Implementations must not
// block accounting: send failures are theirs to swallow.
type Notifier interface {
	NotifyJoin(userID, channelName string, at time.Time)
	NotifyLeave(userID, channelName string, join, leave time.Time, seconds int64)
}

// Tracker holds the open-session state. A user has at most one open session
// at any time. The map starts empty and is primed by Reconcile at startup.
type Tracker struct {
	sessions storage.SessionStore
	notifier Notifier
	logger   zerolog.Logger

	mu   sync.Mutex
	open map[string]time.Time // key: userID -> join time
}

// New creates a tracker with an empty open-session map.
func New(sessions storage.SessionStore, notifier Notifier, logger zerolog.Logger) *Tracker {
	return &Tracker{
		sessions: sessions,
		notifier: notifier,
		logger:   logger.With().Str("component", "tracker").Logger(),
		open:     make(map[string]time.Time),
	}
}

// HandleVoiceEvent processes one normalized voice-state change. A change
// within the same channel is a no-op. Moving between two channels closes the
// old session and opens a new one in a single event.
func (t *Tracker) HandleVoiceEvent(ctx context.Context, ev models.VoiceEvent) error {
	if ev.PrevChannelID == ev.NextChannelID {
		return nil
	}

	if ev.PrevChannelID != "" {
		if err := t.closeSession(ctx, ev); err != nil {
			return err
		}
	}

	if ev.NextChannelID != "" {
		t.openSession(ev)
	}

	return nil
}

// closeSession pops the user's open session and persists the completed
// interval. A leave with no tracked join (the process restarted mid-session)
// is closed as a synthetic 1-second session ending at the event time so the
// leave stays auditable.
func (t *Tracker) closeSession(ctx context.Context, ev models.VoiceEvent) error {
	t.mu.Lock()
	start, tracked := t.open[ev.UserID]
	delete(t.open, ev.UserID)
	t.mu.Unlock()

	if !tracked {
		start = ev.Timestamp.Add(-time.Second)
		metrics.FallbackSessions.Inc()
		t.logger.Warn().
			Str("user_id", ev.UserID).
			Str("channel_id", ev.PrevChannelID).
			Msg("Leave without tracked join, recording 1s fallback session")
	}

	if err := t.sessions.Append(ctx, ev.UserID, start, ev.Timestamp); err != nil {
		// Nothing was persisted, so put the open session back: a retried
		// leave must close the real interval, not a fallback.
		if tracked {
			t.restoreOpen(ev.UserID, start)
		}
		return fmt.Errorf("close session for %s: %w", ev.UserID, err)
	}
	metrics.SessionsClosed.Inc()

	seconds := int64(ev.Timestamp.Sub(start) / time.Second)
	t.logger.Info().
		Str("user_id", ev.UserID).
		Str("channel_id", ev.PrevChannelID).
		Int64("seconds", seconds).
		Msg("Session closed")

	if t.notifier != nil {
		t.notifier.NotifyLeave(ev.UserID, ev.ChannelName, start, ev.Timestamp, seconds)
	}
	return nil
}

// restoreOpen re-registers a popped open session after a failed persist. A
// join recorded in the meantime wins: it is the newer state.
func (t *Tracker) restoreOpen(userID string, start time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.open[userID]; !ok {
		t.open[userID] = start
	}
}

func (t *Tracker) openSession(ev models.VoiceEvent) {
	t.mu.Lock()
	t.open[ev.UserID] = ev.Timestamp
	t.mu.Unlock()

	t.logger.Info().
		Str("user_id", ev.UserID).
		Str("channel_id", ev.NextChannelID).
		Msg("Session opened")

	if t.notifier != nil {
		t.notifier.NotifyJoin(ev.UserID, ev.ChannelName, ev.Timestamp)
	}
}

// Reconcile primes open sessions for users already connected to a voice
// channel. Users the tracker already knows keep their original start time.
// The synthetic start under-counts time spent before startup; the true join
// time predates the process and cannot be recovered.
func (t *Tracker) Reconcile(userIDs []string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	primed := 0
	for _, userID := range userIDs {
		if _, ok := t.open[userID]; ok {
			continue
		}
		t.open[userID] = now
		primed++
	}

	if primed > 0 {
		t.logger.Info().Int("users", primed).Msg("Primed open sessions from live membership")
	}
}

// OpenCount returns the number of currently tracked open sessions.
func (t *Tracker) OpenCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.open)
}
