// Package stats answers aggregate time queries over stored sessions and the
// adjustment ledger.
package stats

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"voicetime/internal/models"
	"voicetime/internal/storage"
)

// ErrBadDate is returned for malformed or reversed query window bounds.
var ErrBadDate = errors.New("invalid date")

const dateLayout = "2006-01-02"

// Window is a half-open time range [From, To). Sessions touching a boundary
// exactly contribute zero seconds.
type Window struct {
	From time.Time
	To   time.Time
}

// ParseWindow builds a window from two YYYY-MM-DD dates in the reference
// location. The range covers from 00:00 on the first date up to but not
// including 00:00 the day after the second date.
func ParseWindow(fromStr, toStr string, loc *time.Location) (Window, error) {
	from, err := time.ParseInLocation(dateLayout, fromStr, loc)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %q, expected YYYY-MM-DD", ErrBadDate, fromStr)
	}
	to, err := time.ParseInLocation(dateLayout, toStr, loc)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %q, expected YYYY-MM-DD", ErrBadDate, toStr)
	}
	if to.Before(from) {
		return Window{}, fmt.Errorf("%w: range ends before it starts", ErrBadDate)
	}
	return Window{From: from, To: to.AddDate(0, 0, 1)}, nil
}

// AllTime returns a window covering everything stored up to now.
func AllTime(now time.Time) Window {
	return Window{From: time.Unix(0, 0), To: now.Add(time.Second)}
}

// Overlap returns the intersection of a session interval with the window, in
// whole seconds. A session entirely outside the window yields 0; one inside
// yields its full duration; one straddling a boundary yields only the inside
// portion.
func Overlap(join, leave time.Time, w Window) int64 {
	start := join
	if w.From.After(start) {
		start = w.From
	}
	end := leave
	if w.To.Before(end) {
		end = w.To
	}
	if !end.After(start) {
		return 0
	}
	return int64(end.Sub(start) / time.Second)
}

// Aggregator computes per-user and ranked totals.
type Aggregator struct {
	sessions storage.SessionStore
	ledger   storage.LedgerStore
}

// NewAggregator creates an aggregator over the given stores.
func NewAggregator(sessions storage.SessionStore, ledger storage.LedgerStore) *Aggregator {
	return &Aggregator{sessions: sessions, ledger: ledger}
}

// TotalFor sums the overlap of every stored session with the window and adds
// the user's full ledger balance. The ledger is deliberately not scoped to
// the window: manual corrections apply to every query.
func (a *Aggregator) TotalFor(ctx context.Context, userID string, w Window) (int64, error) {
	sessions, err := a.sessions.SessionsFor(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load sessions for %s: %w", userID, err)
	}

	var total int64
	for _, session := range sessions {
		total += Overlap(session.Join, session.Leave, w)
	}

	adjustment, err := a.ledger.TotalFor(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load adjustment for %s: %w", userID, err)
	}
	return total + adjustment, nil
}

// Rank computes totals for every user known to either store and returns them
// in descending order, truncated to limit. Users whose total is zero or
// negative are excluded. Ties keep the order of the underlying user sets.
func (a *Aggregator) Rank(ctx context.Context, w Window, limit int) ([]models.UserTotal, error) {
	users, err := a.knownUsers(ctx)
	if err != nil {
		return nil, err
	}

	totals := make([]models.UserTotal, 0, len(users))
	for _, userID := range users {
		total, err := a.TotalFor(ctx, userID, w)
		if err != nil {
			return nil, err
		}
		if total <= 0 {
			continue
		}
		totals = append(totals, models.UserTotal{UserID: userID, TotalSeconds: total})
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].TotalSeconds > totals[j].TotalSeconds
	})

	if limit > 0 && len(totals) > limit {
		totals = totals[:limit]
	}
	return totals, nil
}

// knownUsers is the union of session-store and ledger users, session users
// first. A user with only manual adjustments and no sessions is still
// eligible for ranking.
func (a *Aggregator) knownUsers(ctx context.Context) ([]string, error) {
	sessionUsers, err := a.sessions.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("list session users: %w", err)
	}
	ledgerUsers, err := a.ledger.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ledger users: %w", err)
	}

	seen := make(map[string]bool, len(sessionUsers))
	users := make([]string, 0, len(sessionUsers)+len(ledgerUsers))
	for _, userID := range sessionUsers {
		if !seen[userID] {
			seen[userID] = true
			users = append(users, userID)
		}
	}
	for _, userID := range ledgerUsers {
		if !seen[userID] {
			seen[userID] = true
			users = append(users, userID)
		}
	}
	return users, nil
}
