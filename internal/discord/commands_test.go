package discord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"voicetime/internal/stats"
)

func testBot() *Bot {
	return &Bot{
		admins: map[string]bool{"admin": true},
		loc:    time.FixedZone("UTC+7", 7*3600),
	}
}

func TestParseWindowArgs(t *testing.T) {
	b := testBot()

	t.Run("no args means all time", func(t *testing.T) {
		window, label, err := b.parseWindowArgs(nil)
		require.NoError(t, err)
		require.Equal(t, "all time", label)
		require.True(t, window.To.After(window.From))
	})

	t.Run("two dates", func(t *testing.T) {
		window, label, err := b.parseWindowArgs([]string{"2025-07-01", "2025-07-01"})
		require.NoError(t, err)
		require.Equal(t, "2025-07-01 to 2025-07-01", label)
		require.Equal(t, 24*time.Hour, window.To.Sub(window.From))
	})

	t.Run("one date rejected", func(t *testing.T) {
		_, _, err := b.parseWindowArgs([]string{"2025-07-01"})
		require.ErrorIs(t, err, stats.ErrBadDate)
	})

	t.Run("malformed date rejected", func(t *testing.T) {
		_, _, err := b.parseWindowArgs([]string{"yesterday", "today"})
		require.ErrorIs(t, err, stats.ErrBadDate)
	})
}

func TestAuthorize(t *testing.T) {
	b := testBot()

	require.NoError(t, b.authorize("admin"))
	require.ErrorIs(t, b.authorize("someone"), errUnauthorized)
}
