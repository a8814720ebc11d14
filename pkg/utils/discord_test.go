package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voicetime/pkg/utils"
)

func TestMentionHelpers(t *testing.T) {
	require.Equal(t, "<@42>", utils.FormatUserMention("42"))
	require.True(t, utils.IsUserMention("<@42>"))
	require.True(t, utils.IsUserMention("<@!42>"))
	require.False(t, utils.IsUserMention("42"))
	require.Equal(t, "42", utils.ExtractUserIDFromMention("<@42>"))
	require.Equal(t, "42", utils.ExtractUserIDFromMention("<@!42>"))
}

func TestFormatLeaderboardEntry(t *testing.T) {
	require.Equal(t, "🥇 <@1> - 01h35m00s", utils.FormatLeaderboardEntry(1, "<@1>", "01h35m00s"))
	require.Equal(t, "4. <@4> - 00h10m00s", utils.FormatLeaderboardEntry(4, "<@4>", "00h10m00s"))
}

func TestTruncateString(t *testing.T) {
	require.Equal(t, "short", utils.TruncateString("short", 10))
	require.Equal(t, "lon...", utils.TruncateString("long reason here", 6))
}
