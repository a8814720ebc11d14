package utils

import (
	"fmt"
	"strings"
)

// FormatUserMention formats a user ID as a Discord mention
func FormatUserMention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

// IsUserMention checks if a string looks like a user mention
func IsUserMention(text string) bool {
	return strings.HasPrefix(text, "<@") && strings.HasSuffix(text, ">")
}

// ExtractUserIDFromMention extracts the user ID from a Discord mention,
// handling the <@!...> nickname form as well
func ExtractUserIDFromMention(mention string) string {
	userID := strings.TrimPrefix(mention, "<@")
	userID = strings.TrimSuffix(userID, ">")
	userID = strings.TrimPrefix(userID, "!")
	return userID
}

// FormatLeaderboardEntry formats one leaderboard line with rank medal, user
// mention and formatted duration
func FormatLeaderboardEntry(rank int, userMention, duration string) string {
	medal := ""
	switch rank {
	case 1:
		medal = "🥇"
	case 2:
		medal = "🥈"
	case 3:
		medal = "🥉"
	default:
		medal = fmt.Sprintf("%d.", rank)
	}

	return fmt.Sprintf("%s %s - %s", medal, userMention, duration)
}

// TruncateString truncates a string to max length and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
