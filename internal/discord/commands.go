package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"voicetime/internal/metrics"
	"voicetime/internal/stats"
	"voicetime/pkg/utils"
)

const (
	defaultRankLimit = 10
	maxReasonLen     = 120
)

// errUnauthorized marks adjustment commands from callers outside the
// allow-list.
var errUnauthorized = errors.New("not authorized")

// messageCreate dispatches prefix commands.
func (b *Bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot {
		return
	}

	fields := strings.Fields(strings.TrimSpace(m.Content))
	if len(fields) == 0 {
		return
	}

	command, args := fields[0], fields[1:]
	switch command {
	case "!voicetime":
		metrics.CommandsTotal.WithLabelValues("voicetime").Inc()
		b.handleQueryCommand(m, args)
	case "!top":
		metrics.CommandsTotal.WithLabelValues("top").Inc()
		b.handleTopCommand(m, args)
	case "!addtime":
		metrics.CommandsTotal.WithLabelValues("addtime").Inc()
		b.handleAdjustCommand(m, args, 1)
	case "!subtime":
		metrics.CommandsTotal.WithLabelValues("subtime").Inc()
		b.handleAdjustCommand(m, args, -1)
	case "!vthelp":
		metrics.CommandsTotal.WithLabelValues("vthelp").Inc()
		b.reply(m, helpText)
	}
}

const helpText = "Commands:\n" +
	"`!voicetime [@user] [from to]` - voice time for a user, dates as YYYY-MM-DD (no dates = all time)\n" +
	"`!top [from to] [limit]` - leaderboard for a date range\n" +
	"`!addtime @user <duration> [reason]` - add time, e.g. 1h30m (admins only)\n" +
	"`!subtime @user <duration> [reason]` - subtract time (admins only)"

// handleQueryCommand answers !voicetime [@user] [from to].
func (b *Bot) handleQueryCommand(m *discordgo.MessageCreate, args []string) {
	targetID := m.Author.ID
	if len(args) > 0 && utils.IsUserMention(args[0]) {
		targetID = utils.ExtractUserIDFromMention(args[0])
		args = args[1:]
	}

	window, label, err := b.parseWindowArgs(args)
	if err != nil {
		b.reply(m, fmt.Sprintf("⚠️ %v", err))
		return
	}

	total, err := b.agg.TotalFor(context.Background(), targetID, window)
	if err != nil {
		b.logger.Error().Err(err).Str("user_id", targetID).Msg("Error computing total")
		b.reply(m, "Something went wrong reading the stored sessions, try again.")
		return
	}

	b.reply(m, fmt.Sprintf("⏱️ %s spent %s in voice (%s)",
		utils.FormatUserMention(targetID), utils.FormatDuration(total), label))
}

// handleTopCommand answers !top [from to] [limit].
func (b *Bot) handleTopCommand(m *discordgo.MessageCreate, args []string) {
	limit := defaultRankLimit
	if len(args) == 1 || len(args) == 3 {
		n, err := strconv.Atoi(args[len(args)-1])
		if err != nil || n < 1 {
			b.reply(m, fmt.Sprintf("⚠️ invalid limit %q", args[len(args)-1]))
			return
		}
		limit = n
		args = args[:len(args)-1]
	}

	window, label, err := b.parseWindowArgs(args)
	if err != nil {
		b.reply(m, fmt.Sprintf("⚠️ %v", err))
		return
	}

	ranked, err := b.agg.Rank(context.Background(), window, limit)
	if err != nil {
		b.logger.Error().Err(err).Msg("Error computing ranking")
		b.reply(m, "Something went wrong computing the leaderboard, try again.")
		return
	}

	if len(ranked) == 0 {
		b.reply(m, fmt.Sprintf("📊 No voice time recorded (%s)", label))
		return
	}

	lines := make([]string, 0, len(ranked)+1)
	lines = append(lines, fmt.Sprintf("📊 Voice time leaderboard (%s):", label))
	for i, entry := range ranked {
		lines = append(lines, utils.FormatLeaderboardEntry(
			i+1,
			utils.FormatUserMention(entry.UserID),
			utils.FormatDuration(entry.TotalSeconds)))
	}
	b.reply(m, strings.Join(lines, "\n"))
}

// handleAdjustCommand applies a manual ledger delta for !addtime / !subtime.
// sign is +1 for addition and -1 for subtraction.
func (b *Bot) handleAdjustCommand(m *discordgo.MessageCreate, args []string, sign int64) {
	if err := b.authorize(m.Author.ID); err != nil {
		b.reply(m, "⛔ You are not allowed to adjust tracked time.")
		return
	}

	if len(args) < 2 || !utils.IsUserMention(args[0]) {
		b.reply(m, "Format: !addtime @user <duration> [reason] (duration like 1h30m)")
		return
	}

	targetID := utils.ExtractUserIDFromMention(args[0])
	seconds, err := utils.ParseDuration(args[1])
	if err != nil {
		b.reply(m, fmt.Sprintf("⚠️ %v", err))
		return
	}

	reason := utils.TruncateString(strings.Join(args[2:], " "), maxReasonLen)

	total, err := b.ledger.ApplyDelta(context.Background(), targetID, sign*seconds)
	if err != nil {
		b.logger.Error().Err(err).Str("user_id", targetID).Msg("Error applying adjustment")
		b.reply(m, "Something went wrong saving the adjustment, nothing was changed.")
		return
	}

	direction := "add"
	verb := "Added"
	if sign < 0 {
		direction = "sub"
		verb = "Subtracted"
	}
	metrics.AdjustmentsApplied.WithLabelValues(direction).Inc()

	b.logger.Info().
		Str("user_id", targetID).
		Str("by", m.Author.ID).
		Int64("delta", sign*seconds).
		Str("reason", reason).
		Msg("Adjustment applied")

	msg := fmt.Sprintf("✅ %s %s for %s, adjustment balance is now %s",
		verb, utils.FormatDuration(seconds), utils.FormatUserMention(targetID), utils.FormatDuration(total))
	if reason != "" {
		msg += fmt.Sprintf(" (reason: %s)", reason)
	}
	b.reply(m, msg)
}

// authorize checks the adjustment allow-list.
func (b *Bot) authorize(callerID string) error {
	if !b.admins[callerID] {
		return fmt.Errorf("%w: %s", errUnauthorized, callerID)
	}
	return nil
}

// parseWindowArgs turns zero or two date arguments into a query window plus
// a short label for replies.
func (b *Bot) parseWindowArgs(args []string) (stats.Window, string, error) {
	switch len(args) {
	case 0:
		return stats.AllTime(time.Now().UTC()), "all time", nil
	case 2:
		window, err := stats.ParseWindow(args[0], args[1], b.loc)
		if err != nil {
			return stats.Window{}, "", err
		}
		return window, fmt.Sprintf("%s to %s", args[0], args[1]), nil
	default:
		return stats.Window{}, "", fmt.Errorf("%w: expected two dates, e.g. 2025-07-01 2025-07-31", stats.ErrBadDate)
	}
}

func (b *Bot) reply(m *discordgo.MessageCreate, msg string) {
	if _, err := b.session.ChannelMessageSend(m.ChannelID, msg); err != nil {
		b.logger.Warn().Err(err).Str("channel_id", m.ChannelID).Msg("Error sending reply")
	}
}
