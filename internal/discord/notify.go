package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"voicetime/internal/metrics"
	"voicetime/pkg/utils"
)

const timestampLayout = "2006/01/02 15:04:05"

// channelNotifier announces joins and leaves as embeds in the configured log
// channel. Sends are fire-and-forget: a missing or unauthorized channel must
// never block accounting, so failures are logged and dropped.
type channelNotifier struct {
	session   *discordgo.Session
	channelID string
	loc       *time.Location
	logger    zerolog.Logger
}

func (n *channelNotifier) NotifyJoin(userID, channelName string, at time.Time) {
	if n.channelID == "" {
		return
	}
	if channelName == "" {
		channelName = "(unknown channel)"
	}

	embed := &discordgo.MessageEmbed{
		Title: "🎧 Voice channel join",
		Color: 0x00ffcc,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: utils.FormatUserMention(userID), Inline: true},
			{Name: "Channel", Value: channelName, Inline: true},
			{Name: "Joined at", Value: at.In(n.loc).Format(timestampLayout)},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("ID: %s", userID)},
	}
	n.send(embed)
}

func (n *channelNotifier) NotifyLeave(userID, channelName string, join, leave time.Time, seconds int64) {
	if n.channelID == "" {
		return
	}
	if channelName == "" {
		channelName = "(unknown channel)"
	}

	embed := &discordgo.MessageEmbed{
		Title: "🛑 Voice channel leave",
		Color: 0xff5555,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: utils.FormatUserMention(userID), Inline: true},
			{Name: "Channel", Value: channelName, Inline: true},
			{Name: "Joined at", Value: join.In(n.loc).Format(timestampLayout)},
			{Name: "Left at", Value: leave.In(n.loc).Format(timestampLayout)},
			{Name: "Duration", Value: utils.FormatDuration(seconds)},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("ID: %s", userID)},
	}
	n.send(embed)
}

func (n *channelNotifier) send(embed *discordgo.MessageEmbed) {
	if _, err := n.session.ChannelMessageSendEmbed(n.channelID, embed); err != nil {
		metrics.NotifyFailures.Inc()
		n.logger.Warn().Err(err).Str("channel_id", n.channelID).Msg("Dropping notification")
	}
}
