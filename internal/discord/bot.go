package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"voicetime/internal/models"
	"voicetime/internal/stats"
	"voicetime/internal/storage"
	"voicetime/internal/tracker"
)

// Options configures the bot beyond its token and storage.
type Options struct {
	// LogChannelID is where join/leave announcements go. Empty disables them.
	LogChannelID string
	// AdminIDs is the allow-list of users permitted to apply manual
	// time adjustments.
	AdminIDs []string
	// Location is the fixed reference timezone for query windows and
	// displayed timestamps.
	Location *time.Location
	Logger   zerolog.Logger
}

// Bot represents the Discord bot
type Bot struct {
	session *discordgo.Session
	tracker *tracker.Tracker
	agg     *stats.Aggregator
	ledger  storage.LedgerStore
	admins  map[string]bool
	loc     *time.Location
	logger  zerolog.Logger
}

// New creates a new Discord bot over the given store.
func New(token string, store storage.Store, opts Options) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	admins := make(map[string]bool, len(opts.AdminIDs))
	for _, id := range opts.AdminIDs {
		admins[id] = true
	}

	notifier := &channelNotifier{
		session:   session,
		channelID: opts.LogChannelID,
		loc:       loc,
		logger:    opts.Logger,
	}

	bot := &Bot{
		session: session,
		tracker: tracker.New(store.Sessions(), notifier, opts.Logger),
		agg:     stats.NewAggregator(store.Sessions(), store.Ledger()),
		ledger:  store.Ledger(),
		admins:  admins,
		loc:     loc,
		logger:  opts.Logger.With().Str("component", "discord").Logger(),
	}

	session.AddHandler(bot.ready)
	session.AddHandler(bot.guildCreate)
	session.AddHandler(bot.voiceStateUpdate)
	session.AddHandler(bot.messageCreate)

	return bot, nil
}

// Start opens the gateway connection.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) ready(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info().Str("user", r.User.Username).Msg("Logged in")
}

// guildCreate fires once per guild after connect and carries the current
// voice states, which makes it the reconciliation point: every member
// already in a voice channel gets an open session starting now.
func (b *Bot) guildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	userIDs := make([]string, 0, len(g.VoiceStates))
	for _, vs := range g.VoiceStates {
		if vs.ChannelID != "" {
			userIDs = append(userIDs, vs.UserID)
		}
	}
	b.tracker.Reconcile(userIDs, time.Now().UTC())
}

// voiceStateUpdate translates the gateway payload into a VoiceEvent once and
// hands it to the tracker.
func (b *Bot) voiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	prevChannelID := ""
	if vs.BeforeUpdate != nil {
		prevChannelID = vs.BeforeUpdate.ChannelID
	}

	channelID := vs.ChannelID
	if channelID == "" {
		channelID = prevChannelID
	}

	ev := models.VoiceEvent{
		UserID:        vs.UserID,
		GuildID:       vs.GuildID,
		PrevChannelID: prevChannelID,
		NextChannelID: vs.ChannelID,
		ChannelName:   b.channelName(channelID),
		Timestamp:     time.Now().UTC(),
	}

	if err := b.tracker.HandleVoiceEvent(context.Background(), ev); err != nil {
		b.logger.Error().Err(err).Str("user_id", vs.UserID).Msg("Error handling voice state update")
	}
}

// channelName resolves a channel name from the session state, best effort.
func (b *Bot) channelName(channelID string) string {
	if channelID == "" {
		return ""
	}
	if channel, err := b.session.State.Channel(channelID); err == nil {
		return channel.Name
	}
	return ""
}
