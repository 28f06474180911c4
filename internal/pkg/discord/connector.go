package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/modwarden/warden-api/internal/domain/scoring"
)

// Connector listens on the Discord gateway and feeds guild messages into
// the moderation pipeline.
type Connector struct {
	session       *discordgo.Session
	pipeline      *scoring.Pipeline
	guildID       string
	contextWindow int
	handleTimeout time.Duration
}

// NewConnector creates a gateway connector for one guild
func NewConnector(token, guildID string, contextWindow int, pipeline *scoring.Pipeline) (*Connector, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	c := &Connector{
		session:       session,
		pipeline:      pipeline,
		guildID:       guildID,
		contextWindow: contextWindow,
		handleTimeout: 2 * time.Minute,
	}
	session.AddHandler(c.onMessageCreate)
	return c, nil
}

// Open connects to the gateway
func (c *Connector) Open() error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	return nil
}

// Close disconnects from the gateway
func (c *Connector) Close() error {
	return c.session.Close()
}

func (c *Connector) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if c.guildID != "" && m.GuildID != c.guildID {
		return
	}
	if m.Content == "" {
		return
	}

	// Classification can retry for a while, keep the gateway handler free.
	go c.handle(m)
}

func (c *Connector) handle(m *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), c.handleTimeout)
	defer cancel()

	contextMessages := c.recentMessages(ctx, m.ChannelID, m.ID)

	result, err := c.pipeline.HandleMessage(ctx, m.Author.ID, m.Author.Username, m.Content, contextMessages)
	if err != nil {
		log.Error().Err(err).
			Str("discord_id", m.Author.ID).
			Str("message_id", m.ID).
			Msg("Failed to handle message")
		return
	}
	if !result.ViolationDetected {
		return
	}

	log.Info().
		Str("discord_id", m.Author.ID).
		Str("level", result.LevelName).
		Int("points_added", result.PointsAdded).
		Int("new_total", result.NewTotal).
		Msg("Violation recorded")

	if result.DeleteMessage {
		if err := c.session.ChannelMessageDelete(m.ChannelID, m.ID, discordgo.WithContext(ctx)); err != nil {
			log.Error().Err(err).Str("message_id", m.ID).Msg("Failed to delete flagged message")
		}
	}

	c.announce(ctx, m, result)
}

// recentMessages fetches up to the configured number of messages that
// preceded the flagged one, oldest first.
func (c *Connector) recentMessages(ctx context.Context, channelID, beforeID string) []string {
	if c.contextWindow <= 0 {
		return nil
	}

	messages, err := c.session.ChannelMessages(channelID, c.contextWindow, beforeID, "", "", discordgo.WithContext(ctx))
	if err != nil {
		log.Warn().Err(err).Str("channel_id", channelID).Msg("Failed to fetch channel context")
		return nil
	}

	// ChannelMessages returns newest first.
	out := make([]string, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Author == nil || msg.Author.Bot || msg.Content == "" {
			continue
		}
		out = append(out, fmt.Sprintf("%s: %s", msg.Author.Username, msg.Content))
	}
	return out
}

func (c *Connector) announce(ctx context.Context, m *discordgo.MessageCreate, result *scoring.HandleResult) {
	text := fmt.Sprintf("<@%s> received a **%s** warning (+%d points, total %d).",
		m.Author.ID, result.LevelName, result.PointsAdded, result.NewTotal)
	if result.Punishment != nil {
		switch {
		case result.Punishment.ExpiresAt != nil:
			text += fmt.Sprintf(" Muted until <t:%d:f>.", result.Punishment.ExpiresAt.Unix())
		default:
			text += " The member has been banned."
		}
	}

	if _, err := c.session.ChannelMessageSend(m.ChannelID, text, discordgo.WithContext(ctx)); err != nil {
		log.Error().Err(err).Str("channel_id", m.ChannelID).Msg("Failed to announce moderation outcome")
	}
}
