package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Executor applies and lifts punishments through the Discord REST API.
// It only needs a bot token, no gateway connection.
type Executor struct {
	session *discordgo.Session
	guildID string
}

// NewExecutor creates a Discord punishment executor
func NewExecutor(token, guildID string) (*Executor, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	return &Executor{
		session: session,
		guildID: guildID,
	}, nil
}

// Mute times the member out until the given time
func (e *Executor) Mute(ctx context.Context, discordID string, until time.Time, reason string) error {
	err := e.session.GuildMemberTimeout(e.guildID, discordID, &until, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to timeout member %s: %w", discordID, err)
	}

	log.Info().
		Str("discord_id", discordID).
		Time("until", until).
		Str("reason", reason).
		Msg("Member timed out")
	return nil
}

// Unmute removes an active timeout
func (e *Executor) Unmute(ctx context.Context, discordID string) error {
	err := e.session.GuildMemberTimeout(e.guildID, discordID, nil, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to remove timeout for member %s: %w", discordID, err)
	}

	log.Info().Str("discord_id", discordID).Msg("Member timeout removed")
	return nil
}

// Ban bans the member from the guild without pruning messages
func (e *Executor) Ban(ctx context.Context, discordID string, reason string) error {
	err := e.session.GuildBanCreateWithReason(e.guildID, discordID, reason, 0, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ban member %s: %w", discordID, err)
	}

	log.Info().
		Str("discord_id", discordID).
		Str("reason", reason).
		Msg("Member banned")
	return nil
}

// Unban lifts the guild ban
func (e *Executor) Unban(ctx context.Context, discordID string) error {
	err := e.session.GuildBanDelete(e.guildID, discordID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to unban member %s: %w", discordID, err)
	}

	log.Info().Str("discord_id", discordID).Msg("Member unbanned")
	return nil
}
