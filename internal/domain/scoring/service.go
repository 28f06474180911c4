package scoring

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/modwarden/warden-api/internal/domain/catalog"
	"github.com/modwarden/warden-api/internal/domain/member"
	"github.com/modwarden/warden-api/internal/domain/policy"
)

// PolicyProvider yields the active punishment rule snapshot a decision
// evaluates against. Satisfied by *policy.Service.
type PolicyProvider interface {
	ListActive(ctx context.Context) ([]*policy.PunishmentRule, error)
}

// LevelResolver resolves classifier-reported level names. Satisfied by
// *catalog.Service.
type LevelResolver interface {
	ResolveLevel(ctx context.Context, name string) (*catalog.WarningLevel, error)
}

// Executor performs the platform-level punishment side effects. Execution
// is best-effort: a failure is reported but never rolls back the ledger.
type Executor interface {
	Mute(ctx context.Context, discordID string, until time.Time, reason string) error
	Unmute(ctx context.Context, discordID string) error
	Ban(ctx context.Context, discordID string, reason string) error
	Unban(ctx context.Context, discordID string) error
}

// NoopExecutor satisfies Executor for deployments where the process has no
// platform credentials. Decisions still land in the ledger and audit log.
type NoopExecutor struct{}

func (NoopExecutor) Mute(ctx context.Context, discordID string, until time.Time, reason string) error {
	log.Warn().Str("discord_id", discordID).Msg("No executor configured, mute not applied on platform")
	return nil
}

func (NoopExecutor) Unmute(ctx context.Context, discordID string) error {
	log.Warn().Str("discord_id", discordID).Msg("No executor configured, mute not lifted on platform")
	return nil
}

func (NoopExecutor) Ban(ctx context.Context, discordID string, reason string) error {
	log.Warn().Str("discord_id", discordID).Msg("No executor configured, ban not applied on platform")
	return nil
}

func (NoopExecutor) Unban(ctx context.Context, discordID string) error {
	log.Warn().Str("discord_id", discordID).Msg("No executor configured, ban not lifted on platform")
	return nil
}

// Outcome is what a recorded warning produced, for caller notification
type Outcome struct {
	Warning     *Warning              `json:"warning"`
	Level       *catalog.WarningLevel `json:"level"`
	PointsAdded int                   `json:"points_added"`
	NewTotal    int                   `json:"new_total"`
	Punishment  *Decision             `json:"punishment,omitempty"`
	// ExecutionError is set when the decided punishment could not be
	// carried out on the platform. The ledger write stands regardless.
	ExecutionError string `json:"execution_error,omitempty"`
}

// Service is the warning ledger and scoring engine
type Service struct {
	repo     Repository
	policies PolicyProvider
	levels   LevelResolver
	executor Executor
}

// NewService creates scoring service
func NewService(repo Repository, policies PolicyProvider, levels LevelResolver, executor Executor) *Service {
	if executor == nil {
		executor = NoopExecutor{}
	}
	return &Service{
		repo:     repo,
		policies: policies,
		levels:   levels,
		executor: executor,
	}
}

// RecordWarning writes a warning with the level's current point value
// snapshotted, updates the user's running total and applies any punishment
// the new total warrants. Returns ErrUnknownLevel when the level name does
// not resolve; no mutation happens in that case.
func (s *Service) RecordWarning(ctx context.Context, discordID, username, levelName, ruleText, messageContent, messageContext string) (*Outcome, error) {
	level, err := s.levels.ResolveLevel(ctx, levelName)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, ErrUnknownLevel
	}

	rules, err := s.policies.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	w := &Warning{
		ID:             uuid.New(),
		DiscordID:      discordID,
		LevelID:        level.ID,
		Points:         level.Points,
		RuleText:       ruleText,
		MessageContent: messageContent,
		MessageContext: messageContext,
		MessageDeleted: level.DeleteMessage,
		CreatedAt:      time.Now(),
	}

	user, decision, err := s.repo.RecordWarning(ctx, w, username, rules)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Warning:     w,
		Level:       level,
		PointsAdded: level.Points,
		NewTotal:    user.TotalPoints,
		Punishment:  decision,
	}

	if decision != nil {
		if err := s.execute(ctx, user.DiscordID, *decision); err != nil {
			log.Error().Err(err).
				Str("discord_id", user.DiscordID).
				Str("action", string(decision.Action)).
				Msg("Punishment execution failed, ledger write stands")
			outcome.ExecutionError = err.Error()
		}
	}

	log.Info().
		Str("discord_id", discordID).
		Str("level", level.Name).
		Int("points", level.Points).
		Int("total", user.TotalPoints).
		Msg("Warning recorded")

	return outcome, nil
}

// IgnoreWarning retroactively removes a warning from the count. The
// warning row stays for audit; only its ignore sub-record changes. A
// standing ban or mute is lifted when no active rule justifies it at the
// reduced total, and nothing else: this path never applies a lesser
// punishment.
func (s *Service) IgnoreWarning(ctx context.Context, warningID uuid.UUID, reviewerID, reason string) (*Warning, error) {
	rules, err := s.policies.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	w, user, rev, err := s.repo.IgnoreWarning(ctx, warningID, reviewerID, reason, rules)
	if err != nil {
		return nil, err
	}

	s.reverse(ctx, user.DiscordID, rev)

	log.Info().
		Str("warning_id", warningID.String()).
		Str("discord_id", user.DiscordID).
		Str("reviewer", reviewerID).
		Int("total", user.TotalPoints).
		Bool("unban", rev.Unban).
		Bool("unmute", rev.Unmute).
		Msg("Warning ignored")

	return w, nil
}

// Recalculate rebuilds the user's total from the non-ignored warning set
// and re-derives ban and mute status from the current active rules. It is
// the authoritative resync: it can both grant and revoke punishments.
func (s *Service) Recalculate(ctx context.Context, discordID string) (*member.User, error) {
	rules, err := s.policies.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	user, decisions, rev, err := s.repo.Recalculate(ctx, discordID, rules)
	if err != nil {
		return nil, err
	}

	for _, d := range decisions {
		if err := s.execute(ctx, user.DiscordID, d); err != nil {
			log.Error().Err(err).
				Str("discord_id", user.DiscordID).
				Str("action", string(d.Action)).
				Msg("Punishment execution failed during recalculation")
		}
	}
	s.reverse(ctx, user.DiscordID, rev)

	log.Info().
		Str("discord_id", discordID).
		Int("total", user.TotalPoints).
		Msg("User recalculated")

	return user, nil
}

// ResetWarnings ignores every counted warning for the user under the
// system actor, zeroes the total and clears punishment status. Audit rows
// are kept.
func (s *Service) ResetWarnings(ctx context.Context, discordID string) (*member.User, error) {
	user, rev, err := s.repo.ResetWarnings(ctx, discordID)
	if err != nil {
		return nil, err
	}

	s.reverse(ctx, user.DiscordID, rev)

	log.Info().Str("discord_id", discordID).Msg("User warnings reset")
	return user, nil
}

// GetWarning returns a warning by id
func (s *Service) GetWarning(ctx context.Context, id uuid.UUID) (*Warning, error) {
	w, err := s.repo.GetWarning(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWarningNotFound
	}
	return w, nil
}

// ListWarnings returns warnings, optionally filtered by user
func (s *Service) ListWarnings(ctx context.Context, filter *ListWarningsFilter) ([]*Warning, int, error) {
	warnings, err := s.repo.ListWarnings(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountWarnings(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return warnings, total, nil
}

// ListPunishments returns the punishment audit trail of a user
func (s *Service) ListPunishments(ctx context.Context, discordID string) ([]*Punishment, error) {
	return s.repo.ListPunishments(ctx, discordID)
}

func (s *Service) execute(ctx context.Context, discordID string, d Decision) error {
	switch d.Action {
	case policy.ActionBan:
		return s.executor.Ban(ctx, discordID, d.Rule.Reason())
	case policy.ActionMute:
		if d.ExpiresAt == nil {
			return nil
		}
		return s.executor.Mute(ctx, discordID, *d.ExpiresAt, d.Rule.Reason())
	}
	return nil
}

// reverse lifts platform punishments best-effort; failures are logged for
// moderators and never propagate.
func (s *Service) reverse(ctx context.Context, discordID string, rev Reversal) {
	if rev.Unban {
		if err := s.executor.Unban(ctx, discordID); err != nil {
			log.Error().Err(err).Str("discord_id", discordID).Msg("Failed to lift ban on platform")
		}
	}
	if rev.Unmute {
		if err := s.executor.Unmute(ctx, discordID); err != nil {
			log.Error().Err(err).Str("discord_id", discordID).Msg("Failed to lift mute on platform")
		}
	}
}
