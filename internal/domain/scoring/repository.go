package scoring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/modwarden/warden-api/internal/domain/member"
	"github.com/modwarden/warden-api/internal/domain/policy"
)

// ListWarningsFilter narrows warning queries for the admin surface
type ListWarningsFilter struct {
	DiscordID string
	Limit     int
	Offset    int
}

// Repository owns every mutation of the ledger and the user point totals.
// Each method runs as a single transaction with the user row locked FOR
// UPDATE, so concurrent warnings for one user serialize while different
// users proceed in parallel.
type Repository interface {
	RecordWarning(ctx context.Context, w *Warning, username string, rules []*policy.PunishmentRule) (*member.User, *Decision, error)
	IgnoreWarning(ctx context.Context, warningID uuid.UUID, reviewerID, reason string, rules []*policy.PunishmentRule) (*Warning, *member.User, Reversal, error)
	Recalculate(ctx context.Context, discordID string, rules []*policy.PunishmentRule) (*member.User, []Decision, Reversal, error)
	ResetWarnings(ctx context.Context, discordID string) (*member.User, Reversal, error)

	GetWarning(ctx context.Context, id uuid.UUID) (*Warning, error)
	ListWarnings(ctx context.Context, filter *ListWarningsFilter) ([]*Warning, error)
	CountWarnings(ctx context.Context, filter *ListWarningsFilter) (int, error)
	ListPunishments(ctx context.Context, discordID string) ([]*Punishment, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new scoring repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) beginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// lockUser creates the user row on first offense and takes the row lock
// that serializes all scoring operations for this user.
func (r *repository) lockUser(ctx context.Context, tx *sqlx.Tx, discordID, username string) (*member.User, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (discord_id, username, total_points)
		VALUES ($1, $2, 0)
		ON CONFLICT (discord_id) DO NOTHING
	`, discordID, username); err != nil {
		return nil, err
	}

	var u member.User
	err := tx.GetContext(ctx, &u, `SELECT * FROM users WHERE discord_id = $1 FOR UPDATE`, discordID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// lockExistingUser is the variant for operations that must not create rows.
func (r *repository) lockExistingUser(ctx context.Context, tx *sqlx.Tx, discordID string) (*member.User, error) {
	var u member.User
	err := tx.GetContext(ctx, &u, `SELECT * FROM users WHERE discord_id = $1 FOR UPDATE`, discordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, member.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) saveUser(ctx context.Context, tx *sqlx.Tx, u *member.User) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users
		SET username = $1, total_points = $2, is_banned = $3, is_muted = $4, mute_expires_at = $5, updated_at = now()
		WHERE discord_id = $6
	`, u.Username, u.TotalPoints, u.IsBanned, u.IsMuted, u.MuteExpiresAt, u.DiscordID)
	return err
}

func (r *repository) insertWarning(ctx context.Context, tx *sqlx.Tx, w *Warning) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO warnings (id, discord_id, level_id, points, rule_text, message_content, message_context, message_deleted, created_at, ignored)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false)
	`, w.ID, w.DiscordID, w.LevelID, w.Points, w.RuleText, w.MessageContent, w.MessageContext, w.MessageDeleted, w.CreatedAt)
	return err
}

func (r *repository) insertPunishment(ctx context.Context, tx *sqlx.Tx, discordID string, d Decision, total int) error {
	p := Punishment{
		ID:        uuid.New(),
		DiscordID: discordID,
		Action:    d.Action,
		Reason:    fmt.Sprintf("point threshold %d reached at %d points", d.Rule.PointThreshold, total),
		CreatedAt: time.Now(),
	}
	if d.Rule.DurationMin.Valid {
		p.DurationMin = d.Rule.DurationMin
	}
	if d.ExpiresAt != nil {
		p.ExpiresAt = sql.NullTime{Time: *d.ExpiresAt, Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO punishments (id, discord_id, action, reason, duration_min, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.DiscordID, p.Action, p.Reason, p.DurationMin, p.CreatedAt, p.ExpiresAt)
	return err
}

func (r *repository) RecordWarning(ctx context.Context, w *Warning, username string, rules []*policy.PunishmentRule) (*member.User, *Decision, error) {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	u, err := r.lockUser(ctx, tx, w.DiscordID, username)
	if err != nil {
		return nil, nil, err
	}
	u.Username = username

	if err := r.insertWarning(ctx, tx, w); err != nil {
		return nil, nil, err
	}

	decision := applyRecord(u, w.Points, rules, time.Now())

	if err := r.saveUser(ctx, tx, u); err != nil {
		return nil, nil, err
	}

	if decision != nil {
		if err := r.insertPunishment(ctx, tx, u.DiscordID, *decision, u.TotalPoints); err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return u, decision, nil
}

func (r *repository) IgnoreWarning(ctx context.Context, warningID uuid.UUID, reviewerID, reason string, rules []*policy.PunishmentRule) (*Warning, *member.User, Reversal, error) {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return nil, nil, Reversal{}, err
	}
	defer tx.Rollback()

	var w Warning
	err = tx.GetContext(ctx, &w, `SELECT * FROM warnings WHERE id = $1 FOR UPDATE`, warningID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, Reversal{}, ErrWarningNotFound
		}
		return nil, nil, Reversal{}, err
	}
	if w.Ignored {
		// Re-ignoring is rejected so each ignored warning keeps a single
		// accountable reviewer and reason.
		return nil, nil, Reversal{}, ErrWarningAlreadyIgnored
	}

	u, err := r.lockExistingUser(ctx, tx, w.DiscordID)
	if err != nil {
		return nil, nil, Reversal{}, err
	}

	now := time.Now()
	w.Ignored = true
	w.IgnoredAt = sql.NullTime{Time: now, Valid: true}
	w.IgnoredBy = sql.NullString{String: reviewerID, Valid: true}
	w.IgnoreReason = sql.NullString{String: reason, Valid: true}

	if _, err := tx.ExecContext(ctx, `
		UPDATE warnings
		SET ignored = true, ignored_at = $1, ignored_by = $2, ignore_reason = $3
		WHERE id = $4
	`, w.IgnoredAt, w.IgnoredBy, w.IgnoreReason, w.ID); err != nil {
		return nil, nil, Reversal{}, err
	}

	rev := applyIgnore(u, w.Points, rules)

	if err := r.saveUser(ctx, tx, u); err != nil {
		return nil, nil, Reversal{}, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, Reversal{}, err
	}
	return &w, u, rev, nil
}

func (r *repository) Recalculate(ctx context.Context, discordID string, rules []*policy.PunishmentRule) (*member.User, []Decision, Reversal, error) {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return nil, nil, Reversal{}, err
	}
	defer tx.Rollback()

	u, err := r.lockExistingUser(ctx, tx, discordID)
	if err != nil {
		return nil, nil, Reversal{}, err
	}

	var total int
	err = tx.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(points), 0) FROM warnings
		WHERE discord_id = $1 AND NOT ignored
	`, discordID)
	if err != nil {
		return nil, nil, Reversal{}, err
	}

	decisions, rev := applyRecalculate(u, total, rules, time.Now())

	if err := r.saveUser(ctx, tx, u); err != nil {
		return nil, nil, Reversal{}, err
	}

	for _, d := range decisions {
		if err := r.insertPunishment(ctx, tx, u.DiscordID, d, u.TotalPoints); err != nil {
			return nil, nil, Reversal{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, Reversal{}, err
	}
	return u, decisions, rev, nil
}

func (r *repository) ResetWarnings(ctx context.Context, discordID string) (*member.User, Reversal, error) {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return nil, Reversal{}, err
	}
	defer tx.Rollback()

	u, err := r.lockExistingUser(ctx, tx, discordID)
	if err != nil {
		return nil, Reversal{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE warnings
		SET ignored = true, ignored_at = now(), ignored_by = $1, ignore_reason = 'reset'
		WHERE discord_id = $2 AND NOT ignored
	`, SystemActor, discordID); err != nil {
		return nil, Reversal{}, err
	}

	rev := applyReset(u)

	if err := r.saveUser(ctx, tx, u); err != nil {
		return nil, Reversal{}, err
	}

	if err := tx.Commit(); err != nil {
		return nil, Reversal{}, err
	}
	return u, rev, nil
}

func (r *repository) GetWarning(ctx context.Context, id uuid.UUID) (*Warning, error) {
	var w Warning
	err := r.db.GetContext(ctx, &w, `SELECT * FROM warnings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *repository) ListWarnings(ctx context.Context, filter *ListWarningsFilter) ([]*Warning, error) {
	query := `SELECT * FROM warnings WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter != nil && filter.DiscordID != "" {
		query += fmt.Sprintf(` AND discord_id = $%d`, argPos)
		args = append(args, filter.DiscordID)
		argPos++
	}

	query += ` ORDER BY created_at DESC`

	limit := 50
	if filter != nil && filter.Limit > 0 && filter.Limit <= 200 {
		limit = filter.Limit
	}
	query += fmt.Sprintf(` LIMIT $%d`, argPos)
	args = append(args, limit)
	argPos++

	if filter != nil && filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argPos)
		args = append(args, filter.Offset)
	}

	var warnings []*Warning
	err := r.db.SelectContext(ctx, &warnings, query, args...)
	return warnings, err
}

func (r *repository) CountWarnings(ctx context.Context, filter *ListWarningsFilter) (int, error) {
	query := `SELECT COUNT(*) FROM warnings WHERE 1=1`
	args := []interface{}{}

	if filter != nil && filter.DiscordID != "" {
		query += ` AND discord_id = $1`
		args = append(args, filter.DiscordID)
	}

	var count int
	err := r.db.GetContext(ctx, &count, query, args...)
	return count, err
}

func (r *repository) ListPunishments(ctx context.Context, discordID string) ([]*Punishment, error) {
	query := `SELECT * FROM punishments WHERE discord_id = $1 ORDER BY created_at DESC`
	var punishments []*Punishment
	err := r.db.SelectContext(ctx, &punishments, query, discordID)
	return punishments, err
}
