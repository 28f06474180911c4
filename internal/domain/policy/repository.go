package policy

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines punishment rule data access interface
type Repository interface {
	Create(ctx context.Context, rule *PunishmentRule) error
	GetByID(ctx context.Context, id uuid.UUID) (*PunishmentRule, error)
	List(ctx context.Context) ([]*PunishmentRule, error)
	ListActive(ctx context.Context) ([]*PunishmentRule, error)
	Update(ctx context.Context, rule *PunishmentRule) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new policy repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rule *PunishmentRule) error {
	query := `
		INSERT INTO punishment_rules (id, action, point_threshold, duration_min, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.Action,
		rule.PointThreshold,
		rule.DurationMin,
		rule.IsActive,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*PunishmentRule, error) {
	query := `SELECT * FROM punishment_rules WHERE id = $1`
	var rule PunishmentRule
	err := r.db.GetContext(ctx, &rule, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repository) List(ctx context.Context) ([]*PunishmentRule, error) {
	query := `SELECT * FROM punishment_rules ORDER BY point_threshold ASC, created_at ASC`
	var rules []*PunishmentRule
	err := r.db.SelectContext(ctx, &rules, query)
	return rules, err
}

func (r *repository) ListActive(ctx context.Context) ([]*PunishmentRule, error) {
	query := `SELECT * FROM punishment_rules WHERE is_active ORDER BY point_threshold ASC, created_at ASC`
	var rules []*PunishmentRule
	err := r.db.SelectContext(ctx, &rules, query)
	return rules, err
}

func (r *repository) Update(ctx context.Context, rule *PunishmentRule) error {
	query := `
		UPDATE punishment_rules
		SET action = $1, point_threshold = $2, duration_min = $3, is_active = $4, updated_at = now()
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		rule.Action,
		rule.PointThreshold,
		rule.DurationMin,
		rule.IsActive,
		rule.ID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM punishment_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRuleNotFound
	}
	return nil
}
