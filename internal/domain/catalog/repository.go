package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines catalog data access interface
type Repository interface {
	// Level operations
	CreateLevel(ctx context.Context, level *WarningLevel) error
	GetLevelByID(ctx context.Context, id uuid.UUID) (*WarningLevel, error)
	GetLevelByName(ctx context.Context, name string) (*WarningLevel, error)
	ListLevels(ctx context.Context) ([]*WarningLevel, error)
	UpdateLevel(ctx context.Context, level *WarningLevel) error
	DeleteLevel(ctx context.Context, id uuid.UUID) error

	// Rule operations
	CreateRule(ctx context.Context, rule *Rule) error
	GetRuleByID(ctx context.Context, id uuid.UUID) (*Rule, error)
	ListRules(ctx context.Context, levelID uuid.UUID) ([]*Rule, error)
	ListAllRules(ctx context.Context) ([]*Rule, error)
	UpdateRule(ctx context.Context, rule *Rule) error
	ReorderRules(ctx context.Context, levelID uuid.UUID, orderedIDs []uuid.UUID) error
	DeleteRule(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new catalog repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Level operations

func (r *repository) CreateLevel(ctx context.Context, level *WarningLevel) error {
	query := `
		INSERT INTO warning_levels (id, name, color, points, delete_message, description, is_visible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		level.ID,
		level.Name,
		level.Color,
		level.Points,
		level.DeleteMessage,
		level.Description,
		level.IsVisible,
		level.CreatedAt,
		level.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrLevelNameTaken
		}
		return err
	}
	return nil
}

func (r *repository) GetLevelByID(ctx context.Context, id uuid.UUID) (*WarningLevel, error) {
	query := `SELECT * FROM warning_levels WHERE id = $1`
	var level WarningLevel
	err := r.db.GetContext(ctx, &level, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &level, nil
}

func (r *repository) GetLevelByName(ctx context.Context, name string) (*WarningLevel, error) {
	query := `SELECT * FROM warning_levels WHERE LOWER(name) = LOWER($1)`
	var level WarningLevel
	err := r.db.GetContext(ctx, &level, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &level, nil
}

func (r *repository) ListLevels(ctx context.Context) ([]*WarningLevel, error) {
	query := `SELECT * FROM warning_levels ORDER BY points ASC, name ASC`
	var levels []*WarningLevel
	err := r.db.SelectContext(ctx, &levels, query)
	return levels, err
}

func (r *repository) UpdateLevel(ctx context.Context, level *WarningLevel) error {
	query := `
		UPDATE warning_levels
		SET name = $1, color = $2, points = $3, delete_message = $4, description = $5, is_visible = $6, updated_at = now()
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		level.Name,
		level.Color,
		level.Points,
		level.DeleteMessage,
		level.Description,
		level.IsVisible,
		level.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrLevelNameTaken
		}
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrLevelNotFound
	}
	return nil
}

// DeleteLevel removes a level and its rules. Refused while any warning
// references the level, which preserves the audit trail.
func (r *repository) DeleteLevel(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var referenced bool
	err = tx.GetContext(ctx, &referenced, `SELECT EXISTS(SELECT 1 FROM warnings WHERE level_id = $1)`, id)
	if err != nil {
		return err
	}
	if referenced {
		return ErrLevelInUse
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rules WHERE level_id = $1`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM warning_levels WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrLevelNotFound
	}

	return tx.Commit()
}

// Rule operations

func (r *repository) CreateRule(ctx context.Context, rule *Rule) error {
	query := `
		INSERT INTO rules (id, level_id, name, description, sort_order, is_visible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.LevelID,
		rule.Name,
		rule.Description,
		rule.SortOrder,
		rule.IsVisible,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrLevelNotFound
		}
		return err
	}
	return nil
}

func (r *repository) GetRuleByID(ctx context.Context, id uuid.UUID) (*Rule, error) {
	query := `SELECT * FROM rules WHERE id = $1`
	var rule Rule
	err := r.db.GetContext(ctx, &rule, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repository) ListRules(ctx context.Context, levelID uuid.UUID) ([]*Rule, error) {
	query := `SELECT * FROM rules WHERE level_id = $1 ORDER BY sort_order ASC, created_at ASC`
	var rules []*Rule
	err := r.db.SelectContext(ctx, &rules, query, levelID)
	return rules, err
}

func (r *repository) ListAllRules(ctx context.Context) ([]*Rule, error) {
	query := `SELECT * FROM rules ORDER BY level_id, sort_order ASC, created_at ASC`
	var rules []*Rule
	err := r.db.SelectContext(ctx, &rules, query)
	return rules, err
}

func (r *repository) UpdateRule(ctx context.Context, rule *Rule) error {
	query := `
		UPDATE rules
		SET name = $1, description = $2, sort_order = $3, is_visible = $4, updated_at = now()
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		rule.Name,
		rule.Description,
		rule.SortOrder,
		rule.IsVisible,
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

// ReorderRules rewrites sort_order for the level according to the given
// id sequence. Ids not belonging to the level are skipped.
func (r *repository) ReorderRules(ctx context.Context, levelID uuid.UUID, orderedIDs []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, id := range orderedIDs {
		_, err := tx.ExecContext(ctx, `
			UPDATE rules SET sort_order = $1, updated_at = now()
			WHERE id = $2 AND level_id = $3
		`, i, id, levelID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) DeleteRule(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rules WHERE id = $1`, id)
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
