package prompt

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines prompt template data access interface
type Repository interface {
	Create(ctx context.Context, t *Template) error
	GetByID(ctx context.Context, id uuid.UUID) (*Template, error)
	GetActive(ctx context.Context) (*Template, error)
	List(ctx context.Context) ([]*Template, error)
	Update(ctx context.Context, t *Template) error
	// Activate makes the template the single active one.
	Activate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *Template) error {
	query := `
		INSERT INTO prompt_templates (id, name, content, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, t.ID, t.Name, t.Content, t.IsActive, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Template, error) {
	var t Template
	err := r.db.GetContext(ctx, &t, `SELECT * FROM prompt_templates WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) GetActive(ctx context.Context) (*Template, error) {
	var t Template
	err := r.db.GetContext(ctx, &t, `SELECT * FROM prompt_templates WHERE is_active LIMIT 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveTemplate
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) List(ctx context.Context) ([]*Template, error) {
	var templates []*Template
	err := r.db.SelectContext(ctx, &templates, `SELECT * FROM prompt_templates ORDER BY created_at DESC`)
	return templates, err
}

func (r *repository) Update(ctx context.Context, t *Template) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE prompt_templates SET name = $1, content = $2, updated_at = now()
		WHERE id = $3
	`, t.Name, t.Content, t.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (r *repository) Activate(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE prompt_templates SET is_active = false WHERE is_active`); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `UPDATE prompt_templates SET is_active = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTemplateNotFound
	}

	return tx.Commit()
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM prompt_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
