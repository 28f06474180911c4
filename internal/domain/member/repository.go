package member

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Repository defines read access to member rows. All mutation of
// total_points and punishment flags goes through the scoring engine's
// transactions.
type Repository interface {
	GetByDiscordID(ctx context.Context, discordID string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new member repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByDiscordID(ctx context.Context, discordID string) (*User, error) {
	query := `SELECT * FROM users WHERE discord_id = $1`
	var u User
	err := r.db.GetContext(ctx, &u, query, discordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]*User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := `
		SELECT * FROM users
		ORDER BY total_points DESC, username ASC
		LIMIT $1 OFFSET $2
	`
	var users []*User
	err := r.db.SelectContext(ctx, &users, query, limit, offset)
	return users, err
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}
