package catalog

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// WarningLevel represents a severity tier. Its point value is snapshotted
// onto warnings at creation time, so later edits never rewrite history.
type WarningLevel struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Color         string         `db:"color" json:"color"`
	Points        int            `db:"points" json:"points"`
	DeleteMessage bool           `db:"delete_message" json:"delete_message"`
	Description   sql.NullString `db:"description" json:"description,omitempty"`
	IsVisible     bool           `db:"is_visible" json:"is_visible"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// Rule represents a described offense belonging to a warning level.
// SortOrder defines presentation sequence within the level.
type Rule struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	LevelID     uuid.UUID      `db:"level_id" json:"level_id"`
	Name        string         `db:"name" json:"name"`
	Description sql.NullString `db:"description" json:"description,omitempty"`
	SortOrder   int            `db:"sort_order" json:"sort_order"`
	IsVisible   bool           `db:"is_visible" json:"is_visible"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
