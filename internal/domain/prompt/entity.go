package prompt

import (
	"time"

	"github.com/google/uuid"
)

// Template is an admin-editable analysis prompt. Exactly one template is
// active at a time; the pipeline refuses to classify without one.
type Template struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Content   string    `db:"content" json:"content"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
