package policy

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action represents the automatic punishment a rule triggers
type Action string

const (
	ActionMute Action = "mute"
	ActionBan  Action = "ban"
)

// PunishmentRule maps a cumulative point threshold to an action. Duration
// is required for mutes and absent for bans (a ban is permanent).
type PunishmentRule struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	Action         Action        `db:"action" json:"action"`
	PointThreshold int           `db:"point_threshold" json:"point_threshold"`
	DurationMin    sql.NullInt64 `db:"duration_min" json:"duration_min,omitempty"`
	IsActive       bool          `db:"is_active" json:"is_active"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// Duration returns the mute duration carried by the rule
func (p *PunishmentRule) Duration() time.Duration {
	if !p.DurationMin.Valid {
		return 0
	}
	return time.Duration(p.DurationMin.Int64) * time.Minute
}

// Reason renders the audit reason attached to platform-level actions
func (p *PunishmentRule) Reason() string {
	return fmt.Sprintf("accumulated points reached the %d point threshold", p.PointThreshold)
}
