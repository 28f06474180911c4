package scoring

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/modwarden/warden-api/internal/domain/policy"
)

// SystemActor attributes administrative bulk operations in the ignore
// sub-record where no human reviewer is involved.
const SystemActor = "system"

// Warning is an immutable moderation fact plus a mutable review flag.
// Points are snapshotted from the warning level at creation time and are
// never recomputed when the level is later edited. Rows are never
// physically deleted; ignoring is the only mutation after creation.
type Warning struct {
	ID             uuid.UUID `db:"id" json:"id"`
	DiscordID      string    `db:"discord_id" json:"discord_id"`
	LevelID        uuid.UUID `db:"level_id" json:"level_id"`
	Points         int       `db:"points" json:"points"`
	RuleText       string    `db:"rule_text" json:"rule_text"`
	MessageContent string    `db:"message_content" json:"message_content"`
	MessageContext string    `db:"message_context" json:"message_context,omitempty"`
	MessageDeleted bool      `db:"message_deleted" json:"message_deleted"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	// Ignore sub-record
	Ignored      bool           `db:"ignored" json:"ignored"`
	IgnoredAt    sql.NullTime   `db:"ignored_at" json:"ignored_at,omitempty"`
	IgnoredBy    sql.NullString `db:"ignored_by" json:"ignored_by,omitempty"`
	IgnoreReason sql.NullString `db:"ignore_reason" json:"ignore_reason,omitempty"`
}

// Punishment is an append-only execution record. Current status lives on
// the user row; these rows are the audit trail.
type Punishment struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	DiscordID   string        `db:"discord_id" json:"discord_id"`
	Action      policy.Action `db:"action" json:"action"`
	Reason      string        `db:"reason" json:"reason"`
	DurationMin sql.NullInt64 `db:"duration_min" json:"duration_min,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	ExpiresAt   sql.NullTime  `db:"expires_at" json:"expires_at,omitempty"`
}
