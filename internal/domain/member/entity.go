package member

import (
	"database/sql"
	"time"
)

// User represents a guild member with a moderation record. Rows are
// created on the first offense and never deleted; TotalPoints is kept
// equal to the sum of points over the member's non-ignored warnings.
type User struct {
	DiscordID     string       `db:"discord_id" json:"discord_id"`
	Username      string       `db:"username" json:"username"`
	TotalPoints   int          `db:"total_points" json:"total_points"`
	IsBanned      bool         `db:"is_banned" json:"is_banned"`
	IsMuted       bool         `db:"is_muted" json:"is_muted"`
	MuteExpiresAt sql.NullTime `db:"mute_expires_at" json:"mute_expires_at,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// MuteActive reports whether the member's mute is present and not yet expired
func (u *User) MuteActive(now time.Time) bool {
	if !u.IsMuted {
		return false
	}
	if u.MuteExpiresAt.Valid && now.After(u.MuteExpiresAt.Time) {
		return false
	}
	return true
}
