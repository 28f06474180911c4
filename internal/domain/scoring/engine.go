package scoring

import (
	"database/sql"
	"time"

	"github.com/modwarden/warden-api/internal/domain/member"
	"github.com/modwarden/warden-api/internal/domain/policy"
)

// Decision is a punishment the engine decided to apply. The ledger write
// that produced it commits regardless of whether the platform-level
// execution later succeeds.
type Decision struct {
	Rule      *policy.PunishmentRule `json:"-"`
	Action    policy.Action          `json:"action"`
	ExpiresAt *time.Time             `json:"expires_at,omitempty"`
}

// Reversal records which standing punishments an operation lifted.
type Reversal struct {
	Unban  bool
	Unmute bool
}

// applyRecord adds points to the user and applies the punishment decision
// at the new total. The only forward path is clear -> muted -> banned: a
// ban is applied over a standing mute without clearing it, and no rule
// match leaves the current status untouched.
func applyRecord(u *member.User, points int, rules []*policy.PunishmentRule, now time.Time) *Decision {
	u.TotalPoints += points

	rule := policy.Applicable(rules, u.TotalPoints)
	if rule == nil {
		return nil
	}

	switch rule.Action {
	case policy.ActionBan:
		if u.IsBanned {
			return nil
		}
		u.IsBanned = true
		return &Decision{Rule: rule, Action: policy.ActionBan}
	case policy.ActionMute:
		if u.IsBanned || u.MuteActive(now) {
			return nil
		}
		expires := now.Add(rule.Duration())
		u.IsMuted = true
		u.MuteExpiresAt = sql.NullTime{Time: expires, Valid: true}
		return &Decision{Rule: rule, Action: policy.ActionMute, ExpiresAt: &expires}
	}
	return nil
}

// applyIgnore subtracts the ignored warning's points and removes standing
// punishments the new total no longer justifies. This path is removal
// only: it never grants or refreshes a punishment, and a status still
// covered by a lower threshold of the same type stays as it is.
func applyIgnore(u *member.User, points int, rules []*policy.PunishmentRule) Reversal {
	u.TotalPoints -= points

	var rev Reversal
	if u.IsBanned && !policy.Justifies(rules, policy.ActionBan, u.TotalPoints) {
		u.IsBanned = false
		rev.Unban = true
	}
	if u.IsMuted && !policy.Justifies(rules, policy.ActionMute, u.TotalPoints) {
		u.IsMuted = false
		u.MuteExpiresAt = sql.NullTime{}
		rev.Unmute = true
	}
	return rev
}

// applyRecalculate overwrites the total with the authoritative sum and
// re-derives ban and mute status independently against the current rule
// set, granting and revoking as needed. A newly granted mute gets a fresh
// expiry from now.
func applyRecalculate(u *member.User, total int, rules []*policy.PunishmentRule, now time.Time) ([]Decision, Reversal) {
	u.TotalPoints = total

	var decisions []Decision
	var rev Reversal

	banRule := policy.Strictest(rules, policy.ActionBan, total)
	switch {
	case banRule != nil && !u.IsBanned:
		u.IsBanned = true
		decisions = append(decisions, Decision{Rule: banRule, Action: policy.ActionBan})
	case banRule == nil && u.IsBanned:
		u.IsBanned = false
		rev.Unban = true
	}

	muteRule := policy.Strictest(rules, policy.ActionMute, total)
	switch {
	case muteRule != nil && !u.IsMuted:
		expires := now.Add(muteRule.Duration())
		u.IsMuted = true
		u.MuteExpiresAt = sql.NullTime{Time: expires, Valid: true}
		decisions = append(decisions, Decision{Rule: muteRule, Action: policy.ActionMute, ExpiresAt: &expires})
	case muteRule == nil && u.IsMuted:
		u.IsMuted = false
		u.MuteExpiresAt = sql.NullTime{}
		rev.Unmute = true
	}

	return decisions, rev
}

// applyReset ignores every counted warning's weight at once: total drops
// to zero and both statuses clear.
func applyReset(u *member.User) Reversal {
	rev := Reversal{Unban: u.IsBanned, Unmute: u.IsMuted}
	u.TotalPoints = 0
	u.IsBanned = false
	u.IsMuted = false
	u.MuteExpiresAt = sql.NullTime{}
	return rev
}
