package scoring

import (
	"database/sql"
	"testing"
	"time"

	"github.com/modwarden/warden-api/internal/domain/member"
	"github.com/modwarden/warden-api/internal/domain/policy"
)

func testRules() []*policy.PunishmentRule {
	return []*policy.PunishmentRule{
		{
			Action:         policy.ActionMute,
			PointThreshold: 5,
			DurationMin:    sql.NullInt64{Int64: 240, Valid: true},
			IsActive:       true,
		},
		{
			Action:         policy.ActionBan,
			PointThreshold: 10,
			IsActive:       true,
		},
	}
}

func TestApplyRecordEscalation(t *testing.T) {
	now := time.Now()
	u := &member.User{DiscordID: "1001"}
	rules := testRules()

	// Three light warnings stay below every threshold.
	for i := 0; i < 3; i++ {
		if d := applyRecord(u, 1, rules, now); d != nil {
			t.Fatalf("unexpected punishment at total %d: %+v", u.TotalPoints, d)
		}
	}
	if u.TotalPoints != 3 {
		t.Fatalf("expected total 3, got %d", u.TotalPoints)
	}

	// A 5-point warning crosses the mute threshold at 8.
	d := applyRecord(u, 5, rules, now)
	if d == nil || d.Action != policy.ActionMute {
		t.Fatalf("expected mute at total 8, got %+v", d)
	}
	if d.ExpiresAt == nil || !d.ExpiresAt.Equal(now.Add(240*time.Minute)) {
		t.Fatalf("wrong mute expiry: %v", d.ExpiresAt)
	}
	if !u.IsMuted || u.IsBanned {
		t.Fatalf("expected muted, not banned: %+v", u)
	}

	// A 3-point warning crosses the ban threshold at 11. The standing
	// mute stays on the record.
	d = applyRecord(u, 3, rules, now)
	if d == nil || d.Action != policy.ActionBan {
		t.Fatalf("expected ban at total 11, got %+v", d)
	}
	if !u.IsBanned || !u.IsMuted {
		t.Fatalf("ban must not clear the mute: %+v", u)
	}
	if u.TotalPoints != 11 {
		t.Fatalf("expected total 11, got %d", u.TotalPoints)
	}
}

func TestApplyRecordAlreadyBanned(t *testing.T) {
	now := time.Now()
	u := &member.User{DiscordID: "1002", TotalPoints: 11, IsBanned: true}

	if d := applyRecord(u, 2, testRules(), now); d != nil {
		t.Fatalf("banned user must not be punished again, got %+v", d)
	}
	if u.TotalPoints != 13 {
		t.Fatalf("points must still accumulate, got %d", u.TotalPoints)
	}
}

func TestApplyRecordActiveMuteNotRefreshed(t *testing.T) {
	now := time.Now()
	u := &member.User{
		DiscordID:     "1003",
		TotalPoints:   5,
		IsMuted:       true,
		MuteExpiresAt: sql.NullTime{Time: now.Add(time.Hour), Valid: true},
	}

	if d := applyRecord(u, 1, testRules(), now); d != nil {
		t.Fatalf("active mute must not be refreshed, got %+v", d)
	}
	if !u.MuteExpiresAt.Time.Equal(now.Add(time.Hour)) {
		t.Fatal("mute expiry changed")
	}
}

func TestApplyRecordExpiredMuteRemutes(t *testing.T) {
	now := time.Now()
	u := &member.User{
		DiscordID:     "1004",
		TotalPoints:   5,
		IsMuted:       true,
		MuteExpiresAt: sql.NullTime{Time: now.Add(-time.Hour), Valid: true},
	}

	d := applyRecord(u, 1, testRules(), now)
	if d == nil || d.Action != policy.ActionMute {
		t.Fatalf("expected fresh mute after expiry, got %+v", d)
	}
	if !u.MuteExpiresAt.Time.Equal(now.Add(240 * time.Minute)) {
		t.Fatalf("wrong new expiry: %v", u.MuteExpiresAt.Time)
	}
}

func TestApplyIgnoreLiftsBanKeepsMute(t *testing.T) {
	u := &member.User{
		DiscordID:     "1005",
		TotalPoints:   11,
		IsBanned:      true,
		IsMuted:       true,
		MuteExpiresAt: sql.NullTime{Time: time.Now().Add(time.Hour), Valid: true},
	}

	// Dropping 3 points lands at 8: ban no longer justified, mute still is.
	rev := applyIgnore(u, 3, testRules())
	if !rev.Unban || rev.Unmute {
		t.Fatalf("expected unban only, got %+v", rev)
	}
	if u.IsBanned {
		t.Fatal("ban not cleared")
	}
	if !u.IsMuted {
		t.Fatal("mute must survive, its threshold is still met")
	}
	if u.TotalPoints != 8 {
		t.Fatalf("expected total 8, got %d", u.TotalPoints)
	}
}

func TestApplyIgnoreNeverGrants(t *testing.T) {
	// Total drops from 12 to 7 which is above the mute threshold, but the
	// user was never muted. Ignore removes punishments only.
	u := &member.User{DiscordID: "1006", TotalPoints: 12, IsBanned: true}

	rev := applyIgnore(u, 5, testRules())
	if !rev.Unban {
		t.Fatal("expected ban lifted at total 7")
	}
	if u.IsMuted {
		t.Fatal("ignore must never grant a mute")
	}
}

func TestApplyIgnoreBelowAllThresholds(t *testing.T) {
	u := &member.User{
		DiscordID:     "1007",
		TotalPoints:   8,
		IsMuted:       true,
		MuteExpiresAt: sql.NullTime{Time: time.Now().Add(time.Hour), Valid: true},
	}

	rev := applyIgnore(u, 5, testRules())
	if !rev.Unmute {
		t.Fatal("expected mute lifted at total 3")
	}
	if u.IsMuted || u.MuteExpiresAt.Valid {
		t.Fatalf("mute state not cleared: %+v", u)
	}
}

func TestApplyRecalculateGrantsAndRevokes(t *testing.T) {
	now := time.Now()

	// Policy changed under a muted user: mute rule removed, ban at 8.
	newRules := []*policy.PunishmentRule{
		{Action: policy.ActionBan, PointThreshold: 8, IsActive: true},
	}
	u := &member.User{
		DiscordID:     "1008",
		TotalPoints:   8,
		IsMuted:       true,
		MuteExpiresAt: sql.NullTime{Time: now.Add(time.Hour), Valid: true},
	}

	decisions, rev := applyRecalculate(u, 8, newRules, now)
	if len(decisions) != 1 || decisions[0].Action != policy.ActionBan {
		t.Fatalf("expected one ban decision, got %+v", decisions)
	}
	if !rev.Unmute || rev.Unban {
		t.Fatalf("expected mute revoked, got %+v", rev)
	}
	if !u.IsBanned || u.IsMuted {
		t.Fatalf("wrong status after recalculate: %+v", u)
	}
}

func TestApplyRecalculateCorrectsTotal(t *testing.T) {
	now := time.Now()
	u := &member.User{DiscordID: "1009", TotalPoints: 99, IsBanned: true}

	decisions, rev := applyRecalculate(u, 2, testRules(), now)
	if len(decisions) != 0 {
		t.Fatalf("no punishment expected at total 2, got %+v", decisions)
	}
	if !rev.Unban {
		t.Fatal("expected ban revoked")
	}
	if u.TotalPoints != 2 {
		t.Fatalf("expected total 2, got %d", u.TotalPoints)
	}
}

func TestApplyReset(t *testing.T) {
	u := &member.User{
		DiscordID:     "1010",
		TotalPoints:   11,
		IsBanned:      true,
		IsMuted:       true,
		MuteExpiresAt: sql.NullTime{Time: time.Now().Add(time.Hour), Valid: true},
	}

	rev := applyReset(u)
	if !rev.Unban || !rev.Unmute {
		t.Fatalf("expected both punishments lifted, got %+v", rev)
	}
	if u.TotalPoints != 0 || u.IsBanned || u.IsMuted || u.MuteExpiresAt.Valid {
		t.Fatalf("state not cleared: %+v", u)
	}
}
