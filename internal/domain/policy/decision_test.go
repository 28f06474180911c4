package policy_test

import (
	"database/sql"
	"testing"

	"github.com/modwarden/warden-api/internal/domain/policy"
)

func mute(threshold int, minutes int64) *policy.PunishmentRule {
	return &policy.PunishmentRule{
		Action:         policy.ActionMute,
		PointThreshold: threshold,
		DurationMin:    sql.NullInt64{Int64: minutes, Valid: true},
		IsActive:       true,
	}
}

func ban(threshold int) *policy.PunishmentRule {
	return &policy.PunishmentRule{
		Action:         policy.ActionBan,
		PointThreshold: threshold,
		IsActive:       true,
	}
}

func TestApplicablePicksHighestMetThreshold(t *testing.T) {
	rules := []*policy.PunishmentRule{mute(5, 60), ban(10)}

	got := policy.Applicable(rules, 7)
	if got == nil || got.Action != policy.ActionMute {
		t.Fatalf("expected mute at total 7, got %+v", got)
	}

	got = policy.Applicable(rules, 12)
	if got == nil || got.Action != policy.ActionBan {
		t.Fatalf("expected ban at total 12, got %+v", got)
	}
}

func TestApplicableNoRuleMet(t *testing.T) {
	rules := []*policy.PunishmentRule{mute(5, 60), ban(10)}

	if got := policy.Applicable(rules, 4); got != nil {
		t.Fatalf("expected no rule at total 4, got %+v", got)
	}
}

func TestApplicableExactThresholdWinsOverLower(t *testing.T) {
	// At exactly 10 the ban threshold is met; the mute at 5 must not win
	// regardless of slice order.
	forward := []*policy.PunishmentRule{mute(5, 60), ban(10)}
	backward := []*policy.PunishmentRule{ban(10), mute(5, 60)}

	for _, rules := range [][]*policy.PunishmentRule{forward, backward} {
		got := policy.Applicable(rules, 10)
		if got == nil || got.Action != policy.ActionBan {
			t.Fatalf("expected ban at total 10, got %+v", got)
		}
	}
}

func TestApplicableEqualThresholdBanOutranksMute(t *testing.T) {
	forward := []*policy.PunishmentRule{mute(10, 60), ban(10)}
	backward := []*policy.PunishmentRule{ban(10), mute(10, 60)}

	for _, rules := range [][]*policy.PunishmentRule{forward, backward} {
		got := policy.Applicable(rules, 10)
		if got == nil || got.Action != policy.ActionBan {
			t.Fatalf("expected ban to win equal-threshold tie, got %+v", got)
		}
	}
}

func TestApplicableSkipsInactiveRules(t *testing.T) {
	disabled := ban(10)
	disabled.IsActive = false
	rules := []*policy.PunishmentRule{mute(5, 60), disabled}

	got := policy.Applicable(rules, 12)
	if got == nil || got.Action != policy.ActionMute {
		t.Fatalf("expected inactive ban to be skipped, got %+v", got)
	}
}

func TestJustifies(t *testing.T) {
	rules := []*policy.PunishmentRule{mute(5, 60), ban(10)}

	if !policy.Justifies(rules, policy.ActionMute, 5) {
		t.Fatal("expected mute to be justified at total 5")
	}
	if policy.Justifies(rules, policy.ActionBan, 9) {
		t.Fatal("ban must not be justified at total 9")
	}
	if policy.Justifies(rules, policy.ActionMute, 4) {
		t.Fatal("mute must not be justified at total 4")
	}
}

func TestStrictest(t *testing.T) {
	rules := []*policy.PunishmentRule{mute(5, 60), mute(8, 240), ban(10)}

	got := policy.Strictest(rules, policy.ActionMute, 9)
	if got == nil || got.PointThreshold != 8 {
		t.Fatalf("expected the 8-point mute, got %+v", got)
	}

	if got := policy.Strictest(rules, policy.ActionBan, 9); got != nil {
		t.Fatalf("expected no ban rule at total 9, got %+v", got)
	}
}
