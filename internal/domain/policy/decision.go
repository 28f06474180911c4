package policy

import "sort"

// Applicable returns the punishment rule that applies at the given point
// total: active rules are ordered by threshold descending and the first
// rule whose threshold is met wins. Overlapping thresholds therefore
// resolve to the highest threshold, never to insertion order. Returns nil
// when no active rule's threshold is met.
func Applicable(rules []*PunishmentRule, total int) *PunishmentRule {
	ordered := make([]*PunishmentRule, 0, len(rules))
	for _, rule := range rules {
		if rule.IsActive {
			ordered = append(ordered, rule)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].PointThreshold != ordered[j].PointThreshold {
			return ordered[i].PointThreshold > ordered[j].PointThreshold
		}
		// Equal thresholds: a ban outranks a mute.
		return ordered[i].Action == ActionBan && ordered[j].Action != ActionBan
	})

	for _, rule := range ordered {
		if rule.PointThreshold <= total {
			return rule
		}
	}
	return nil
}

// Justifies reports whether any active rule of the given action has a
// threshold met by the total. Used by reversal paths to decide whether a
// standing ban or mute is still warranted.
func Justifies(rules []*PunishmentRule, action Action, total int) bool {
	for _, rule := range rules {
		if rule.IsActive && rule.Action == action && rule.PointThreshold <= total {
			return true
		}
	}
	return false
}

// Strictest returns the active rule of the given action with the highest
// met threshold, or nil. Recalculation uses it to re-derive each status
// independently from the current rule set.
func Strictest(rules []*PunishmentRule, action Action, total int) *PunishmentRule {
	var best *PunishmentRule
	for _, rule := range rules {
		if !rule.IsActive || rule.Action != action || rule.PointThreshold > total {
			continue
		}
		if best == nil || rule.PointThreshold > best.PointThreshold {
			best = rule
		}
	}
	return best
}
