package policy

import "errors"

var (
	ErrRuleNotFound    = errors.New("punishment rule not found")
	ErrMuteNeedsLength = errors.New("mute rule requires a duration")
)
