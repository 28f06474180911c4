package catalog

import "errors"

var (
	// Level errors
	ErrLevelNotFound  = errors.New("warning level not found")
	ErrLevelNameTaken = errors.New("warning level name already taken")
	ErrLevelInUse     = errors.New("warning level is referenced by warnings")

	// Rule errors
	ErrRuleNotFound = errors.New("rule not found")
)
