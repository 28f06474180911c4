package member

import "errors"

var (
	ErrNotFound = errors.New("member not found")
)
