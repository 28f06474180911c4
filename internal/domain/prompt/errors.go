package prompt

import "errors"

var (
	ErrTemplateNotFound = errors.New("prompt template not found")
	ErrNoActiveTemplate = errors.New("no active prompt template configured")
)
