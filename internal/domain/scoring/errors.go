package scoring

import "errors"

var (
	// ErrUnknownLevel means the classifier reported a level name no
	// configured warning level matches. The pipeline treats it as no
	// violation and logs a configuration anomaly.
	ErrUnknownLevel = errors.New("unknown warning level name")

	ErrWarningNotFound       = errors.New("warning not found")
	ErrWarningAlreadyIgnored = errors.New("warning is already ignored")
)
