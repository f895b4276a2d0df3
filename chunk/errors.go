package chunk

import "errors"

var (
	// ErrCounterRequired is returned when a token counter is not provided.
	ErrCounterRequired = errors.New("token counter required")

	// ErrInvalidConfig is returned when chunking thresholds are inconsistent.
	ErrInvalidConfig = errors.New("invalid chunking config")

	// ErrStreamFailed wraps an element-source error that aborted assembly.
	ErrStreamFailed = errors.New("element stream failed")
)
