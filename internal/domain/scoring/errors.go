package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrUnknownGranularity = errors.New("unknown granularity")
)
