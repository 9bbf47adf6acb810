package audit

import "errors"

// Sentinel kinds for audit errors.
var (
	ErrInvalidTrials = errors.New("trials must be positive")
)
