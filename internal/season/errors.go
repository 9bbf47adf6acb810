package season

import "errors"

// Sentinel kinds for season errors.
var (
	ErrInvalidConfig = errors.New("invalid season config")
	ErrCancelled     = errors.New("season cancelled")
)
