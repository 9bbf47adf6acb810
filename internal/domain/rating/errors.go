package rating

import "errors"

// Sentinel kinds for rating errors.
var (
	ErrInvalidKTable = errors.New("invalid k-factor table")
)
