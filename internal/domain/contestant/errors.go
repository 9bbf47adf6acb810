package contestant

import "errors"

// Sentinel kinds for contestant errors.
var (
	ErrInvalidSkill = errors.New("invalid skill")
)
