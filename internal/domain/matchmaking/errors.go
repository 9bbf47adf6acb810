package matchmaking

import "errors"

// Sentinel kinds for matchmaking errors.
var (
	ErrNoEligibleOpponent = errors.New("no eligible opponent")
)
