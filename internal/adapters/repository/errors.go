package repository

import "errors"

// Sentinel kinds for standings errors.
var (
	ErrNotFound       = errors.New("contestant not found")
	ErrSeasonNotFound = errors.New("season not found")
	ErrInvalidLimit   = errors.New("invalid standings limit")
	ErrInvalidReport  = errors.New("invalid season report")
)
