package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted       = errors.New("league service not started")
	ErrDuplicateSeason  = errors.New("season already submitted")
	ErrAuditUnavailable = errors.New("season has no contestants to audit")
)
