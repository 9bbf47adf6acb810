package season

import (
	"time"

	"github.com/okian/rally/internal/domain/contestant"
)

// Report summarizes one completed season.
type Report struct {
	ID                 string                `json:"id"`
	Seed               uint64                `json:"seed"`
	Rounds             int                   `json:"rounds"`
	Played             int                   `json:"played"`
	SkippedSelf        int                   `json:"skipped_self"`
	SkippedNoOpponent  int                   `json:"skipped_no_opponent"`
	Injected           int                   `json:"injected"`
	ColdStartFallbacks int                   `json:"coldstart_fallbacks"`
	ByGranularity      map[string]int        `json:"by_granularity"`
	Duration           time.Duration         `json:"duration"`
	Contestants        []contestant.Snapshot `json:"contestants"`

	pool *contestant.Pool
}

// Pool returns the final pool. Callers that go on simulating (the audit)
// must work on clones.
func (r *Report) Pool() *contestant.Pool {
	return r.pool
}

// Skipped is the number of rounds that produced no match.
func (r *Report) Skipped() int {
	return r.SkippedSelf + r.SkippedNoOpponent
}
