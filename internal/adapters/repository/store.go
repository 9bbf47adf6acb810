// Package repository keeps the final standings of simulated seasons.
package repository

import (
	"context"

	"github.com/okian/rally/internal/domain/contestant"
	"github.com/okian/rally/internal/season"
)

// Entry is one row of a season's standings.
type Entry struct {
	Rank       int                 `json:"rank"`
	Season     string              `json:"season"`
	Contestant contestant.Snapshot `json:"contestant"`
}

// Store provides read/write access to season standings.
type Store interface {
	// Save stores rep and replaces any standings already kept for rep.ID.
	Save(ctx context.Context, rep *season.Report) error

	// Report returns the stored report of a season.
	Report(ctx context.Context, seasonID string) (*season.Report, error)

	// Rank returns a contestant's row. Returns ErrNotFound if the
	// contestant is not part of the season.
	Rank(ctx context.Context, seasonID string, id contestant.ID) (Entry, error)

	// TopN returns the first n rows ordered by rating desc, then ID asc.
	TopN(ctx context.Context, seasonID string, n int) ([]Entry, error)

	// Count returns the number of contestants in a season.
	Count(ctx context.Context, seasonID string) (int, error)

	// Seasons lists stored season IDs, oldest first.
	Seasons(ctx context.Context) []string
}
