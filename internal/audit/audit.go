// Package audit measures how well ratings predict results: for each pair it
// compares the Elo expected score with the share of full matches actually
// won over repeated trials.
package audit

import (
	"fmt"
	"math"

	"github.com/okian/rally/internal/domain/contestant"
	"github.com/okian/rally/internal/domain/match"
	"github.com/okian/rally/internal/domain/rating"
	"github.com/okian/rally/internal/domain/scoring"
	"github.com/okian/rally/pkg/metrics"
)

const defaultMinMatches = 6

// Source is the randomness the trial matches draw from.
type Source interface {
	IntN(n int) int
}

// Pair is the comparison for one ordered pair of contestants.
type Pair struct {
	A        contestant.ID `json:"a"`
	B        contestant.ID `json:"b"`
	Trials   int           `json:"trials"`
	Expected float64       `json:"expected"`
	Observed float64       `json:"observed"`
}

// Error is expected minus observed win share for A.
func (p Pair) Error() float64 {
	return p.Expected - p.Observed
}

// Summary aggregates every audited pair.
type Summary struct {
	Pairs        []Pair  `json:"pairs"`
	MeanAbsError float64 `json:"mean_abs_error"`
	MaxAbsError  float64 `json:"max_abs_error"`
}

// Option applies a configuration option to the Comparator.
type Option func(*Comparator)

// WithMinMatches only audits contestants that played at least n matches.
func WithMinMatches(n int) Option {
	return func(c *Comparator) {
		if n >= 0 {
			c.minMatches = n
		}
	}
}

// Comparator plays trial matches on clones, so audited contestants are
// never changed.
type Comparator struct {
	scorer     *scoring.Scorer
	minMatches int
}

// NewComparator creates a Comparator drawing from src.
func NewComparator(src Source, opts ...Option) *Comparator {
	c := &Comparator{
		scorer:     scoring.NewScorer(match.NewSimulator(src), src),
		minMatches: defaultMinMatches,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compare plays trials full matches between copies of a and b.
func (c *Comparator) Compare(a, b *contestant.Contestant, trials int) (Pair, error) {
	if trials <= 0 {
		return Pair{}, fmt.Errorf("%w: %d", ErrInvalidTrials, trials)
	}
	ca, cb := a.Clone(), b.Clone()

	var won float64
	for range trials {
		won += c.scorer.Score(ca, cb, scoring.Match).Score
	}
	return Pair{
		A:        a.ID,
		B:        b.ID,
		Trials:   trials,
		Expected: rating.ExpectedScore(a.Rating, b.Rating),
		Observed: won / float64(trials),
	}, nil
}

// Audit compares every pair i<j of the eligible members.
func (c *Comparator) Audit(members []*contestant.Contestant, trials int) (Summary, error) {
	if trials <= 0 {
		return Summary{}, fmt.Errorf("%w: %d", ErrInvalidTrials, trials)
	}
	eligible := make([]*contestant.Contestant, 0, len(members))
	for _, m := range members {
		if m.MatchesPlayed() >= c.minMatches {
			eligible = append(eligible, m)
		}
	}

	var sum Summary
	var total float64
	for i := range eligible {
		for j := i + 1; j < len(eligible); j++ {
			p, err := c.Compare(eligible[i], eligible[j], trials)
			if err != nil {
				return Summary{}, err
			}
			e := math.Abs(p.Error())
			total += e
			sum.MaxAbsError = math.Max(sum.MaxAbsError, e)
			sum.Pairs = append(sum.Pairs, p)
			metrics.RecordAuditError(e)
		}
	}
	if len(sum.Pairs) > 0 {
		sum.MeanAbsError = total / float64(len(sum.Pairs))
	}
	return sum, nil
}

// WinRates returns the match win share of every contestant with at least
// minMatches matches played.
func WinRates(snaps []contestant.Snapshot, minMatches int) []float64 {
	var out []float64
	for _, s := range snaps {
		played := s.MatchesWon + s.MatchesLost
		if played == 0 || played < minMatches {
			continue
		}
		out = append(out, float64(s.MatchesWon)/float64(played))
	}
	return out
}
