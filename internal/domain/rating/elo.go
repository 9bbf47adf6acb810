// Package rating implements the Elo update used by the league: logistic
// expectation, a K-factor per granularity and multipliers that speed up new
// contestants while damping their effect on established ones.
package rating

import (
	"math"

	"github.com/okian/rally/internal/domain/contestant"
)

// Scale is the rating gap that gives 10-to-1 odds.
const Scale = 400.0

// ExpectedScore returns the probability that a contestant rated r1 beats one
// rated r2. ExpectedScore(r1, r2) + ExpectedScore(r2, r1) is exactly 1.
func ExpectedScore(r1, r2 float64) float64 {
	switch {
	case r1 == r2:
		return 0.5
	case r1 < r2:
		return underdog(r2 - r1)
	default:
		return 1 - underdog(r1-r2)
	}
}

// underdog is the expectation of the lower rated side for a positive gap.
func underdog(gap float64) float64 {
	return 1 / (1 + math.Pow(10, gap/Scale))
}

// Update moves c's rating by k * (actual - expected) * multiplier and returns
// the change. expected must be computed before either side is updated.
func Update(c *contestant.Contestant, expected, actual, k, multiplier float64) float64 {
	delta := k * (actual - expected) * multiplier
	c.Rating += delta
	return delta
}
