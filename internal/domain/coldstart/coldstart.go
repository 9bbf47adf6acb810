// Package coldstart seeds a newcomer's rating from experienced peers whose
// self-assessed survey rating is close to the newcomer's.
package coldstart

import (
	"math"

	"github.com/okian/rally/internal/domain/contestant"
)

// Default estimator configuration constants.
const (
	defaultMinRecorded = 5
	SurveyWindow       = 1.0
	peakWeight         = 2.0
)

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithMinRecorded sets how many recorded matches a peer needs to count.
func WithMinRecorded(n int) Option {
	return func(e *Estimator) {
		if n >= 0 {
			e.minRecorded = n
		}
	}
}

// Estimator infers initial ratings.
type Estimator struct {
	minRecorded int
}

// NewEstimator creates an Estimator requiring five recorded matches per peer.
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{minRecorded: defaultMinRecorded}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weight returns 2 - |survey gap| for an experienced peer within the survey
// window and 0 otherwise.
func (e *Estimator) Weight(peer, newcomer *contestant.Contestant) float64 {
	if peer.ID == newcomer.ID || peer.Recorded() < e.minRecorded {
		return 0
	}
	d := math.Abs(peer.SurveyRating - newcomer.SurveyRating)
	if d > SurveyWindow {
		return 0
	}
	return peakWeight - d
}

// Estimate returns the weighted average rating of similar experienced peers.
// When no peer carries weight it returns the newcomer's current rating and
// false; that is the defined fallback, not a failure.
func (e *Estimator) Estimate(pool []*contestant.Contestant, newcomer *contestant.Contestant) (float64, bool) {
	weights := make([]float64, len(pool))
	var total float64
	for i, p := range pool {
		weights[i] = e.Weight(p, newcomer)
		total += weights[i]
	}
	if total <= 0 {
		return newcomer.Rating, false
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	var est float64
	for i, p := range pool {
		if weights[i] == 0 {
			continue
		}
		est += weights[i] / total * p.Rating
		lo = math.Min(lo, p.Rating)
		hi = math.Max(hi, p.Rating)
	}
	// Normalized weights can drift past the extremes by an ulp.
	return math.Max(lo, math.Min(hi, est)), true
}
