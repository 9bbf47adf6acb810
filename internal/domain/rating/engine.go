package rating

import (
	"fmt"
	"strings"

	"github.com/okian/rally/internal/domain/contestant"
	"github.com/okian/rally/internal/domain/scoring"
)

// Default engine configuration constants.
const (
	defaultNewThreshold          = 5
	defaultNewMultiplier         = 2.0
	defaultExperiencedMultiplier = 0.5
)

// KTable holds the K-factor for each granularity, indexed by scoring.Granularity.
type KTable [4]float64

// DefaultKTable grows K with granularity: finer scores carry more signal.
func DefaultKTable() KTable {
	return KTable{
		scoring.Match: 24,
		scoring.Set:   28,
		scoring.Game:  36,
		scoring.Point: 48,
	}
}

// K returns the factor for g, falling back to the Match factor.
func (t KTable) K(g scoring.Granularity) float64 {
	if !g.Valid() {
		return t[scoring.Match]
	}
	return t[g]
}

// KTableFromMap builds a table from granularity names. Every mode must be
// present with a positive factor.
func KTableFromMap(m map[string]float64) (KTable, error) {
	var t KTable
	seen := 0
	for name, k := range m {
		g, err := scoring.ParseGranularity(name)
		if err != nil {
			return KTable{}, fmt.Errorf("%w: %w", ErrInvalidKTable, err)
		}
		if k <= 0 {
			return KTable{}, fmt.Errorf("%w: %s factor %v must be positive", ErrInvalidKTable, strings.ToLower(name), k)
		}
		t[g] = k
		seen++
	}
	if seen != len(t) {
		return KTable{}, fmt.Errorf("%w: want %d modes, got %d", ErrInvalidKTable, len(t), seen)
	}
	return t, nil
}

// Multipliers scale updates when exactly one side is new.
type Multipliers struct {
	New         float64
	Experienced float64
}

// DefaultMultipliers returns the 2.0 / 0.5 pair.
func DefaultMultipliers() Multipliers {
	return Multipliers{New: defaultNewMultiplier, Experienced: defaultExperiencedMultiplier}
}

// For returns the multipliers of a and b. They only differ from 1 when
// exactly one side is new.
func (m Multipliers) For(aNew, bNew bool) (float64, float64) {
	switch {
	case aNew && !bNew:
		return m.New, m.Experienced
	case bNew && !aNew:
		return m.Experienced, m.New
	default:
		return 1, 1
	}
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithKTable sets the K-factor table.
func WithKTable(t KTable) Option {
	return func(e *Engine) {
		e.k = t
	}
}

// WithMultipliers sets the new/experienced multipliers.
func WithMultipliers(m Multipliers) Option {
	return func(e *Engine) {
		if m.New > 0 && m.Experienced > 0 {
			e.mult = m
		}
	}
}

// WithNewThreshold sets how many recorded matches make a contestant experienced.
func WithNewThreshold(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.newThreshold = n
		}
	}
}

// WithCountContinuous controls whether matches scored at Set, Game or Point
// granularity count toward experience. Match granularity always counts.
func WithCountContinuous(count bool) Option {
	return func(e *Engine) {
		e.countContinuous = count
	}
}

// Engine applies rating changes after scored matches.
type Engine struct {
	k               KTable
	mult            Multipliers
	newThreshold    int
	countContinuous bool
}

// NewEngine creates an Engine with the default table, multipliers and threshold.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		k:               DefaultKTable(),
		mult:            DefaultMultipliers(),
		newThreshold:    defaultNewThreshold,
		countContinuous: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsNew reports whether c has fewer recorded matches than the threshold.
func (e *Engine) IsNew(c *contestant.Contestant) bool {
	return c.Recorded() < e.newThreshold
}

// Change describes one applied match.
type Change struct {
	K         float64
	ExpectedA float64
	ExpectedB float64
	MultA     float64
	MultB     float64
	DeltaA    float64
	DeltaB    float64
}

// Apply updates both ratings from a scored match. Expectations and
// new-contestant status are taken before either rating changes.
func (e *Engine) Apply(a, b *contestant.Contestant, res scoring.Result) Change {
	ch := Change{
		K:         e.k.K(res.Granularity),
		ExpectedA: ExpectedScore(a.Rating, b.Rating),
		ExpectedB: ExpectedScore(b.Rating, a.Rating),
	}
	ch.MultA, ch.MultB = e.mult.For(e.IsNew(a), e.IsNew(b))

	ch.DeltaA = Update(a, ch.ExpectedA, res.Score, ch.K, ch.MultA)
	ch.DeltaB = Update(b, ch.ExpectedB, 1-res.Score, ch.K, ch.MultB)

	if res.Granularity == scoring.Match || e.countContinuous {
		a.MarkRecorded()
		b.MarkRecorded()
	}
	return ch
}
