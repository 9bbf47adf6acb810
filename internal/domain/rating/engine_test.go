package rating_test

import (
	"errors"
	"testing"

	"github.com/okian/rally/internal/domain/contestant"
	"github.com/okian/rally/internal/domain/match"
	"github.com/okian/rally/internal/domain/rating"
	"github.com/okian/rally/internal/domain/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withRecorded(t *testing.T, id contestant.ID, r float64, n int) *contestant.Contestant {
	t.Helper()
	c, err := contestant.New(id, "", 45, 4.5)
	require.NoError(t, err)
	c.Rating = r
	for range n {
		c.MarkRecorded()
	}
	return c
}

func TestKTable(t *testing.T) {
	k := rating.DefaultKTable()
	assert.Equal(t, 24.0, k.K(scoring.Match))
	assert.Equal(t, 28.0, k.K(scoring.Set))
	assert.Equal(t, 36.0, k.K(scoring.Game))
	assert.Equal(t, 48.0, k.K(scoring.Point))
	assert.Equal(t, 24.0, k.K(scoring.Granularity(42)))

	got, err := rating.KTableFromMap(map[string]float64{"match": 10, "set": 20, "Game": 30, "point": 40})
	require.NoError(t, err)
	assert.Equal(t, rating.KTable{10, 20, 30, 40}, got)

	tests := []struct {
		name string
		in   map[string]float64
	}{
		{name: "missing mode", in: map[string]float64{"match": 10, "set": 20, "game": 30}},
		{name: "unknown mode", in: map[string]float64{"match": 10, "set": 20, "game": 30, "rally": 40}},
		{name: "zero factor", in: map[string]float64{"match": 0, "set": 20, "game": 30, "point": 40}},
		{name: "empty", in: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rating.KTableFromMap(tt.in)
			assert.True(t, errors.Is(err, rating.ErrInvalidKTable))
		})
	}
}

func TestMultipliers(t *testing.T) {
	m := rating.DefaultMultipliers()
	tests := []struct {
		name       string
		aNew, bNew bool
		wantA      float64
		wantB      float64
	}{
		{name: "a new", aNew: true, wantA: 2, wantB: 0.5},
		{name: "b new", bNew: true, wantA: 0.5, wantB: 2},
		{name: "both new", aNew: true, bNew: true, wantA: 1, wantB: 1},
		{name: "neither new", wantA: 1, wantB: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := m.For(tt.aNew, tt.bNew)
			assert.Equal(t, tt.wantA, a)
			assert.Equal(t, tt.wantB, b)
		})
	}
}

func TestEngine_Apply(t *testing.T) {
	engine := rating.NewEngine()

	t.Run("experienced pair at equal rating", func(t *testing.T) {
		a := withRecorded(t, 0, 1000, 10)
		b := withRecorded(t, 1, 1000, 10)
		ch := engine.Apply(a, b, scoring.Result{Granularity: scoring.Match, Score: 1, Match: match.Result{Winner: match.SideA}})

		assert.Equal(t, 24.0, ch.K)
		assert.Equal(t, 1012.0, a.Rating)
		assert.Equal(t, 988.0, b.Rating)
		assert.Equal(t, 11, a.Recorded())
		assert.Equal(t, 11, b.Recorded())
	})

	t.Run("newcomer against experienced", func(t *testing.T) {
		a := withRecorded(t, 0, 1000, 0)
		b := withRecorded(t, 1, 1000, 5)
		ch := engine.Apply(a, b, scoring.Result{Granularity: scoring.Point, Score: 1})

		assert.Equal(t, 2.0, ch.MultA)
		assert.Equal(t, 0.5, ch.MultB)
		assert.Equal(t, 1000+48*0.5*2.0, a.Rating)
		assert.Equal(t, 1000-48*0.5*0.5, b.Rating)
	})

	t.Run("expectations use pre-match ratings", func(t *testing.T) {
		a := withRecorded(t, 0, 1200, 10)
		b := withRecorded(t, 1, 1000, 10)
		ch := engine.Apply(a, b, scoring.Result{Granularity: scoring.Set, Score: 0.3})

		assert.Equal(t, rating.ExpectedScore(1200, 1000), ch.ExpectedA)
		assert.Equal(t, rating.ExpectedScore(1000, 1200), ch.ExpectedB)
		assert.InDelta(t, 0, ch.DeltaA+ch.DeltaB, 1e-9)
	})

	t.Run("continuous matches can be excluded from experience", func(t *testing.T) {
		strict := rating.NewEngine(rating.WithCountContinuous(false))
		a := withRecorded(t, 0, 1000, 0)
		b := withRecorded(t, 1, 1000, 0)

		strict.Apply(a, b, scoring.Result{Granularity: scoring.Game, Score: 0.6})
		assert.Equal(t, 0, a.Recorded())
		strict.Apply(a, b, scoring.Result{Granularity: scoring.Match, Score: 0})
		assert.Equal(t, 1, a.Recorded())
		assert.Equal(t, 1, b.Recorded())
	})

	t.Run("options", func(t *testing.T) {
		e := rating.NewEngine(
			rating.WithNewThreshold(2),
			rating.WithKTable(rating.KTable{1, 2, 3, 4}),
			rating.WithMultipliers(rating.Multipliers{New: 3, Experienced: 0.25}),
		)
		a := withRecorded(t, 0, 1000, 1)
		b := withRecorded(t, 1, 1000, 2)
		assert.True(t, e.IsNew(a))
		assert.False(t, e.IsNew(b))

		ch := e.Apply(a, b, scoring.Result{Granularity: scoring.Point, Score: 1})
		assert.Equal(t, 4.0, ch.K)
		assert.Equal(t, 3.0, ch.MultA)
		assert.Equal(t, 0.25, ch.MultB)
	})
}
