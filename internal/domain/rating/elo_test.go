package rating_test

import (
	"math/rand/v2"
	"testing"

	"github.com/okian/rally/internal/domain/contestant"
	"github.com/okian/rally/internal/domain/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rated(t *testing.T, r float64) *contestant.Contestant {
	t.Helper()
	c, err := contestant.New(0, "", 45, 4.5)
	require.NoError(t, err)
	c.Rating = r
	return c
}

func TestExpectedScore(t *testing.T) {
	tests := []struct {
		name string
		r1   float64
		r2   float64
		want float64
	}{
		{name: "same rating", r1: 1000, r2: 1000, want: 0.5},
		{name: "same negative rating", r1: -250, r2: -250, want: 0.5},
		{name: "400 above", r1: 1400, r2: 1000, want: 10.0 / 11.0},
		{name: "400 below", r1: 1000, r2: 1400, want: 1.0 / 11.0},
		{name: "100 above", r1: 1100, r2: 1000, want: 0.6400649998028851},
		{name: "800 below", r1: 200, r2: 1000, want: 1.0 / 101.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, rating.ExpectedScore(tt.r1, tt.r2), 1e-12)
		})
	}
}

func TestExpectedScore_Complement(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for range 10_000 {
		r1 := rng.Float64()*4000 - 1000
		r2 := rng.Float64()*4000 - 1000
		sum := rating.ExpectedScore(r1, r2) + rating.ExpectedScore(r2, r1)
		require.Equal(t, 1.0, sum, "r1=%v r2=%v", r1, r2)
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name       string
		rating     float64
		opponent   float64
		actual     float64
		k          float64
		multiplier float64
		want       float64
	}{
		{name: "same rating win", rating: 1000, opponent: 1000, actual: 1, k: 32, multiplier: 1, want: 1016},
		{name: "same rating lose", rating: 1000, opponent: 1000, actual: 0, k: 32, multiplier: 1, want: 984},
		{name: "same rating draw", rating: 1000, opponent: 1000, actual: 0.5, k: 32, multiplier: 1, want: 1000},
		{name: "new player win", rating: 1000, opponent: 1000, actual: 1, k: 24, multiplier: 2, want: 1024},
		{name: "experienced player lose", rating: 1000, opponent: 1000, actual: 0, k: 48, multiplier: 0.5, want: 988},
		{name: "top rating win", rating: 1100, opponent: 1000, actual: 1, k: 40, multiplier: 1, want: 1114.397400007885},
		{name: "bottom rating win", rating: 1000, opponent: 1100, actual: 1, k: 40, multiplier: 1, want: 1025.602599992115},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := rated(t, tt.rating)
			expected := rating.ExpectedScore(tt.rating, tt.opponent)
			delta := rating.Update(c, expected, tt.actual, tt.k, tt.multiplier)
			assert.InDelta(t, tt.want, c.Rating, 1e-9)
			assert.InDelta(t, tt.want-tt.rating, delta, 1e-9)
		})
	}
}

func TestUpdate_ExactScenario(t *testing.T) {
	c := rated(t, 1000)
	rating.Update(c, rating.ExpectedScore(1000, 1000), 1.0, 32, 1.0)
	assert.Equal(t, 1016.0, c.Rating)
}

func TestUpdate_NoOpAtExpectation(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for range 1000 {
		r1 := rng.Float64() * 3000
		r2 := rng.Float64() * 3000
		c := rated(t, r1)
		e := rating.ExpectedScore(r1, r2)
		delta := rating.Update(c, e, e, 48, 2)
		require.Zero(t, delta)
		require.Equal(t, r1, c.Rating)
	}
}
