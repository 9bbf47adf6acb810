// Package scoring turns one simulated match into a continuous score in
// [0, 1] for the first contestant, blending the match result with set, game
// and point shares according to a granularity mode.
package scoring

import (
	"math"

	"github.com/okian/rally/internal/domain/contestant"
	"github.com/okian/rally/internal/domain/match"
)

// Source picks random granularities.
type Source interface {
	IntN(n int) int
}

// weights blends match result, set share, game share and point share.
type weights struct {
	result, sets, games, points float64
}

var table = [...]weights{
	Match: {result: 1},
	Set:   {result: 0.3, sets: 0.7},
	Game:  {result: 0.2, sets: 0.3, games: 0.5},
	Point: {result: 0.1, sets: 0.2, games: 0.3, points: 0.4},
}

// Result is the outcome of scoring one match.
type Result struct {
	Granularity Granularity
	// Score is contestant A's score; B's is 1 - Score.
	Score       float64
	Match       match.Result
}

// Scorer plays a match and scores it.
type Scorer struct {
	sim *match.Simulator
	src Source
}

// NewScorer creates a Scorer. src is only used by Random and ScoreAny.
func NewScorer(sim *match.Simulator, src Source) *Scorer {
	return &Scorer{sim: sim, src: src}
}

// Random draws one of the four granularities uniformly.
func (s *Scorer) Random() Granularity {
	return Granularity(s.src.IntN(len(table)))
}

// ScoreAny scores a match under a uniformly drawn granularity.
func (s *Scorer) ScoreAny(a, b *contestant.Contestant) Result {
	return s.Score(a, b, s.Random())
}

// Score plays one full match between a and b and scores it for a using only
// the tallies accrued during this call. An invalid g is treated as Match.
func (s *Scorer) Score(a, b *contestant.Contestant, g Granularity) Result {
	if !g.Valid() {
		g = Match
	}
	beforeA, beforeB := a.Tally(), b.Tally()

	res := s.sim.ResolveMatch(a, b)

	afterA, afterB := a.Tally(), b.Tally()
	setsA := afterA.SetsWon - beforeA.SetsWon
	gamesA := afterA.GamesWon - beforeA.GamesWon
	pointsA := afterA.PointsWon - beforeA.PointsWon
	totalSets := setsA + afterB.SetsWon - beforeB.SetsWon
	totalGames := gamesA + afterB.GamesWon - beforeB.GamesWon
	totalPoints := pointsA + afterB.PointsWon - beforeB.PointsWon

	var won float64
	if res.Winner == match.SideA {
		won = 1
	}

	w := table[g]
	score := w.result * won
	if w.sets != 0 {
		score += w.sets * share(setsA, totalSets)
	}
	if w.games != 0 {
		score += w.games * share(gamesA, totalGames)
	}
	if w.points != 0 {
		score += w.points * share(pointsA, totalPoints)
	}

	return Result{
		Granularity: g,
		Score:       math.Max(0, math.Min(1, score)),
		Match:       res,
	}
}

// share is part/total; a completed match always has a positive total.
func share(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total)
}
