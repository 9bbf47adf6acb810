// Package match simulates play between two contestants: points compose into
// games, games into sets and sets into a best-of-three match.
package match

import (
	"github.com/okian/rally/internal/domain/contestant"
)

// Scoring rules.
const (
	GameTarget = 5 // points needed to take a game
	SetTarget  = 6 // games needed to take a set
	WinBy      = 2
	SetsToWin  = 2
)

// Source supplies the randomness for every point. *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
}

// Side names one of the two participants of a call.
type Side int

const (
	SideA Side = iota
	SideB
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

func (s Side) String() string {
	if s == SideA {
		return "A"
	}
	return "B"
}

// Score is a finished race between two sides, e.g. points in a game.
type Score struct {
	A int
	B int
}

// Winner returns the side with the higher count.
func (s Score) Winner() Side {
	if s.A > s.B {
		return SideA
	}
	return SideB
}

// Margin returns the absolute difference between both sides.
func (s Score) Margin() int {
	if s.A > s.B {
		return s.A - s.B
	}
	return s.B - s.A
}

func (s Score) add(side Side) Score {
	if side == SideA {
		s.A++
	} else {
		s.B++
	}
	return s
}

// Result describes a completed match.
type Result struct {
	Sets   []Score // games per set, in play order
	Winner Side
}

// Simulator resolves play between contestants. It is not safe for
// concurrent use; give every season its own Simulator and Source.
type Simulator struct {
	src Source
}

// NewSimulator creates a Simulator drawing from src.
func NewSimulator(src Source) *Simulator {
	return &Simulator{src: src}
}

// ResolvePoint plays one point. Each side rolls in [0, skill); the higher
// roll wins and an equal roll is decided by a fair coin.
func (s *Simulator) ResolvePoint(a, b *contestant.Contestant) Side {
	ra := s.src.IntN(a.Skill())
	rb := s.src.IntN(b.Skill())

	var w Side
	switch {
	case ra > rb:
		w = SideA
	case rb > ra:
		w = SideB
	case s.src.IntN(2) == 0:
		w = SideA
	default:
		w = SideB
	}
	pick(w, a, b).WinPoint()
	return w
}

// ResolveGame plays points until one side reaches GameTarget with a lead of WinBy.
func (s *Simulator) ResolveGame(a, b *contestant.Contestant) Score {
	sc := race(GameTarget, func() Side { return s.ResolvePoint(a, b) })
	pick(sc.Winner(), a, b).WinGame()
	return sc
}

// ResolveSet plays games until one side reaches SetTarget with a lead of WinBy.
func (s *Simulator) ResolveSet(a, b *contestant.Contestant) Score {
	sc := race(SetTarget, func() Side { return s.ResolveGame(a, b).Winner() })
	pick(sc.Winner(), a, b).WinSet()
	return sc
}

// ResolveMatch plays best of three sets. The third set is only played when
// the first two are split.
func (s *Simulator) ResolveMatch(a, b *contestant.Contestant) Result {
	var res Result
	var won Score
	for won.A < SetsToWin && won.B < SetsToWin {
		set := s.ResolveSet(a, b)
		res.Sets = append(res.Sets, set)
		won = won.add(set.Winner())
	}
	res.Winner = won.Winner()

	pick(res.Winner, a, b).FinishMatch(true)
	pick(res.Winner.Other(), a, b).FinishMatch(false)
	return res
}

// race plays until one side has at least target and leads by WinBy.
func race(target int, play func() Side) Score {
	var sc Score
	for sc.Margin() < WinBy || (sc.A < target && sc.B < target) {
		sc = sc.add(play())
	}
	return sc
}

func pick(side Side, a, b *contestant.Contestant) *contestant.Contestant {
	if side == SideA {
		return a
	}
	return b
}
