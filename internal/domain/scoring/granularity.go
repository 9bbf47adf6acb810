package scoring

import (
	"fmt"
	"strings"
)

// Granularity selects how much of a match's detail feeds the score.
type Granularity int

const (
	Match Granularity = iota
	Set
	Game
	Point
)

var names = [...]string{
	Match: "match",
	Set:   "set",
	Game:  "game",
	Point: "point",
}

// Granularities lists every mode from coarsest to finest.
func Granularities() []Granularity {
	return []Granularity{Match, Set, Game, Point}
}

func (g Granularity) String() string {
	if g.Valid() {
		return names[g]
	}
	return fmt.Sprintf("granularity(%d)", int(g))
}

// Valid reports whether g is one of the four modes.
func (g Granularity) Valid() bool {
	return g >= Match && g <= Point
}

// ParseGranularity accepts a mode name, case-insensitive.
func ParseGranularity(s string) (Granularity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if s == name {
			return Granularity(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownGranularity)
}
