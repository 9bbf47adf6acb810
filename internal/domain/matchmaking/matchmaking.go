// Package matchmaking draws opponents with probability proportional to a
// triangular falloff over rating distance.
package matchmaking

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/rally/internal/domain/contestant"
)

// MaxDistance is the widest rating gap that still carries weight.
const MaxDistance = 300.0

// Source supplies uniform floats in [0, 1).
type Source interface {
	Float64() float64
}

// Weight returns MaxDistance - |ra - rb| inside the window and 0 beyond it.
func Weight(ra, rb float64) float64 {
	d := math.Abs(ra - rb)
	if d > MaxDistance {
		return 0
	}
	return MaxDistance - d
}

// Picker selects opponents. Not safe for concurrent use.
type Picker struct {
	src Source
	cum []float64
}

// NewPicker creates a Picker drawing from src.
func NewPicker(src Source) *Picker {
	return &Picker{src: src}
}

// PickOpponent draws one member of pool weighted by Weight(member.Rating, anchor).
// Nobody is excluded up front, so the caller must compare IDs to detect a
// self-match. Returns ErrNoEligibleOpponent when every weight is zero.
func (p *Picker) PickOpponent(pool []*contestant.Contestant, anchor float64) (*contestant.Contestant, error) {
	p.cum = p.cum[:0]
	var total float64
	for _, c := range pool {
		total += Weight(c.Rating, anchor)
		p.cum = append(p.cum, total)
	}
	if total <= 0 {
		return nil, fmt.Errorf("anchor rating %.1f among %d: %w", anchor, len(pool), ErrNoEligibleOpponent)
	}

	r := p.src.Float64() * total
	i := sort.Search(len(p.cum), func(i int) bool { return p.cum[i] > r })
	if i == len(p.cum) {
		// r rounded up to total; fall back to the last weighted member.
		i = lastWeighted(p.cum)
	}
	return pool[i], nil
}

func lastWeighted(cum []float64) int {
	for i := len(cum) - 1; i > 0; i-- {
		if cum[i] > cum[i-1] {
			return i
		}
	}
	return 0
}
