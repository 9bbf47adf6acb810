package repository

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/okian/rally/internal/domain/contestant"
	"github.com/okian/rally/internal/season"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: rating DESC, then contestant ID ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the standings
// from best to worst. Subtree sizes give ranks in O(log n).

type node struct {
	id     contestant.ID
	rating float64
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aRating, aID) ranks before (bRating, bID).
func less(aRating float64, aID contestant.ID, bRating float64, bID contestant.ID) bool {
	if aRating != bRating {
		return aRating > bRating
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id contestant.ID, rating float64, prio uint64) *node {
	if n == nil {
		return &node{id: id, rating: rating, prio: prio, size: 1}
	}
	if less(rating, id, n.rating, n.id) {
		n.left = insert(n.left, id, rating, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, rating, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// position returns the 0-based rank of (rating, id), which must be present.
func position(n *node, id contestant.ID, rating float64) int {
	pos := 0
	for n != nil {
		switch {
		case n.id == id:
			return pos + nsize(n.left)
		case less(rating, id, n.rating, n.id):
			n = n.left
		default:
			pos += nsize(n.left) + 1
			n = n.right
		}
	}
	return -1
}

// collectTopN appends up to limit ids in rank order.
func collectTopN(n *node, limit int, out *[]contestant.ID) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.id)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// standings is one season's ranked table.
type standings struct {
	report *season.Report
	root   *node
	byID   map[contestant.ID]contestant.Snapshot
}

func newStandings(rep *season.Report, rng *rand.Rand) *standings {
	st := &standings{
		report: rep,
		byID:   make(map[contestant.ID]contestant.Snapshot, len(rep.Contestants)),
	}
	for _, c := range rep.Contestants {
		st.byID[c.ID] = c
		st.root = insert(st.root, c.ID, c.Rating, rng.Uint64())
	}
	return st
}

func (st *standings) entry(seasonID string, id contestant.ID, rank int) Entry {
	return Entry{Rank: rank, Season: seasonID, Contestant: st.byID[id]}
}

var _ Store = (*TreapStore)(nil)

// TreapStore keeps standings for many seasons.
type TreapStore struct {
	mu        sync.RWMutex
	seasons   map[string]*standings
	order     []string
	retention int
	rng       *rand.Rand
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		seasons: make(map[string]*standings),
		rng:     rand.New(rand.NewPCG(1, 2)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save implements Store.Save in O(n log n) expected time.
func (s *TreapStore) Save(_ context.Context, rep *season.Report) error {
	if rep == nil || rep.ID == "" {
		return ErrInvalidReport
	}
	seen := make(map[contestant.ID]struct{}, len(rep.Contestants))
	for _, c := range rep.Contestants {
		if math.IsNaN(c.Rating) {
			return fmt.Errorf("%w: contestant %s has no rating", ErrInvalidReport, c.ID)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: duplicate contestant %s", ErrInvalidReport, c.ID)
		}
		seen[c.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seasons[rep.ID]; !ok {
		s.order = append(s.order, rep.ID)
	}
	s.seasons[rep.ID] = newStandings(rep, s.rng)

	for s.retention > 0 && len(s.order) > s.retention {
		delete(s.seasons, s.order[0])
		s.order = s.order[1:]
	}
	return nil
}

// Report implements Store.Report.
func (s *TreapStore) Report(_ context.Context, seasonID string) (*season.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.seasons[seasonID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSeasonNotFound, seasonID)
	}
	return st.report, nil
}

// Rank implements Store.Rank in O(log n) expected time.
func (s *TreapStore) Rank(_ context.Context, seasonID string, id contestant.ID) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.seasons[seasonID]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrSeasonNotFound, seasonID)
	}
	c, ok := st.byID[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s in season %s", ErrNotFound, id, seasonID)
	}
	return st.entry(seasonID, id, position(st.root, id, c.Rating)+1), nil
}

// TopN implements Store.TopN.
func (s *TreapStore) TopN(_ context.Context, seasonID string, n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.seasons[seasonID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSeasonNotFound, seasonID)
	}
	ids := make([]contestant.ID, 0, min(n, len(st.byID)))
	collectTopN(st.root, n, &ids)

	out := make([]Entry, len(ids))
	for i, id := range ids {
		out[i] = st.entry(seasonID, id, i+1)
	}
	return out, nil
}

// Count implements Store.Count.
func (s *TreapStore) Count(_ context.Context, seasonID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.seasons[seasonID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSeasonNotFound, seasonID)
	}
	return nsize(st.root), nil
}

// Seasons implements Store.Seasons.
func (s *TreapStore) Seasons(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
