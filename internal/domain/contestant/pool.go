package contestant

// Pool is the arena owning every contestant of one season. Contestants are
// only ever appended; an ID is the contestant's index.
type Pool struct {
	members []*Contestant
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Add creates a contestant with the next free ID and appends it.
func (p *Pool) Add(name string, skill int, survey float64) (*Contestant, error) {
	c, err := New(ID(len(p.members)), name, skill, survey)
	if err != nil {
		return nil, err
	}
	p.members = append(p.members, c)
	return c, nil
}

// Get returns the contestant with the given id.
func (p *Pool) Get(id ID) (*Contestant, bool) {
	if id < 0 || int(id) >= len(p.members) {
		return nil, false
	}
	return p.members[id], true
}

// Len returns the pool size.
func (p *Pool) Len() int { return len(p.members) }

// Members returns the contestants in ID order. The slice is a copy; the
// contestants are shared.
func (p *Pool) Members() []*Contestant {
	out := make([]*Contestant, len(p.members))
	copy(out, p.members)
	return out
}

// Snapshot captures every contestant in ID order.
func (p *Pool) Snapshot() []Snapshot {
	out := make([]Snapshot, len(p.members))
	for i, c := range p.members {
		out[i] = c.Snapshot()
	}
	return out
}
