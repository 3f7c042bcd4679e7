package backend

// The builtin-map baseline. Every other backend's results are expected to
// match this one exactly on the same operation sequence, which makes it the
// natural oracle for the cross-backend equivalence tests.

func init() {
	Register("gomap", NewGoMapBackend)
}

// gomapEntryCost approximates the per-entry heap cost of a
// map[uint64]uint32: 12 bytes of key+value padded into bucket slots plus
// amortized bucket and overflow overhead.
const gomapEntryCost = 32

// GoMapBackend stores values in a builtin map keyed by the packed
// coordinate.
//
// Deletion policy: physical removal via delete(). Footprint is an estimate
// from the peak entry count, because the runtime gives no per-map
// accounting; the peak keeps the figure monotone even though delete()
// shrinks the live count.
type GoMapBackend struct {
	entries map[uint64]uint32
	peak    uint64
}

// NewGoMapBackend creates a GoMapBackend presized to cfg.ExpectedItems.
func NewGoMapBackend(cfg Config) (Backend, error) {
	return &GoMapBackend{
		entries: make(map[uint64]uint32, cfg.ExpectedItems),
	}, nil
}

// Put inserts or overwrites the value at (x, y).
func (g *GoMapBackend) Put(x, y, value uint32) error {
	g.entries[packKey(x, y)] = value

	if n := uint64(len(g.entries)); n > g.peak {
		g.peak = n
	}

	return nil
}

// Get returns the value at (x, y), or 0 when absent. The map's zero value
// for missing keys is exactly the absent sentinel.
func (g *GoMapBackend) Get(x, y uint32) (uint32, error) {
	return g.entries[packKey(x, y)], nil
}

// Del physically removes (x, y). Deleting an absent coordinate is a no-op.
func (g *GoMapBackend) Del(x, y uint32) error {
	delete(g.entries, packKey(x, y))

	return nil
}

// Footprint estimates peak map bytes from the peak entry count.
func (g *GoMapBackend) Footprint() uint64 {
	return g.peak * gomapEntryCost
}

// Close drops the map.
func (g *GoMapBackend) Close() error {
	g.entries = nil

	return nil
}
