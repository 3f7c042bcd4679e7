package backend

import "unsafe"

func init() {
	Register("rb", NewRBBackend)
}

const (
	rbRed   = byte(0)
	rbBlack = byte(1)
)

// rbNode is one arena slot. Links are arena indices, not pointers; index 0
// is the shared nil sentinel. Freed slots chain through the left field.
type rbNode struct {
	key    uint64
	left   int32
	right  int32
	parent int32
	value  uint32
	color  byte
}

// RBBackend is a red-black tree keyed on the packed 64-bit coordinate,
// giving worst-case O(log n) put/get/del via rotation-based rebalancing.
// Nodes live in a growable arena addressed by integer indices with a free
// list, so rebalancing never touches raw pointers.
//
// Deletion policy: physical removal. Del unlinks the node and returns its
// slot to the free list. The arena itself never shrinks, so Footprint —
// arena slots × slot size — reports the run's peak allocation.
type RBBackend struct {
	nodes []rbNode
	root  int32
	free  int32 // Head of the freed-slot chain, 0 when empty
}

// NewRBBackend creates an RBBackend whose arena is presized to
// cfg.ExpectedItems plus the nil sentinel at slot 0.
func NewRBBackend(cfg Config) (Backend, error) {
	nodes := make([]rbNode, 1, cfg.ExpectedItems+1)
	nodes[0].color = rbBlack

	return &RBBackend{nodes: nodes}, nil
}

// alloc returns a slot for a fresh red node, reusing the free list before
// growing the arena.
func (t *RBBackend) alloc(key uint64, value uint32) int32 {
	var i int32

	if t.free != 0 {
		i = t.free
		t.free = t.nodes[i].left
	} else {
		t.nodes = append(t.nodes, rbNode{})
		i = int32(len(t.nodes) - 1)
	}

	t.nodes[i] = rbNode{key: key, value: value, color: rbRed}

	return i
}

// release pushes slot i onto the free list.
func (t *RBBackend) release(i int32) {
	t.nodes[i].left = t.free
	t.free = i
}

func (t *RBBackend) rotateLeft(x int32) {
	n := t.nodes
	y := n[x].right

	n[x].right = n[y].left
	if n[y].left != 0 {
		n[n[y].left].parent = x
	}

	n[y].parent = n[x].parent

	switch {
	case n[x].parent == 0:
		t.root = y
	case x == n[n[x].parent].left:
		n[n[x].parent].left = y
	default:
		n[n[x].parent].right = y
	}

	n[y].left = x
	n[x].parent = y
}

func (t *RBBackend) rotateRight(x int32) {
	n := t.nodes
	y := n[x].left

	n[x].left = n[y].right
	if n[y].right != 0 {
		n[n[y].right].parent = x
	}

	n[y].parent = n[x].parent

	switch {
	case n[x].parent == 0:
		t.root = y
	case x == n[n[x].parent].right:
		n[n[x].parent].right = y
	default:
		n[n[x].parent].left = y
	}

	n[y].right = x
	n[x].parent = y
}

// find returns the slot holding key, or 0.
func (t *RBBackend) find(key uint64) int32 {
	at := t.root
	for at != 0 && t.nodes[at].key != key {
		if key < t.nodes[at].key {
			at = t.nodes[at].left
		} else {
			at = t.nodes[at].right
		}
	}

	return at
}

// Put inserts or overwrites the value at (x, y), rebalancing as needed.
func (t *RBBackend) Put(x, y, value uint32) error {
	key := packKey(x, y)

	var parent int32

	at := t.root
	for at != 0 {
		if t.nodes[at].key == key {
			t.nodes[at].value = value

			return nil
		}

		parent = at
		if key < t.nodes[at].key {
			at = t.nodes[at].left
		} else {
			at = t.nodes[at].right
		}
	}

	z := t.alloc(key, value)
	t.nodes[z].parent = parent

	switch {
	case parent == 0:
		t.root = z
	case key < t.nodes[parent].key:
		t.nodes[parent].left = z
	default:
		t.nodes[parent].right = z
	}

	t.insertFixup(z)

	return nil
}

// insertFixup restores the red-black invariants after inserting the red
// node z.
func (t *RBBackend) insertFixup(z int32) {
	n := t.nodes

	for n[n[z].parent].color == rbRed {
		parent := n[z].parent
		grand := n[parent].parent

		if parent == n[grand].left {
			uncle := n[grand].right
			if n[uncle].color == rbRed {
				n[parent].color = rbBlack
				n[uncle].color = rbBlack
				n[grand].color = rbRed
				z = grand

				continue
			}

			if z == n[parent].right {
				z = parent
				t.rotateLeft(z)

				n = t.nodes
				parent = n[z].parent
				grand = n[parent].parent
			}

			n[parent].color = rbBlack
			n[grand].color = rbRed
			t.rotateRight(grand)
		} else {
			uncle := n[grand].left
			if n[uncle].color == rbRed {
				n[parent].color = rbBlack
				n[uncle].color = rbBlack
				n[grand].color = rbRed
				z = grand

				continue
			}

			if z == n[parent].left {
				z = parent
				t.rotateRight(z)

				n = t.nodes
				parent = n[z].parent
				grand = n[parent].parent
			}

			n[parent].color = rbBlack
			n[grand].color = rbRed
			t.rotateLeft(grand)
		}
	}

	t.nodes[t.root].color = rbBlack
	t.nodes[0].color = rbBlack
}

// Get returns the value at (x, y), or 0 when absent.
func (t *RBBackend) Get(x, y uint32) (uint32, error) {
	if at := t.find(packKey(x, y)); at != 0 {
		return t.nodes[at].value, nil
	}

	return 0, nil
}

// transplant replaces the subtree rooted at u with the one rooted at v.
// v may be the nil sentinel; its parent link is still set, which deleteFixup
// relies on.
func (t *RBBackend) transplant(u, v int32) {
	n := t.nodes

	switch {
	case n[u].parent == 0:
		t.root = v
	case u == n[n[u].parent].left:
		n[n[u].parent].left = v
	default:
		n[n[u].parent].right = v
	}

	n[v].parent = n[u].parent
}

// minimum returns the leftmost slot under i.
func (t *RBBackend) minimum(i int32) int32 {
	for t.nodes[i].left != 0 {
		i = t.nodes[i].left
	}

	return i
}

// Del physically removes (x, y) and returns the slot to the free list.
// Deleting an absent coordinate is a no-op.
func (t *RBBackend) Del(x, y uint32) error {
	z := t.find(packKey(x, y))
	if z == 0 {
		return nil
	}

	n := t.nodes

	var fix int32

	removedColor := n[z].color

	switch {
	case n[z].left == 0:
		fix = n[z].right
		t.transplant(z, fix)
	case n[z].right == 0:
		fix = n[z].left
		t.transplant(z, fix)
	default:
		successor := t.minimum(n[z].right)
		removedColor = n[successor].color
		fix = n[successor].right

		if n[successor].parent == z {
			n[fix].parent = successor
		} else {
			t.transplant(successor, fix)
			n[successor].right = n[z].right
			n[n[successor].right].parent = successor
		}

		t.transplant(z, successor)
		n[successor].left = n[z].left
		n[n[successor].left].parent = successor
		n[successor].color = n[z].color
	}

	if removedColor == rbBlack {
		t.deleteFixup(fix)
	}

	t.release(z)

	return nil
}

// deleteFixup restores the red-black invariants after removing a black
// node; x carries the extra blackness.
func (t *RBBackend) deleteFixup(x int32) {
	n := t.nodes

	for x != t.root && n[x].color == rbBlack {
		parent := n[x].parent

		if x == n[parent].left {
			sibling := n[parent].right

			if n[sibling].color == rbRed {
				n[sibling].color = rbBlack
				n[parent].color = rbRed
				t.rotateLeft(parent)

				sibling = n[parent].right
			}

			if n[n[sibling].left].color == rbBlack && n[n[sibling].right].color == rbBlack {
				n[sibling].color = rbRed
				x = parent

				continue
			}

			if n[n[sibling].right].color == rbBlack {
				n[n[sibling].left].color = rbBlack
				n[sibling].color = rbRed
				t.rotateRight(sibling)

				sibling = n[parent].right
			}

			n[sibling].color = n[parent].color
			n[parent].color = rbBlack
			n[n[sibling].right].color = rbBlack
			t.rotateLeft(parent)

			x = t.root
		} else {
			sibling := n[parent].left

			if n[sibling].color == rbRed {
				n[sibling].color = rbBlack
				n[parent].color = rbRed
				t.rotateRight(parent)

				sibling = n[parent].left
			}

			if n[n[sibling].right].color == rbBlack && n[n[sibling].left].color == rbBlack {
				n[sibling].color = rbRed
				x = parent

				continue
			}

			if n[n[sibling].left].color == rbBlack {
				n[n[sibling].right].color = rbBlack
				n[sibling].color = rbRed
				t.rotateLeft(sibling)

				sibling = n[parent].left
			}

			n[sibling].color = n[parent].color
			n[parent].color = rbBlack
			n[n[sibling].left].color = rbBlack
			t.rotateRight(parent)

			x = t.root
		}
	}

	n[x].color = rbBlack
	n[0].color = rbBlack
	n[0].parent = 0
}

// Footprint reports arena slots × slot size. Freed slots stay in the arena,
// so the figure is the run's peak allocation.
func (t *RBBackend) Footprint() uint64 {
	return uint64(len(t.nodes)) * uint64(unsafe.Sizeof(rbNode{}))
}

// Close drops the arena.
func (t *RBBackend) Close() error {
	t.nodes = nil
	t.root = 0
	t.free = 0

	return nil
}
