package backend

import "unsafe"

func init() {
	Register("splay", NewSplayBackend)
}

type splayNode struct {
	left, right *splayNode
	key         uint64
	value       uint32
}

// SplayBackend is a self-adjusting binary search tree keyed on the packed
// 64-bit coordinate. Every access splays the touched key to the root with
// the top-down variant, giving amortized O(log n) operations and good
// locality for skewed access patterns.
//
// Deletion policy: physical removal. Del joins the subtrees and releases the
// node to the collector, so the live node count shrinks; Footprint tracks
// the peak count to keep the reported figure monotone.
type SplayBackend struct {
	root *splayNode
	live uint64
	peak uint64
}

// NewSplayBackend creates an empty SplayBackend; splay trees need no sizing
// hints.
func NewSplayBackend(_ Config) (Backend, error) {
	return &SplayBackend{}, nil
}

// splay moves the node holding key — or the last node on its search path —
// to the root using the top-down algorithm: the tree is split into left and
// right assembly trees while descending, then reassembled around the final
// node.
func (t *SplayBackend) splay(key uint64) {
	if t.root == nil {
		return
	}

	var assembly splayNode

	left, right := &assembly, &assembly
	cur := t.root

	for {
		switch {
		case key < cur.key:
			if cur.left == nil {
				break
			}

			if key < cur.left.key {
				// Zig-zig: rotate right before descending.
				x := cur.left
				cur.left = x.right
				x.right = cur
				cur = x

				if cur.left == nil {
					break
				}
			}

			right.left = cur
			right = cur
			cur = cur.left

			continue
		case key > cur.key:
			if cur.right == nil {
				break
			}

			if key > cur.right.key {
				// Zig-zig: rotate left before descending.
				x := cur.right
				cur.right = x.left
				x.left = cur
				cur = x

				if cur.right == nil {
					break
				}
			}

			left.right = cur
			left = cur
			cur = cur.right

			continue
		}

		break
	}

	left.right = cur.left
	right.left = cur.right
	cur.left = assembly.right
	cur.right = assembly.left
	t.root = cur
}

// Put inserts or overwrites the value at (x, y); the touched key ends up at
// the root either way.
func (t *SplayBackend) Put(x, y, value uint32) error {
	key := packKey(x, y)

	if t.root == nil {
		t.root = &splayNode{key: key, value: value}
		t.bump()

		return nil
	}

	t.splay(key)

	if t.root.key == key {
		t.root.value = value

		return nil
	}

	node := &splayNode{key: key, value: value}

	if key < t.root.key {
		node.left = t.root.left
		node.right = t.root
		t.root.left = nil
	} else {
		node.right = t.root.right
		node.left = t.root
		t.root.right = nil
	}

	t.root = node
	t.bump()

	return nil
}

func (t *SplayBackend) bump() {
	t.live++
	if t.live > t.peak {
		t.peak = t.live
	}
}

// Get returns the value at (x, y), or 0 when absent. A hit splays the node
// to the root, which is what gives repeated lookups their locality.
func (t *SplayBackend) Get(x, y uint32) (uint32, error) {
	if t.root == nil {
		return 0, nil
	}

	key := packKey(x, y)

	t.splay(key)

	if t.root.key == key {
		return t.root.value, nil
	}

	return 0, nil
}

// Del physically removes (x, y) by splaying it to the root and joining the
// two subtrees. Deleting an absent coordinate is a no-op.
func (t *SplayBackend) Del(x, y uint32) error {
	if t.root == nil {
		return nil
	}

	key := packKey(x, y)

	t.splay(key)

	if t.root.key != key {
		return nil
	}

	if t.root.left == nil {
		t.root = t.root.right
	} else {
		rightSubtree := t.root.right

		// Splaying key in the left subtree brings its maximum to the
		// root with an empty right child to hang rightSubtree on.
		t.root = t.root.left
		t.splay(key)
		t.root.right = rightSubtree
	}

	t.live--

	return nil
}

// Footprint reports peak live nodes × node size; physical deletion shrinks
// the live count, so the peak is what keeps the figure monotone.
func (t *SplayBackend) Footprint() uint64 {
	return t.peak * uint64(unsafe.Sizeof(splayNode{}))
}

// Close drops the tree.
func (t *SplayBackend) Close() error {
	t.root = nil
	t.live = 0

	return nil
}
