package backend

import (
	"encoding/binary"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

func init() {
	Register("hash", NewHashBackend)
}

// hashNode is one entry in a bucket's singly linked chain.
type hashNode struct {
	key   uint64
	value uint32
	next  *hashNode
}

// HashBackend is an open-hash-chaining store. The bucket array is sized to
// the smallest prime >= ExpectedItems and each bucket holds a chain of
// heap-allocated nodes keyed by the packed 64-bit coordinate.
//
// Deletion policy: logical tombstoning. Del zeroes the stored value and
// retains the node so that chain-walk costs stay representative of
// steady-state use. Footprint therefore counts every allocated node,
// tombstoned or not, plus the bucket array.
type HashBackend struct {
	buckets []*hashNode
	nodes   uint64 // Allocated node count, tombstones included
}

// NewHashBackend creates a HashBackend sized from cfg.ExpectedItems.
func NewHashBackend(cfg Config) (Backend, error) {
	hint := cfg.ExpectedItems
	if hint == 0 {
		hint = 1
	}

	return &HashBackend{
		buckets: make([]*hashNode, NextPrimeAtLeast(hint)),
	}, nil
}

// bucketFor hashes the packed key with xxhash and reduces it modulo the
// prime bucket count.
func (h *HashBackend) bucketFor(key uint64) uint64 {
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], key)

	return xxhash.Sum64(buf[:]) % uint64(len(h.buckets))
}

// Put inserts or overwrites the value at (x, y). The target chain is scanned
// for an existing key before a new node is allocated, so repeated puts to the
// same coordinate update in place.
func (h *HashBackend) Put(x, y, value uint32) error {
	key := packKey(x, y)

	idx := h.bucketFor(key)
	for node := h.buckets[idx]; node != nil; node = node.next {
		if node.key == key {
			node.value = value

			return nil
		}
	}

	h.buckets[idx] = &hashNode{key: key, value: value, next: h.buckets[idx]}
	h.nodes++

	return nil
}

// Get returns the value at (x, y), or 0 when the coordinate is absent or
// tombstoned. It never fails.
func (h *HashBackend) Get(x, y uint32) (uint32, error) {
	key := packKey(x, y)

	for node := h.buckets[h.bucketFor(key)]; node != nil; node = node.next {
		if node.key == key {
			return node.value, nil
		}
	}

	return 0, nil
}

// Del tombstones (x, y): the stored value is zeroed and the node retained.
// Deleting an absent coordinate is a no-op.
func (h *HashBackend) Del(x, y uint32) error {
	key := packKey(x, y)

	for node := h.buckets[h.bucketFor(key)]; node != nil; node = node.next {
		if node.key == key {
			node.value = 0

			return nil
		}
	}

	return nil
}

// Footprint returns bucket-array bytes plus allocated-node bytes. Tombstoned
// nodes are retained, so the count never shrinks and the figure reflects the
// run's peak allocation.
func (h *HashBackend) Footprint() uint64 {
	bucketBytes := uint64(len(h.buckets)) * uint64(unsafe.Sizeof((*hashNode)(nil)))

	return bucketBytes + h.nodes*uint64(unsafe.Sizeof(hashNode{}))
}

// Close drops the bucket array and chains for the collector.
func (h *HashBackend) Close() error {
	h.buckets = nil
	h.nodes = 0

	return nil
}
