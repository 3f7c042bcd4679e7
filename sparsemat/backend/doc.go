// Package backend provides the pluggable sparse-matrix storage backends and
// the registry that names them. It defines the Backend contract and a set of
// semantically equivalent implementations with different complexity and
// memory trade-offs: chained hashing (heap-allocated and pool-allocated),
// a builtin-map baseline, a two-level sorted circular list, red-black and
// splay trees, a bbolt-backed file store, and (on linux) a dense memory-mapped
// array.
//
// Backends are NOT safe for concurrent use; the benchmark harness that owns a
// backend is single-threaded by design, and each harness run owns its handle
// exclusively.
//
// The registered backend set is determined at build time: the mmap backend is
// only compiled on linux, and the registry helpers make no assumption about
// how many backends exist.
package backend
