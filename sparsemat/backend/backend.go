package backend

import (
	"fmt"
	"sort"
	"sync"
)

// Config carries the sizing hints a Factory needs to build a backend instance.
//
// ExpectedItems is a capacity/bucket-count hint for hash- and arena-style
// backends; bounded backends size themselves from DimX×DimY instead. Path
// points file-backed backends at a scratch directory (the system temp
// directory when empty).
type Config struct {
	// ExpectedItems is the number of distinct coordinates the caller intends
	// to populate. Fixed-capacity backends treat it as a hard limit.
	ExpectedItems uint64

	// DimX and DimY are the matrix bounds. Bounded backends reject
	// coordinates at or beyond them; unbounded backends ignore them.
	DimX uint32
	DimY uint32

	// Path is a scratch directory for file-backed backends. Empty means
	// the system temp directory.
	Path string
}

// Backend is the contract every sparse-matrix storage engine implements.
//
// Semantics:
//
//   - The value 0 is the reserved "absent" sentinel: Get returns 0 for any
//     coordinate never written or whose last mutation was Del.
//   - Put inserts or overwrites (last-write-wins) and must never disturb
//     entries for other coordinates.
//   - Get's error is non-nil only for out-of-range coordinates on bounded
//     backends (or an I/O failure on file-backed ones); absence is the zero
//     return, not an error.
//   - Del makes a subsequent Get return 0. Whether the backing node is
//     tombstoned or physically freed is a per-backend policy documented on
//     the implementation; both satisfy the contract.
//   - Footprint reports the bytes attributable to this instance under the
//     backend's deletion policy. It is non-negative and reflects the peak
//     resident allocation of the run.
//   - Close releases all resources. The backend must not be used afterwards.
type Backend interface {
	Put(x, y, value uint32) error
	Get(x, y uint32) (uint32, error)
	Del(x, y uint32) error
	Footprint() uint64
	Close() error
}

// Factory constructs a backend instance from cfg. A failed Factory must not
// leak partially allocated resources. Resource-exhaustion failures wrap
// ErrOutOfMemory so callers can skip the backend rather than abort.
type Factory func(cfg Config) (Backend, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a named backend factory to the registry. It is called from
// each backend file's init and panics on duplicate names, which would
// indicate a programming error.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("backend %q registered twice", name))
	}

	registry[name] = factory
}

// New builds the named backend with cfg, or fails with ErrUnknownBackend.
func New(name string, cfg Config) (Backend, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q; valid values are: %v", ErrUnknownBackend, name, Names())
	}

	return factory(cfg)
}

// Names returns the registered backend names in sorted order. The set varies
// by build target, so callers must not assume a fixed count.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// packKey folds an (x, y) coordinate into the single 64-bit key shared by
// every key-ordered backend: (x << 32) | y.
func packKey(x, y uint32) uint64 {
	return uint64(x)<<32 | uint64(y)
}
