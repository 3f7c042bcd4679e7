package sparsemat

import (
	"errors"
	"fmt"
	"slices"

	"github.com/oshokin/sparsemat/sparsemat/backend"
)

// MethodAll selects every registered backend in sequence.
const MethodAll = "all"

// Bounds and defaults for the workload configuration.
const (
	MinItems     = 100
	MaxItems     = 10_000_000
	DefaultItems = 10_000

	MinSize     = 10
	MaxSize     = 100_000
	DefaultSize = 500
)

var (
	// ErrItemsOutOfRange is returned when Items falls outside
	// [MinItems, MaxItems].
	ErrItemsOutOfRange = errors.New("items out of range")
	// ErrSizeOutOfRange is returned when Size falls outside
	// [MinSize, MaxSize].
	ErrSizeOutOfRange = errors.New("size out of range")
)

// Options configures a benchmark run.
type Options struct {
	// Items is the target population count N: the number of put operations
	// per backend (and of gets, miss-gets and dels in the later phases).
	Items uint64

	// Size is the matrix dimension, applied to both axes.
	Size uint32

	// Method selects the backend to exercise, or MethodAll for the whole
	// registry in sequence.
	Method string

	// SeedW and SeedZ seed the deterministic stream. Zero words fall back
	// to the PRNG defaults, so the zero Options value is still
	// reproducible.
	SeedW uint32
	SeedZ uint32

	// Path is the scratch directory handed to file-backed backends; empty
	// means the system temp directory.
	Path string

	// FailFast aborts the whole run on the first fatal backend failure
	// instead of attempting the remaining backends.
	FailFast bool

	// ItemsClamped records that Validate reduced Items to Size², so callers
	// can surface the clamp diagnostically.
	ItemsClamped bool
}

// DefaultOptions returns the options for the canonical workload: a 500×500
// matrix populated with 10,000 items (4% fill) across all backends.
func DefaultOptions() Options {
	return Options{
		Items:  DefaultItems,
		Size:   DefaultSize,
		Method: MethodAll,
		SeedW:  DefaultSeedW,
		SeedZ:  DefaultSeedZ,
	}
}

// Validate checks ranges, resolves the method name against the registry, and
// clamps Items to the matrix capacity when it would exceed Size². It is
// intentionally strict so an invalid configuration fails before any backend
// allocates.
func (o *Options) Validate() error {
	if o.Items < MinItems || o.Items > MaxItems {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrItemsOutOfRange, o.Items, MinItems, MaxItems)
	}

	if o.Size < MinSize || o.Size > MaxSize {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrSizeOutOfRange, o.Size, MinSize, MaxSize)
	}

	if o.Method == "" {
		o.Method = MethodAll
	}

	if o.Method != MethodAll && !slices.Contains(backend.Names(), o.Method) {
		return fmt.Errorf(
			"%w: %q; valid values are: %q, %v",
			backend.ErrUnknownBackend, o.Method, MethodAll, backend.Names(),
		)
	}

	if capacity := uint64(o.Size) * uint64(o.Size); o.Items > capacity {
		o.Items = capacity
		o.ItemsClamped = true
	}

	return nil
}

// methods returns the backend names this run will exercise.
func (o *Options) methods() []string {
	if o.Method == MethodAll {
		return backend.Names()
	}

	return []string{o.Method}
}
