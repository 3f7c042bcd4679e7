package sparsemat

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/sparsemat/sparsemat/backend"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestRunner_Run_AllBackends runs the full registry on a small workload and
// checks that every backend either completes with sane rates or was skipped
// for memory, and that the geometric means aggregate the completions.
func TestRunner_Run_AllBackends(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Items = 200
	opts.Size = 50
	opts.Path = t.TempDir()

	runner, err := NewRunner(opts, discardLogger())
	require.NoError(t, err)

	summary, err := runner.Run()
	require.NoError(t, err)
	require.Len(t, summary.Results, len(backend.Names()))

	for i := range summary.Results {
		r := &summary.Results[i]

		if r.Skipped {
			continue
		}

		require.NoErrorf(t, r.Err, "backend %q must complete", r.Name)
		assert.Positivef(t, r.PutsPerSec, "backend %q puts rate", r.Name)
		assert.Positivef(t, r.GetsPerSec, "backend %q gets rate", r.Name)
		assert.NotZerof(t, r.ObjMem, "backend %q objmem", r.Name)
	}

	assert.Positive(t, summary.PutsPerSecGeoMean)
	assert.Positive(t, summary.GetsPerSecGeoMean)
}

// TestRunner_Run_SingleMethod restricts the run to one backend.
func TestRunner_Run_SingleMethod(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Items = 200
	opts.Size = 50
	opts.Method = "hash"

	runner, err := NewRunner(opts, discardLogger())
	require.NoError(t, err)

	summary, err := runner.Run()
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "hash", summary.Results[0].Name)
	assert.True(t, summary.Results[0].Completed())
}

// TestNewRunner_InvalidOptions: validation failures surface from NewRunner
// before anything allocates.
func TestNewRunner_InvalidOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Method = "no-such-backend"

	_, err := NewRunner(opts, discardLogger())
	assert.ErrorIs(t, err, backend.ErrUnknownBackend)
}

// corruptBackend wraps a correct in-memory store but returns a perturbed
// value for present keys, which the verify phase must catch.
type corruptBackend struct {
	cells map[uint64]uint32
}

func (c *corruptBackend) Put(x, y, value uint32) error {
	c.cells[uint64(x)<<32|uint64(y)] = value

	return nil
}

func (c *corruptBackend) Get(x, y uint32) (uint32, error) {
	v := c.cells[uint64(x)<<32|uint64(y)]
	if v == 0 {
		return 0, nil
	}

	return v + 1, nil
}

func (c *corruptBackend) Del(x, y uint32) error {
	delete(c.cells, uint64(x)<<32|uint64(y))

	return nil
}

func (c *corruptBackend) Footprint() uint64 { return 0 }
func (c *corruptBackend) Close() error      { return nil }

// TestRunner_Exercise_VerifyMismatchIsFatal drives a corrupt backend through
// the phases and expects a VerifyError carrying the failing coordinate and
// both values.
func TestRunner_Exercise_VerifyMismatchIsFatal(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Items = 200
	opts.Size = 50
	require.NoError(t, opts.Validate())

	runner := &Runner{opts: opts, logger: discardLogger()}

	result := runner.exercise("corrupt", &corruptBackend{cells: make(map[uint64]uint32)})
	require.Error(t, result.Err)

	var verifyErr *VerifyError

	require.ErrorAs(t, result.Err, &verifyErr)
	assert.Equal(t, "corrupt", verifyErr.Backend)
	assert.Equal(t, MapValue(verifyErr.X, verifyErr.Y), verifyErr.Expected)
	assert.Equal(t, verifyErr.Expected+1, verifyErr.Actual)
	assert.Contains(t, verifyErr.Error(), "verify mismatch")
}

// fullBackend fails every put, modeling a capacity/sizing defect.
type fullBackend struct{}

func (fullBackend) Put(_, _, _ uint32) error { return backend.ErrCapacityExceeded }

func (fullBackend) Get(_, _ uint32) (uint32, error) { return 0, nil }

func (fullBackend) Del(_, _ uint32) error { return nil }

func (fullBackend) Footprint() uint64 { return 0 }

func (fullBackend) Close() error { return nil }

// TestRunner_Exercise_PutFailureIsFatal: a put failure after a successful
// create aborts that backend's phases with the underlying error preserved.
func TestRunner_Exercise_PutFailureIsFatal(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Items = 200
	opts.Size = 50
	require.NoError(t, opts.Validate())

	runner := &Runner{opts: opts, logger: discardLogger()}

	result := runner.exercise("full", fullBackend{})
	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, backend.ErrCapacityExceeded)
	assert.Zero(t, result.PutsPerSec, "rates must not be reported for an aborted run")
}

// TestRunner_Exercise_CrossBackendEquivalence runs the identical seeded
// workload through every registered backend and asserts the verify phase
// agrees everywhere; since the expectation is a pure function of the
// coordinate, per-backend agreement is cross-backend agreement.
func TestRunner_Exercise_CrossBackendEquivalence(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Items = 500
	opts.Size = 100
	opts.Path = t.TempDir()
	require.NoError(t, opts.Validate())

	runner := &Runner{opts: opts, logger: discardLogger()}

	for _, name := range backend.Names() {
		be, err := backend.New(name, backend.Config{
			ExpectedItems: opts.Items,
			DimX:          opts.Size,
			DimY:          opts.Size,
			Path:          opts.Path,
		})
		if errors.Is(err, backend.ErrOutOfMemory) {
			continue
		}

		require.NoError(t, err)

		result := runner.exercise(name, be)
		require.NoErrorf(t, result.Err, "backend %q diverged from the deterministic stream", name)
		require.NoError(t, be.Close())
	}
}
