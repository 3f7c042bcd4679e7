package sparsemat

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oshokin/sparsemat/sparsemat/backend"
)

// ErrNoBackendCompleted is returned by Run when every selected backend was
// skipped or failed.
var ErrNoBackendCompleted = errors.New("no backend completed the run")

// VerifyError reports a verification mismatch: the backend returned
// something other than the value the deterministic stream stored. It is
// always fatal for that backend's run because it indicates a correctness
// defect, not a transient condition.
type VerifyError struct {
	Backend  string
	X, Y     uint32
	Expected uint32
	Actual   uint32
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf(
		"backend %q: verify mismatch at (%d,%d): expected %#x, got %#x",
		e.Backend, e.X, e.Y, e.Expected, e.Actual,
	)
}

// Result captures one backend's outcome within a run.
type Result struct {
	// Name is the backend's registry name.
	Name string

	// Items is the per-phase operation count the backend was driven with.
	Items uint64

	// PutsPerSec and GetsPerSec are phase throughputs. Gets aggregate the
	// verify and miss phases.
	PutsPerSec float64
	GetsPerSec float64

	// ObjMem is the backend's reported footprint in bytes, read just
	// before Close.
	ObjMem uint64

	// Skipped marks a backend that declined to allocate at create time.
	// A skipped backend is informational, not a failure.
	Skipped bool

	// Err is the fatal error that aborted this backend's phases, if any.
	Err error
}

// Completed reports whether the backend ran all phases successfully.
func (r *Result) Completed() bool {
	return !r.Skipped && r.Err == nil
}

// Summary aggregates a whole run.
type Summary struct {
	Results []Result

	// PutsPerSecGeoMean and GetsPerSecGeoMean combine per-backend rates
	// across the registry into single cross-backend figures. Only
	// completed backends contribute.
	PutsPerSecGeoMean float64
	GetsPerSecGeoMean float64
}

// Runner owns one benchmark run: validated options plus a logger.
type Runner struct {
	opts   Options
	logger *slog.Logger
}

// NewRunner validates opts and returns a Runner. A nil logger falls back to
// slog's default.
func NewRunner(opts Options, logger *slog.Logger) (*Runner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	if opts.ItemsClamped {
		logger.Warn("items clamped to matrix capacity",
			"items", opts.Items,
			"size", opts.Size)
	}

	return &Runner{opts: opts, logger: logger}, nil
}

// Run drives every selected backend through the four phases and aggregates
// the results. A backend that fails to allocate is skipped; a fatal failure
// aborts only that backend unless FailFast is set. Run succeeds as long as
// at least one backend completed.
func (r *Runner) Run() (*Summary, error) {
	summary := &Summary{}

	for _, name := range r.opts.methods() {
		result := r.runBackend(name)
		summary.Results = append(summary.Results, result)

		if result.Err != nil && r.opts.FailFast {
			break
		}
	}

	var completed int

	for i := range summary.Results {
		if summary.Results[i].Completed() {
			completed++
		}
	}

	if completed == 0 {
		return summary, fmt.Errorf("%w: %d selected", ErrNoBackendCompleted, len(summary.Results))
	}

	summary.aggregate()

	return summary, nil
}

// runBackend creates the named backend, exercises it, and closes it.
func (r *Runner) runBackend(name string) Result {
	cfg := backend.Config{
		ExpectedItems: r.opts.Items,
		DimX:          r.opts.Size,
		DimY:          r.opts.Size,
		Path:          r.opts.Path,
	}

	be, err := backend.New(name, cfg)
	if err != nil {
		if errors.Is(err, backend.ErrOutOfMemory) {
			r.logger.Info("backend skipped", "backend", name, "reason", err)

			return Result{Name: name, Skipped: true}
		}

		return Result{Name: name, Err: err}
	}

	result := r.exercise(name, be)

	if result.Err == nil {
		result.ObjMem = be.Footprint()
	}

	if closeErr := be.Close(); closeErr != nil && result.Err == nil {
		result.Err = closeErr
	}

	if result.Err != nil {
		r.logger.Error("backend failed", "backend", name, "error", result.Err)
	} else {
		r.logger.Debug("backend completed",
			"backend", name,
			"puts_per_sec", result.PutsPerSec,
			"gets_per_sec", result.GetsPerSec,
			"objmem", result.ObjMem)
	}

	return result
}

// exercise runs the populate, verify, miss and delete phases against an
// already-created backend. Split from runBackend so tests can drive a stub
// backend through the same code path.
func (r *Runner) exercise(name string, be backend.Backend) Result {
	var (
		items = r.opts.Items
		dim   = r.opts.Size
		rng   = NewRand(r.opts.SeedW, r.opts.SeedZ)

		result = Result{Name: name, Items: items}
	)

	// Phase 1: populate. Each put is preceded by a get so a coordinate the
	// stream revisits is not redundantly overwritten. A put failure after a
	// successful create is a capacity/sizing defect, never transient.
	putStart := time.Now()

	for i := uint64(0); i < items; i++ {
		x := rng.Next() % dim
		y := rng.Next() % dim

		existing, err := be.Get(x, y)
		if err != nil {
			result.Err = fmt.Errorf("backend %q: pre-put get at (%d,%d): %w", name, x, y, err)

			return result
		}

		if existing != 0 {
			continue
		}

		if err := be.Put(x, y, MapValue(x, y)); err != nil {
			result.Err = fmt.Errorf("backend %q: put at (%d,%d): %w", name, x, y, err)

			return result
		}
	}

	putDuration := time.Since(putStart)

	// Phase 2: verify. The reseeded stream regenerates the exact coordinate
	// sequence, so every get must return MapValue for its coordinate.
	rng.Seed(r.opts.SeedW, r.opts.SeedZ)

	getStart := time.Now()

	for i := uint64(0); i < items; i++ {
		x := rng.Next() % dim
		y := rng.Next() % dim

		actual, err := be.Get(x, y)
		if err != nil {
			result.Err = fmt.Errorf("backend %q: verify get at (%d,%d): %w", name, x, y, err)

			return result
		}

		if expected := MapValue(x, y); actual != expected {
			result.Err = &VerifyError{Backend: name, X: x, Y: y, Expected: expected, Actual: actual}

			return result
		}
	}

	// Phase 3: miss lookups on the continuing stream, to price cold gets.
	// At low fill factors nearly all of them return the absent sentinel;
	// the occasional hit is legitimate, so nothing is asserted here.
	for i := uint64(0); i < items; i++ {
		x := rng.Next() % dim
		y := rng.Next() % dim

		if _, err := be.Get(x, y); err != nil {
			result.Err = fmt.Errorf("backend %q: miss get at (%d,%d): %w", name, x, y, err)

			return result
		}
	}

	getDuration := time.Since(getStart)

	// Phase 4: delete everything the populate phase touched.
	rng.Seed(r.opts.SeedW, r.opts.SeedZ)

	for i := uint64(0); i < items; i++ {
		x := rng.Next() % dim
		y := rng.Next() % dim

		if err := be.Del(x, y); err != nil {
			result.Err = fmt.Errorf("backend %q: del at (%d,%d): %w", name, x, y, err)

			return result
		}
	}

	result.PutsPerSec = rate(items, putDuration)
	result.GetsPerSec = rate(2*items, getDuration)

	return result
}

// rate converts an operation count and duration to ops/sec, guarding the
// degenerate sub-resolution duration.
func rate(ops uint64, d time.Duration) float64 {
	seconds := d.Seconds()
	if seconds <= 0 {
		return 0
	}

	return float64(ops) / seconds
}
