package sparsemat

// Default seed words for the multiply-with-carry generator. They also guard
// against the generator's one forbidden state: a zero seed word would pin
// that half of the recurrence at zero forever.
const (
	DefaultSeedW = 12345
	DefaultSeedZ = 6789
)

// Rand is Marsaglia's two-word multiply-with-carry generator. It is not a
// general-purpose source of randomness; it exists because the benchmark
// needs a stream that any backend run can reproduce exactly by reseeding
// with the same (w, z) pair.
type Rand struct {
	w, z uint32
}

// NewRand returns a generator seeded with Seed(w, z).
func NewRand(w, z uint32) *Rand {
	r := &Rand{}
	r.Seed(w, z)

	return r
}

// Seed resets the generator state. Reseeding with the same pair reproduces
// the identical output sequence. A zero word is remapped to its default so
// the recurrence cannot degenerate.
func (r *Rand) Seed(w, z uint32) {
	if w == 0 {
		w = DefaultSeedW
	}

	if z == 0 {
		z = DefaultSeedZ
	}

	r.w = w
	r.z = z
}

// Next returns the next 32-bit value in the sequence.
func (r *Rand) Next() uint32 {
	r.z = 36969*(r.z&65535) + (r.z >> 16)
	r.w = 18000*(r.w&65535) + (r.w >> 16)

	return (r.z << 16) + r.w
}
