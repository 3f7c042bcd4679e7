package sparsemat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRand_ReseedReproducesSequence pins the property the whole harness
// depends on: reseeding with the same pair replays the identical stream.
func TestRand_ReseedReproducesSequence(t *testing.T) {
	t.Parallel()

	rng := NewRand(12345, 6789)

	first := make([]uint32, 1000)
	for i := range first {
		first[i] = rng.Next()
	}

	rng.Seed(12345, 6789)

	for i := range first {
		require.Equalf(t, first[i], rng.Next(), "value %d diverged after reseed", i)
	}
}

// TestRand_DistinctSeedsDiverge makes sure different seeds do not collapse
// into the same stream.
func TestRand_DistinctSeedsDiverge(t *testing.T) {
	t.Parallel()

	a := NewRand(12345, 6789)
	b := NewRand(54321, 9876)

	var same int

	for i := 0; i < 100; i++ {
		if a.Next() == b.Next() {
			same++
		}
	}

	assert.Less(t, same, 5, "distinct seeds must produce distinct streams")
}

// TestRand_ZeroSeedGuard verifies zero seed words fall back to the defaults
// instead of pinning half the recurrence at zero.
func TestRand_ZeroSeedGuard(t *testing.T) {
	t.Parallel()

	zeroed := NewRand(0, 0)
	defaulted := NewRand(DefaultSeedW, DefaultSeedZ)

	for i := 0; i < 100; i++ {
		require.Equal(t, defaulted.Next(), zeroed.Next())
	}
}

// TestRand_SpreadsAcrossRange is a coarse sanity check that the generator
// is not obviously degenerate over the harness's typical modulus.
func TestRand_SpreadsAcrossRange(t *testing.T) {
	t.Parallel()

	rng := NewRand(DefaultSeedW, DefaultSeedZ)
	seen := make(map[uint32]struct{})

	for i := 0; i < 1000; i++ {
		seen[rng.Next()%500] = struct{}{}
	}

	assert.Greater(t, len(seen), 400, "1000 draws mod 500 must cover most residues")
}
