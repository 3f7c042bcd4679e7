package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNextPrimeAtLeast covers the small-input floor, exact primes, and the
// next-prime step over composites.
func TestNextPrimeAtLeast(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		n    uint64
		want uint64
	}{
		{name: "zero floors to two", n: 0, want: 2},
		{name: "one floors to two", n: 1, want: 2},
		{name: "two is prime", n: 2, want: 2},
		{name: "three is prime", n: 3, want: 3},
		{name: "four steps to five", n: 4, want: 5},
		{name: "nine steps to eleven", n: 9, want: 11},
		{name: "thousand steps to 1009", n: 1000, want: 1009},
		{name: "ten thousand hint", n: 10000, want: 10007},
		{name: "large even", n: 1 << 20, want: 1048583},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, NextPrimeAtLeast(tt.n))
		})
	}
}

// TestIsPrime spot-checks the trial-division routine on both sides.
func TestIsPrime(t *testing.T) {
	t.Parallel()

	for _, p := range []uint64{2, 3, 5, 7, 1009, 10007, 1048583} {
		assert.Truef(t, isPrime(p), "%d is prime", p)
	}

	for _, c := range []uint64{0, 1, 4, 9, 1000, 10001, 1 << 20} {
		assert.Falsef(t, isPrime(c), "%d is not prime", c)
	}
}
