package backend

// Bucket-array sizing for the chained-hash backends. A prime bucket count
// keeps the modulo distribution even when keys share low-order structure.
const (
	// defaultBuckets is the fallback bucket count used when the bounded
	// prime search gives up.
	defaultBuckets = 1031

	// primeSearchSpan caps how far past n the search walks. Prime gaps
	// below 2^32 are tiny, so exhausting the span means n itself was
	// unreasonable.
	primeSearchSpan = 10000
)

// isPrime reports primality by trial division. Adequate for the one-shot
// bucket sizing done at create time; not meant for hot paths.
func isPrime(n uint64) bool {
	if n < 2 {
		return false
	}

	if n%2 == 0 {
		return n == 2
	}

	for d := uint64(3); d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}

	return true
}

// NextPrimeAtLeast returns the smallest prime >= n, searching at most
// primeSearchSpan candidates before falling back to defaultBuckets.
func NextPrimeAtLeast(n uint64) uint64 {
	if n < 2 {
		return 2
	}

	for candidate := n; candidate < n+primeSearchSpan; candidate++ {
		if isPrime(candidate) {
			return candidate
		}
	}

	return defaultBuckets
}
