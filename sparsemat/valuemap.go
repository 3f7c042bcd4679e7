package sparsemat

// MapValue derives the deterministic check value for a coordinate pair. The
// harness stores MapValue(x, y) at (x, y) during the populate phase and
// compares against it during verification, so correctness checking needs no
// side table of expected values.
//
// Zero is the reserved absent sentinel, so a computed zero is remapped to
// the all-ones value; callers comparing against MapValue inherit the remap
// automatically.
func MapValue(x, y uint32) uint32 {
	v := x<<16 ^ y
	if v == 0 {
		return ^uint32(0)
	}

	return v
}
