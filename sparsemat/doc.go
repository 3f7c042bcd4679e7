// Package sparsemat drives the pluggable sparse-matrix storage backends
// through a deterministic correctness and throughput benchmark.
//
// A Runner reseeds a multiply-with-carry PRNG to a fixed two-word seed so
// every backend sees the identical pseudo-random coordinate stream, then runs
// four phases per backend: populate, verify, miss-lookup, delete. Phase
// timings become per-backend put/get rates, and a geometric mean across
// backends yields a single cross-backend summary figure. Any verification
// mismatch is fatal for that backend's run; a backend that cannot allocate at
// create time is skipped, not failed.
package sparsemat
