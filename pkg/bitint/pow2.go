// Package bitint provides power-of-2 helpers for FFT and buffer sizing.
// All operations are O(1), allocation free, and safe on the hot path.
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size. Powers of 2 are
// returned unchanged; zero and negative inputs return 1. Subtracting one
// before taking the bit length is what keeps exact powers of 2 from being
// doubled.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len64(uint64(size-1))
}

// IsPowerOfTwo reports whether size is a positive power of 2.
func IsPowerOfTwo(size int) bool {
	return size > 0 && size&(size-1) == 0
}
