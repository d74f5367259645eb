package kmeans

// Rand is the random source a run draws strides from.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// isqrt returns floor(sqrt(n)) for n >= 0.
func isqrt(n int) int {
	if n < 2 {
		return n
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

// drawStride picks this epoch's sampling step in [1, batchMax].
// A zero draw would never advance, so it is clamped to 1.
func drawStride(rng Rand, batchMax int) int {
	k := rng.IntN(batchMax + 1)
	if k < 1 {
		k = 1
	}
	return k
}
