package kmeans

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

func TestDistance_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 5000; i++ {
		var a, b Vec
		for c := 0; c < 3; c++ {
			a[c] = rng.Int64N(1<<17) - 1<<16
			b[c] = rng.Int64N(1<<17) - 1<<16
		}
		want := abs(a[0]-b[0]) + abs(a[1]-b[1]) + abs(a[2]-b[2])

		assert.Equal(t, want, Distance(a, b))
		assert.Equal(t, Distance(a, b), Distance(b, a))
		assert.Zero(t, Distance(a, a))
		assert.GreaterOrEqual(t, Distance(a, b), int64(0))
	}
}

func TestDistance_IgnoresPadding(t *testing.T) {
	assert.Equal(t, int64(6), Distance(Vec{1, 2, 3, 99}, Vec{2, 4, 6, -5}))
	assert.Zero(t, Distance(Vec{0, 0, 0, 1}, Vec{}))
}

func TestIsqrt(t *testing.T) {
	tests := map[int]int{
		0: 0, 1: 1, 2: 1, 3: 1, 4: 2, 8: 2, 9: 3, 15: 3, 16: 4,
		99: 9, 100: 10, 101: 10, 307200: 554, 1 << 40: 1 << 20,
	}
	for n, want := range tests {
		assert.Equal(t, want, isqrt(n), "isqrt(%d)", n)
	}
	for n := 0; n < 10000; n++ {
		r := isqrt(n)
		assert.True(t, r*r <= n && (r+1)*(r+1) > n, "isqrt(%d)=%d", n, r)
	}
}

func TestDrawStride(t *testing.T) {
	assert.Equal(t, 1, drawStride(fixedRand(0), 10), "zero draw is clamped")
	assert.Equal(t, 1, drawStride(fixedRand(0), 0))
	assert.Equal(t, 7, drawStride(fixedRand(7), 10))
	assert.Equal(t, 10, drawStride(fixedRand(50), 10))

	rng := rand.New(rand.NewPCG(1, 1))
	for i := 0; i < 1000; i++ {
		k := drawStride(rng, 12)
		assert.True(t, k >= 1 && k <= 12, "stride %d out of range", k)
	}
}
