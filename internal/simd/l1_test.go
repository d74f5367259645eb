package simd

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestL1Int64x3(t *testing.T) {
	tests := []struct {
		name string
		a, b [4]int64
		want int64
	}{
		{"zero", [4]int64{}, [4]int64{}, 0},
		{"identity", [4]int64{12, 200, 7}, [4]int64{12, 200, 7}, 0},
		{"positive", [4]int64{10, 20, 30}, [4]int64{13, 15, 30}, 8},
		{"negative channels", [4]int64{-5, 0, 5}, [4]int64{5, -3, -5}, 23},
		{"padding ignored", [4]int64{1, 2, 3, 1000}, [4]int64{1, 2, 3, -1000}, 0},
		{"16-bit range", [4]int64{0, 0, 0}, [4]int64{65535, 65535, 65535}, 3 * 65535},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, L1Int64x3(&tt.a, &tt.b))
			assert.Equal(t, tt.want, L1Int64x3(&tt.b, &tt.a))
			assert.Equal(t, tt.want, l1Generic(&tt.a, &tt.b))
		})
	}
}

func TestL1KernelsAgree(t *testing.T) {
	if !isISAAvailable(AVX2) {
		t.Skip("AVX2 kernel not available")
	}
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 10000; i++ {
		var a, b [4]int64
		for j := range a {
			a[j] = rng.Int64N(1<<20) - 1<<19
			b[j] = rng.Int64N(1<<20) - 1<<19
		}
		require.Equal(t, l1Generic(&a, &b), avx2L1(&a, &b), "a=%v b=%v", a, b)
	}

	extreme := [4]int64{math.MinInt64, math.MaxInt64, 0, math.MaxInt64}
	zero := [4]int64{}
	assert.Equal(t, l1Generic(&extreme, &zero), avx2L1(&extreme, &zero))
}

func TestParseISA(t *testing.T) {
	isa, ok := ParseISA(" AVX2 ")
	assert.True(t, ok)
	assert.Equal(t, AVX2, isa)

	isa, ok = ParseISA("generic")
	assert.True(t, ok)
	assert.Equal(t, Generic, isa)

	_, ok = ParseISA("sse9")
	assert.False(t, ok)
	assert.Equal(t, "unknown", ISA(42).String())
}

func TestSelectKernels(t *testing.T) {
	defer selectKernels(activeISA)

	selectKernels(Generic)
	a, b := [4]int64{1, 2, 3}, [4]int64{4, 6, 8}
	assert.Equal(t, int64(12), L1Int64x3(&a, &b))
}

func BenchmarkL1Int64x3(b *testing.B) {
	x, y := [4]int64{12, 200, 7}, [4]int64{250, 3, 99}
	b.Run("active", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = L1Int64x3(&x, &y)
		}
	})
	b.Run("generic", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = l1Generic(&x, &y)
		}
	})
}
