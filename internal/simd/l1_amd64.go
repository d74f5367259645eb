//go:build amd64 && !noasm

package simd

// l1Int64x3AVX2 loads each record with a single 256-bit load, so both
// pointers must address four readable int64 lanes.
//
//go:noescape
func l1Int64x3AVX2(a, b *[4]int64) int64

var avx2L1 l1Func = l1Int64x3AVX2
