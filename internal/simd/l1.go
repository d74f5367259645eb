package simd

type l1Func func(a, b *[4]int64) int64

var l1Impl l1Func = l1Generic

func selectKernels(isa ISA) {
	switch isa {
	case AVX2:
		l1Impl = avx2L1
	default:
		l1Impl = l1Generic
	}
}

// L1Int64x3 returns |a0-b0| + |a1-b1| + |a2-b2|. Lane 3 of either record is
// ignored. Arithmetic wraps like ordinary int64 math.
func L1Int64x3(a, b *[4]int64) int64 {
	return l1Impl(a, b)
}

func l1Generic(a, b *[4]int64) int64 {
	return abs64(a[0]-b[0]) + abs64(a[1]-b[1]) + abs64(a[2]-b[2])
}

func abs64(x int64) int64 {
	m := x >> 63
	return (x ^ m) - m
}
