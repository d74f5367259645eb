//go:build !amd64 || noasm

package simd

var avx2L1 l1Func
