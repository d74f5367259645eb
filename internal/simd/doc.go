// Package simd holds the distance kernels used by the clustering core.
//
// Records are four int64 lanes wide: three color channels and one padding
// lane. Kernels never treat the padding lane as a channel, so every
// implementation returns the same value for the same records.
//
// The kernel is chosen once at init. PLEXQUANT_SIMD=generic|avx2 forces a
// choice; an override naming an ISA the CPU lacks is ignored.
package simd
