package simd

import (
	"os"
	"strings"
)

// ISA identifies a kernel implementation.
type ISA uint8

const (
	// Generic is the portable Go kernel.
	Generic ISA = iota
	// AVX2 is the 256-bit x86-64 kernel.
	AVX2
)

// String returns the lower-case ISA name.
func (i ISA) String() string {
	switch i {
	case Generic:
		return "generic"
	case AVX2:
		return "avx2"
	default:
		return "unknown"
	}
}

// ParseISA parses a name as accepted by PLEXQUANT_SIMD.
func ParseISA(s string) (ISA, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic":
		return Generic, true
	case "avx2":
		return AVX2, true
	default:
		return Generic, false
	}
}

// Set once during package init.
var (
	activeISA   ISA
	hasOverride bool
	hasAVX2     bool
)

// initCapabilities runs from the platform init after CPU flags are known.
func initCapabilities() {
	activeISA = selectBestISA()
	if override := os.Getenv("PLEXQUANT_SIMD"); override != "" {
		if isa, ok := ParseISA(override); ok && isISAAvailable(isa) {
			activeISA = isa
			hasOverride = true
		}
	}
	selectKernels(activeISA)
}

func isISAAvailable(isa ISA) bool {
	switch isa {
	case Generic:
		return true
	case AVX2:
		return hasAVX2 && avx2L1 != nil
	default:
		return false
	}
}

func selectBestISA() ISA {
	if isISAAvailable(AVX2) {
		return AVX2
	}
	return Generic
}

// ActiveISA returns the kernel implementation in use.
func ActiveISA() ISA {
	return activeISA
}

// IsOverridden reports whether PLEXQUANT_SIMD picked the active ISA.
func IsOverridden() bool {
	return hasOverride
}

// HasAVX2 reports whether the CPU supports AVX2.
func HasAVX2() bool {
	return hasAVX2
}
