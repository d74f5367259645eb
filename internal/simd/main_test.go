package simd

import (
	"fmt"
	"os"
	"runtime"
	"testing"
)

// TestMain prints which kernel the run exercises.
func TestMain(m *testing.M) {
	fmt.Printf("GOOS=%s GOARCH=%s PLEXQUANT_SIMD=%q\n", runtime.GOOS, runtime.GOARCH, os.Getenv("PLEXQUANT_SIMD"))
	fmt.Printf("active ISA: %s (override=%v, avx2=%v)\n\n", ActiveISA(), IsOverridden(), HasAVX2())
	os.Exit(m.Run())
}
