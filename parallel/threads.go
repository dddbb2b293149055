package parallel

import "fmt"
import "runtime"

import "github.com/klauspost/cpuid/v2"

var threads int

func init() {
	threads = cpuid.CPU.LogicalCores
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if threads <= 0 {
		threads = 1
	}
}

// Threads reports the default number of workers for this machine.
// Can't return 0.
func Threads() int {
	return threads
}

// Describe returns a one line summary of the CPU for startup logging.
func Describe() string {
	var simd = "none"
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ):
		simd = "avx512"
	case cpuid.CPU.Supports(cpuid.AVX2, cpuid.FMA3):
		simd = "avx2+fma"
	case cpuid.CPU.Supports(cpuid.AVX):
		simd = "avx"
	}
	brand := cpuid.CPU.BrandName
	if brand == "" {
		brand = runtime.GOARCH
	}
	return fmt.Sprintf("%s (%d physical, %d logical cores, simd %s)",
		brand, cpuid.CPU.PhysicalCores, threads, simd)
}
