package cpu

import (
	"github.com/klauspost/cpuid/v2"
)

// brandName returns the processor brand string, or a generic label when
// detection is unavailable (some virtualized environments).
func brandName() string {
	if cpuid.CPU.BrandName != "" {
		return cpuid.CPU.BrandName
	}
	return "generic"
}

// Features reports the detected SIMD capabilities relevant to the
// dense kernels. Informational only; the kernels are portable Go.
func Features() []string {
	var out []string
	for _, f := range []struct {
		id   cpuid.FeatureID
		name string
	}{
		{cpuid.SSE42, "sse4.2"},
		{cpuid.AVX, "avx"},
		{cpuid.AVX2, "avx2"},
		{cpuid.AVX512F, "avx512f"},
		{cpuid.FMA3, "fma3"},
	} {
		if cpuid.CPU.Supports(f.id) {
			out = append(out, f.name)
		}
	}
	return out
}

// NumCores returns the logical core count seen by the runtime.
func NumCores() int {
	return cpuid.CPU.LogicalCores
}
