package workers

import (
	"os"
	"runtime"
	"strconv"
)

// OverrideEnv fixes the thread count regardless of available CPUs.
const OverrideEnv = "VIPS_CONCURRENCY"

// Count returns how many threads a CPU-hungry library should use: the
// available CPUs times multiplier, at least 1 and at most limit (0 means
// no cap). It respects container CPU limits via GOMAXPROCS.
//
// A positive integer in VIPS_CONCURRENCY takes precedence, still capped by limit.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(OverrideEnv); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	// GOMAXPROCS follows the container CPU limit
	available := runtime.GOMAXPROCS(0)

	n := int(float64(available) * multiplier)
	if n < 1 {
		n = 1
	}
	if limit > 0 && n > limit {
		n = limit
	}
	return n
}

// ForCPU returns a thread count for CPU-bound work (1 per CPU), capped by limit.
func ForCPU(limit int) int {
	return Count(1.0, limit)
}
