package memory

import (
	"math"
	"testing"
)

type fakeEnv map[string]string

func (e fakeEnv) get(key string) string { return e[key] }

// recorder stands in for debug.SetMemoryLimit.
type recorder struct {
	current int64
	set     []int64
}

func (r *recorder) setLimit(limit int64) int64 {
	prev := r.current
	if limit >= 0 {
		r.current = limit
		r.set = append(r.set, limit)
	}
	return prev
}

func TestConfigure(t *testing.T) {
	tests := []struct {
		name       string
		env        fakeEnv
		current    int64
		configured bool
		source     string
		goMemLimit int64
		ratio      float64
		applied    bool
	}{
		{
			name:    "nothing set",
			env:     fakeEnv{},
			current: math.MaxInt64,
			source:  "none",
		},
		{
			name:       "GOMEMLIMIT reported, not overridden",
			env:        fakeEnv{"GOMEMLIMIT": "500MiB", "MEMORY_LIMIT": "1073741824"},
			current:    500 * 1024 * 1024,
			configured: true,
			source:     "GOMEMLIMIT",
			goMemLimit: 500 * 1024 * 1024,
		},
		{
			name:       "MEMORY_LIMIT with default ratio",
			env:        fakeEnv{"MEMORY_LIMIT": "1000"},
			current:    math.MaxInt64,
			configured: true,
			source:     "MEMORY_LIMIT",
			goMemLimit: 850,
			ratio:      DefaultMemoryRatio,
			applied:    true,
		},
		{
			name:       "MEMORY_LIMIT with custom ratio",
			env:        fakeEnv{"MEMORY_LIMIT": "1000", "MEMORY_RATIO": "0.5"},
			current:    math.MaxInt64,
			configured: true,
			source:     "MEMORY_LIMIT",
			goMemLimit: 500,
			ratio:      0.5,
			applied:    true,
		},
		{
			name:       "ratio out of range falls back",
			env:        fakeEnv{"MEMORY_LIMIT": "1000", "MEMORY_RATIO": "1.5"},
			current:    math.MaxInt64,
			configured: true,
			source:     "MEMORY_LIMIT",
			goMemLimit: 850,
			ratio:      DefaultMemoryRatio,
			applied:    true,
		},
		{
			name:       "unparsable ratio falls back",
			env:        fakeEnv{"MEMORY_LIMIT": "1000", "MEMORY_RATIO": "half"},
			current:    math.MaxInt64,
			configured: true,
			source:     "MEMORY_LIMIT",
			goMemLimit: 850,
			ratio:      DefaultMemoryRatio,
			applied:    true,
		},
		{
			name:    "unparsable MEMORY_LIMIT ignored",
			env:     fakeEnv{"MEMORY_LIMIT": "1Gi"},
			current: math.MaxInt64,
			source:  "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{current: tt.current}
			result := Configure(tt.env.get, rec.setLimit)

			if result.Configured != tt.configured {
				t.Errorf("Configured = %v, want %v", result.Configured, tt.configured)
			}
			if result.Source != tt.source {
				t.Errorf("Source = %q, want %q", result.Source, tt.source)
			}
			if result.GoMemLimit != tt.goMemLimit {
				t.Errorf("GoMemLimit = %d, want %d", result.GoMemLimit, tt.goMemLimit)
			}
			if result.Ratio != tt.ratio {
				t.Errorf("Ratio = %v, want %v", result.Ratio, tt.ratio)
			}
			if applied := len(rec.set) > 0; applied != tt.applied {
				t.Errorf("limit applied = %v, want %v (calls: %v)", applied, tt.applied, rec.set)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1024 * 1024, "1.0 MiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
