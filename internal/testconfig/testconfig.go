// Package testconfig provides the seeded test-harness configuration used
// across this module's stress/property tests, grounded on
// original_source/src/tests/mod.rs's TestConfig.
package testconfig

import "math/rand"

// Config controls the scale and reproducibility of stress and property
// tests.
type Config struct {
	// StressThreadCount is the number of threads spawned by a stress test.
	StressThreadCount int
	// StressDurationSecs bounds how long a stress test runs, in seconds.
	StressDurationSecs int
	// PerfIterations is the iteration count for performance-shaped tests.
	PerfIterations int
	// Verbose enables extra t.Log output.
	Verbose bool
	// Seed seeds the test's *rand.Rand for reproducible schedules.
	Seed int64
}

// Default mirrors original_source's TestConfig::default().
func Default() Config {
	return Config{
		StressThreadCount:  100,
		StressDurationSecs: 10,
		PerfIterations:     10000,
		Verbose:            false,
		Seed:               0x12345678,
	}
}

// Quick mirrors TestConfig::quick(): a small, fast, verbose configuration
// for local development.
func Quick() Config {
	return Config{
		StressThreadCount:  10,
		StressDurationSecs: 1,
		PerfIterations:     100,
		Verbose:            true,
		Seed:               0x12345678,
	}
}

// CI mirrors TestConfig::ci(): a larger, quieter configuration with a
// different seed, for thorough CI runs.
func CI() Config {
	return Config{
		StressThreadCount:  50,
		StressDurationSecs: 30,
		PerfIterations:     5000,
		Verbose:            false,
		Seed:               0x87654321,
	}
}

// Rand returns a new seeded random source for the config, used by stress
// tests that need a reproducible schedule of operations.
func (c Config) Rand() *rand.Rand {
	return rand.New(rand.NewSource(c.Seed))
}
