// Package proptest provides seeded random generation for property tests.
//
// When a property fails, the seed is logged so the failure can be
// reproduced with PROPTEST_SEED:
//
//	func TestLimitAlwaysHasOffset(t *testing.T) {
//	    proptest.QuickCheck(t, "limit has offset", func(g *proptest.Generator) bool {
//	        n := g.IntRange(0, 1000)
//	        ...
//	    })
//	}
package proptest

import (
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// Generator wraps a seeded random number generator.
type Generator struct {
	rng  *rand.Rand
	seed int64
}

// New creates a Generator. A zero seed means the current time.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the seed used by this generator.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Intn returns a random int in [0, n).
func (g *Generator) Intn(n int) int {
	return g.rng.Intn(n)
}

// IntRange returns a random int in [min, max].
func (g *Generator) IntRange(min, max int) int {
	if min > max {
		panic("proptest: IntRange min > max")
	}
	return min + g.rng.Intn(max-min+1)
}

// Bool returns a random boolean.
func (g *Generator) Bool() bool {
	return g.rng.Intn(2) == 1
}

// Pick returns a random element of a non-empty slice.
func Pick[T any](g *Generator, values []T) T {
	if len(values) == 0 {
		panic("proptest: Pick called with empty slice")
	}
	return values[g.Intn(len(values))]
}

// SliceN returns between minLen and maxLen values from gen.
func SliceN[T any](g *Generator, minLen, maxLen int, gen func(*Generator) T) []T {
	out := make([]T, g.IntRange(minLen, maxLen))
	for i := range out {
		out[i] = gen(g)
	}
	return out
}

// Config controls property test behavior.
type Config struct {
	// NumTrials is the number of iterations. Default: 100.
	NumTrials int

	// Seed fixes the random seed. PROPTEST_SEED overrides it.
	Seed int64
}

func effectiveSeed(cfg Config) int64 {
	if env := os.Getenv("PROPTEST_SEED"); env != "" {
		if seed, err := strconv.ParseInt(env, 10, 64); err == nil {
			return seed
		}
	}
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return time.Now().UnixNano()
}

// Check runs prop NumTrials times. The first failing trial fails the test
// and logs the seed.
func Check(t *testing.T, name string, cfg Config, prop func(g *Generator) bool) {
	t.Helper()

	if cfg.NumTrials <= 0 {
		cfg.NumTrials = 100
	}
	seed := effectiveSeed(cfg)
	g := New(seed)

	for i := 0; i < cfg.NumTrials; i++ {
		if !prop(g) {
			t.Errorf("proptest %q failed on trial %d (seed=%d, use PROPTEST_SEED=%d to reproduce)",
				name, i+1, seed, seed)
			return
		}
	}
}

// QuickCheck runs Check with 100 trials.
func QuickCheck(t *testing.T, name string, prop func(g *Generator) bool) {
	t.Helper()
	Check(t, name, Config{}, prop)
}
