package evo

import "math/rand"

// SeedGenerator owns the master randomness for a run and hands out
// ordered trial seed batches. Within one generation every individual is
// evaluated against the identical batch, seed for seed; that is the
// common-random-numbers contract that keeps comparisons fair.
type SeedGenerator struct {
	rng *rand.Rand
}

// NewSeedGenerator creates a generator from a master seed.
func NewSeedGenerator(seed int64) *SeedGenerator {
	return &SeedGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Batch returns a fresh ordered sequence of n trial seeds.
func (g *SeedGenerator) Batch(n int) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = g.rng.Int63()
	}
	return seeds
}
