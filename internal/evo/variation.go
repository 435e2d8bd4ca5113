package evo

import (
	"math/rand"

	"diecup/internal/model"
)

// GeneRange is the exploration interval used for initialization and for
// full-gene reset mutations.
type GeneRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// DefaultGeneRange allows exploration on both sides of the usual
// heuristic weight scale.
func DefaultGeneRange() GeneRange {
	return GeneRange{Min: -1, Max: 2}
}

// Sample draws a uniform value from the range.
func (r GeneRange) Sample(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// RandomGenes draws a fresh gene vector of length d from the range.
func RandomGenes(rng *rand.Rand, d int, bounds GeneRange) []float64 {
	genes := make([]float64, d)
	for i := range genes {
		genes[i] = bounds.Sample(rng)
	}
	return genes
}

// CrossoverMethod tags the three interchangeable crossover operators.
type CrossoverMethod int

const (
	// CrossoverBlend interpolates every gene with one shared alpha.
	CrossoverBlend CrossoverMethod = iota
	// CrossoverAverage takes the per-gene midpoint.
	CrossoverAverage
	// CrossoverUniform copies each gene from either parent with equal odds.
	CrossoverUniform

	crossoverMethodCount
)

// Crossover picks one of the three operators uniformly at random and
// produces a child gene vector. Parents are never modified.
func Crossover(rng *rand.Rand, p1, p2 []float64) []float64 {
	return CrossoverWith(rng, p1, p2, CrossoverMethod(rng.Intn(int(crossoverMethodCount))))
}

// CrossoverWith applies one specific operator.
func CrossoverWith(rng *rand.Rand, p1, p2 []float64, method CrossoverMethod) []float64 {
	child := make([]float64, len(p1))
	switch method {
	case CrossoverBlend:
		alpha := rng.Float64()
		for i := range child {
			child[i] = p1[i] + alpha*(p2[i]-p1[i])
		}
	case CrossoverAverage:
		for i := range child {
			child[i] = (p1[i] + p2[i]) / 2
		}
	case CrossoverUniform:
		for i := range child {
			if rng.Intn(2) == 0 {
				child[i] = p1[i]
			} else {
				child[i] = p2[i]
			}
		}
	}
	return child
}

// Mutator applies per-gene Gaussian noise plus an occasional full reset
// of a single gene back into the exploration range.
type Mutator struct {
	RatePerGene float64
	LargeRate   float64
	Bounds      GeneRange
}

// Mutate perturbs the individual in place using the current mutation
// strength as the Gaussian sigma. Any change invalidates the cached
// fitness so the individual is re-screened.
func (m Mutator) Mutate(rng *rand.Rand, ind *model.Individual, strength float64) {
	mutated := false

	for i := range ind.Genes {
		if rng.Float64() < m.RatePerGene {
			ind.Genes[i] += rng.NormFloat64() * strength
			mutated = true
		}
	}

	if rng.Float64() < m.LargeRate {
		idx := rng.Intn(len(ind.Genes))
		ind.Genes[idx] = m.Bounds.Sample(rng)
		mutated = true
	}

	if mutated {
		ind.Invalidate()
	}
}
