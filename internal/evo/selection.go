package evo

import (
	"fmt"
	"math/rand"

	"diecup/internal/model"
)

// TournamentSelector samples individuals uniformly with replacement and
// returns the one with the lowest fitness. A larger size raises
// selection pressure.
type TournamentSelector struct {
	Size int
}

// PickParent runs one tournament over the population.
func (s TournamentSelector) PickParent(rng *rand.Rand, population []*model.Individual) (*model.Individual, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(population) == 0 {
		return nil, fmt.Errorf("population is empty")
	}

	size := s.Size
	if size <= 0 {
		size = 3
	}

	best := population[rng.Intn(len(population))]
	for i := 1; i < size; i++ {
		candidate := population[rng.Intn(len(population))]
		if candidate.Fitness < best.Fitness {
			best = candidate
		}
	}
	return best, nil
}
