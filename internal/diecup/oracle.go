package diecup

import (
	"fmt"
	"math/rand"

	"diecup/internal/sim"
)

// Oracle adapts the game to the optimizer's simulation boundary. The
// frequency table is computed once at construction and only read
// afterwards, so Simulate is safe to call from many goroutines.
type Oracle struct {
	dice        int
	sides       int
	frequencies map[int]float64
}

// NewOracle builds an oracle for the given cup configuration.
func NewOracle(dice, sides int) (*Oracle, error) {
	if dice < 2 {
		// Pair sums need two dice; with fewer the board can never fill.
		return nil, fmt.Errorf("dice count must be >= 2, got %d", dice)
	}
	if sides <= 1 {
		return nil, fmt.Errorf("sides per die must be > 1, got %d", sides)
	}
	return &Oracle{
		dice:        dice,
		sides:       sides,
		frequencies: Frequencies(dice, sides),
	}, nil
}

func (o *Oracle) Name() string   { return "diecup" }
func (o *Oracle) GeneCount() int { return WeightCount }

// Simulate plays one seeded game with the given strategy weights and
// returns the turn count. Same genes and seed always produce the same
// outcome.
func (o *Oracle) Simulate(genes []float64, seed int64) (float64, error) {
	strategy, err := NewStrategy(genes, o.frequencies)
	if err != nil {
		return 0, err
	}
	rng := rand.New(rand.NewSource(seed))
	game := NewGame(o.dice, o.sides, strategy)
	return float64(game.Play(rng)), nil
}

var _ sim.Oracle = (*Oracle)(nil)
