package diecup

import (
	"fmt"
	"math"
)

// WeightCount is the number of tunable weights in the select heuristic.
const WeightCount = 8

// WeightNames labels the genes in display order.
var WeightNames = []string{
	"OpportunityWeight", "RarityWeight", "ProgressWeight", "RarityScalar",
	"CollectionWeight", "CollectionScalar", "CompletionWeight", "CatchUpWeight",
}

// DefaultWeights are the hand-tuned heuristic defaults, useful for
// seeding the optimizer with a known-good starting point.
func DefaultWeights() []float64 {
	return []float64{0.361, 0.724, 1.000, 0.017, 0.798, 0.000, 0.302, 0.939}
}

// Strategy scores each collectable number of a roll and picks the best.
// Frequencies are the expected per-roll counts of each number on a full
// cup; they shape the rarity and opportunity terms.
type Strategy struct {
	opportunityWeight float64
	rarityWeight      float64
	progressWeight    float64
	rarityScalar      float64
	collectionWeight  float64
	collectionScalar  float64
	completionWeight  float64
	catchUpWeight     float64

	frequencies map[int]float64
}

// NewStrategy builds a strategy from a weight vector of length WeightCount.
func NewStrategy(weights []float64, frequencies map[int]float64) (*Strategy, error) {
	if len(weights) != WeightCount {
		return nil, fmt.Errorf("strategy requires %d weights, got %d", WeightCount, len(weights))
	}
	return &Strategy{
		opportunityWeight: weights[0],
		rarityWeight:      weights[1],
		progressWeight:    weights[2],
		rarityScalar:      weights[3],
		collectionWeight:  weights[4],
		collectionScalar:  weights[5],
		completionWeight:  weights[6],
		catchUpWeight:     weights[7],
		frequencies:       frequencies,
	}, nil
}

// SelectNumber returns the highest-scoring collectable number for the
// roll, or -1 when nothing on the board can still be collected.
func (s *Strategy) SelectNumber(values map[int]int, board *Scoreboard) int {
	best := -1
	bestScore := math.Inf(-1)

	for number, countInThrow := range values {
		onBoard := board.Points(number)
		if onBoard >= MaxPointsPerNumber {
			continue
		}
		collectable := countInThrow
		if room := MaxPointsPerNumber - onBoard; collectable > room {
			collectable = room
		}
		if collectable <= 0 {
			continue
		}
		score := s.score(number, collectable, onBoard)
		if score > bestScore || (score == bestScore && number < best) {
			best = number
			bestScore = score
		}
	}
	return best
}

func (s *Strategy) score(number, collectable, onBoard int) float64 {
	frequency := s.frequencies[number]
	if frequency == 0 {
		return 0
	}

	rarity := float64(collectable) / math.Pow(frequency, 1-s.rarityScalar)

	progressBefore := float64(onBoard) / MaxPointsPerNumber
	after := onBoard + collectable
	if after > MaxPointsPerNumber {
		after = MaxPointsPerNumber
	}
	progress := float64(after)/MaxPointsPerNumber - progressBefore

	opportunity := float64(collectable) - frequency*MaxPointsPerNumber
	collection := math.Pow(float64(collectable), s.collectionScalar)

	completion := 0.0
	if onBoard+collectable == MaxPointsPerNumber {
		completion = 1.0
	}
	catchUp := 1 - float64(onBoard)/MaxPointsPerNumber

	return s.rarityWeight*rarity +
		s.progressWeight*progress +
		s.opportunityWeight*opportunity +
		s.collectionWeight*collection +
		s.completionWeight*completion +
		s.catchUpWeight*catchUp
}
