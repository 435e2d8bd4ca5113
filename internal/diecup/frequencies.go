package diecup

import "math/rand"

// frequencySeed fixes the Monte Carlo sampling below so a cup
// configuration always produces the same frequency table. Simulation
// outcomes must stay a pure function of (weights, game seed).
const frequencySeed = 98122546

const frequencyIterations = 10000

// Frequencies estimates the expected per-roll count of each collectable
// number for a full cup, by sampling rolls. The table feeds the rarity
// and opportunity terms of the strategy.
func Frequencies(dice, sides int) map[int]float64 {
	rng := rand.New(rand.NewSource(frequencySeed))
	totals := make(map[int]int)

	for i := 0; i < frequencyIterations; i++ {
		cup := RollCup(dice, sides, rng)
		for number, count := range cup.Values() {
			totals[number] += count
		}
	}

	frequencies := make(map[int]float64, len(totals))
	for number, total := range totals {
		frequencies[number] = float64(total) / frequencyIterations
	}
	return frequencies
}
