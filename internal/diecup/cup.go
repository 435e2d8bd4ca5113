// Package diecup implements the dice-cup game the tuner optimizes
// against: roll a cup of dice, pick a target number, and collect it
// until every number 1..12 has five points. The tunable weighted-select
// heuristic that picks targets lives in strategy.go.
package diecup

import "math/rand"

// Cup is one roll of n dice plus the derived collectable-value counts.
type Cup struct {
	dice   []int
	values map[int]int
}

// RollCup rolls count dice with the given side count from rng.
func RollCup(count, sides int, rng *rand.Rand) *Cup {
	dice := make([]int, count)
	for i := range dice {
		dice[i] = rng.Intn(sides) + 1
	}
	cup := &Cup{dice: dice}
	cup.values = buildValues(dice)
	return cup
}

// Size returns the number of dice in the cup.
func (c *Cup) Size() int { return len(c.dice) }

// Values maps each collectable number to how many of it this roll can
// produce. Numbers 1-6 count single dice; numbers 7-12 count the best
// disjoint pairing of two dice summing to the target.
func (c *Cup) Values() map[int]int { return c.values }

func buildValues(dice []int) map[int]int {
	values := make(map[int]int)
	for _, face := range dice {
		values[face]++
	}

	// For every two-die sum above 6, the count is the largest set of
	// disjoint pairs hitting that sum.
	for i := 0; i < len(dice); i++ {
		for j := i + 1; j < len(dice); j++ {
			target := dice[i] + dice[j]
			if target <= 6 {
				continue
			}
			rest := withoutPair(dice, i, j)
			pairs := 1 + countSumPairs(rest, target)
			if pairs > values[target] {
				values[target] = pairs
			}
		}
	}
	return values
}

func withoutPair(dice []int, i, j int) []int {
	rest := make([]int, 0, len(dice)-2)
	for k, face := range dice {
		if k != i && k != j {
			rest = append(rest, face)
		}
	}
	return rest
}

func countSumPairs(dice []int, target int) int {
	if len(dice) <= 1 || target <= 6 {
		return 0
	}
	max := 0
	for i := 0; i < len(dice); i++ {
		for j := i + 1; j < len(dice); j++ {
			if dice[i]+dice[j] != target {
				continue
			}
			pairs := 1 + countSumPairs(withoutPair(dice, i, j), target)
			if pairs > max {
				max = pairs
			}
		}
	}
	return max
}

// DiceToRemove returns how many dice collecting the given number spends:
// one per point for single-die numbers, two per point for pair sums.
func DiceToRemove(number, points int) int {
	if number <= 6 {
		return points
	}
	return points * 2
}
