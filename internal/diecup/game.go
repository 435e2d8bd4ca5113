package diecup

import "math/rand"

// Game plays full rounds of the dice-cup game with a fixed strategy.
type Game struct {
	dice     int
	sides    int
	strategy *Strategy
}

// NewGame wires a strategy to a cup configuration.
func NewGame(dice, sides int, strategy *Strategy) *Game {
	return &Game{dice: dice, sides: sides, strategy: strategy}
}

// Play runs one game to completion and returns the number of turns it
// took to fill the board. All randomness comes from rng, so the outcome
// is a pure function of the rng seed and the strategy weights.
func (g *Game) Play(rng *rand.Rand) int {
	board := NewScoreboard(2 * g.sides)
	turns := 0

	for !board.Complete() {
		turns++
		if g.playTurn(board, rng) {
			// Free turn: the spent turn is not counted.
			turns--
		}
	}
	return turns
}

// playTurn rolls a full cup, commits to one target number, and keeps
// collecting it from rerolls of the remaining dice until the number no
// longer appears. Reports whether the turn earned a free turn (all dice
// spent or a slot filled).
func (g *Game) playTurn(board *Scoreboard, rng *rand.Rand) bool {
	cup := RollCup(g.dice, g.sides, rng)
	number := g.strategy.SelectNumber(cup.Values(), board)
	if number == -1 {
		return false
	}

	for {
		points, ok := cup.Values()[number]
		if !ok {
			return false
		}
		board.AddPoints(number, points)

		remaining := cup.Size() - DiceToRemove(number, points)
		allSpent := remaining <= 0
		slotFull := board.Points(number) >= MaxPointsPerNumber

		if board.Complete() {
			return false
		}
		if allSpent || slotFull {
			return true
		}
		cup = RollCup(remaining, g.sides, rng)
	}
}
