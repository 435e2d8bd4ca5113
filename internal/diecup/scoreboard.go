package diecup

// MaxPointsPerNumber is the game rule cap: five points fill a slot.
const MaxPointsPerNumber = 5

// Scoreboard tracks collected points for numbers 1..max.
type Scoreboard struct {
	points []int
}

// NewScoreboard creates an empty board for numbers 1..max.
func NewScoreboard(max int) *Scoreboard {
	return &Scoreboard{points: make([]int, max+1)}
}

// Points returns the collected points for a number.
func (s *Scoreboard) Points(number int) int {
	if number < 1 || number >= len(s.points) {
		return 0
	}
	return s.points[number]
}

// AddPoints adds points to a number, capped at MaxPointsPerNumber.
func (s *Scoreboard) AddPoints(number, points int) {
	if number < 1 || number >= len(s.points) {
		return
	}
	s.points[number] += points
	if s.points[number] > MaxPointsPerNumber {
		s.points[number] = MaxPointsPerNumber
	}
}

// Complete reports whether every slot is full.
func (s *Scoreboard) Complete() bool {
	for number := 1; number < len(s.points); number++ {
		if s.points[number] < MaxPointsPerNumber {
			return false
		}
	}
	return true
}
