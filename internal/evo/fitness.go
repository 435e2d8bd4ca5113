package evo

import (
	"fmt"
	"math"

	"diecup/internal/model"
)

// CompositeWeights blends the evaluation statistics into the scalar
// fitness. All four components are in turns and lower is better, so no
// sign flips are needed; the weights must be non-negative and sum to 1.
type CompositeWeights struct {
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"stddev"`
	Median float64 `yaml:"median"`
	Q3     float64 `yaml:"q3"`
}

// DefaultCompositeWeights favors the mean with equal tail/variance terms.
func DefaultCompositeWeights() CompositeWeights {
	return CompositeWeights{Mean: 0.55, StdDev: 0.15, Median: 0.15, Q3: 0.15}
}

const compositeSumTolerance = 1e-9

// Validate fails fast on negative weights or a sum away from 1.
func (w CompositeWeights) Validate() error {
	for _, part := range []struct {
		name  string
		value float64
	}{
		{"mean", w.Mean},
		{"stddev", w.StdDev},
		{"median", w.Median},
		{"q3", w.Q3},
	} {
		if part.value < 0 || math.IsNaN(part.value) {
			return fmt.Errorf("composite weight %s must be >= 0, got %v", part.name, part.value)
		}
	}
	sum := w.Mean + w.StdDev + w.Median + w.Q3
	if math.Abs(sum-1) > compositeSumTolerance {
		return fmt.Errorf("composite weights must sum to 1, got %v", sum)
	}
	return nil
}

// Composite collapses evaluation statistics into the scalar fitness.
func (w CompositeWeights) Composite(s model.EvalStats) float64 {
	return w.Mean*s.Mean + w.StdDev*math.Sqrt(s.Variance) + w.Median*s.Median + w.Q3*s.Q3
}
