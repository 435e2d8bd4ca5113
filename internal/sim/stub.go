package sim

import "fmt"

// FuncOracle adapts a plain function into an Oracle. Used by tests and
// synthetic benchmarks.
type FuncOracle struct {
	OracleName string
	Genes      int
	Fn         func(genes []float64, seed int64) (float64, error)
}

func (o FuncOracle) Name() string   { return o.OracleName }
func (o FuncOracle) GeneCount() int { return o.Genes }

func (o FuncOracle) Simulate(genes []float64, seed int64) (float64, error) {
	return o.Fn(genes, seed)
}

// TableNoiseOracle scores a gene vector as the sum of its genes plus a
// fixed per-seed noise term. Seeds outside the table are an error, which
// keeps accidental seed drift loud in tests.
type TableNoiseOracle struct {
	Genes int
	Noise map[int64]float64
}

func (o TableNoiseOracle) Name() string   { return "table-noise" }
func (o TableNoiseOracle) GeneCount() int { return o.Genes }

func (o TableNoiseOracle) Simulate(genes []float64, seed int64) (float64, error) {
	noise, ok := o.Noise[seed]
	if !ok {
		return 0, fmt.Errorf("no noise entry for seed %d", seed)
	}
	sum := 0.0
	for _, g := range genes {
		sum += g
	}
	return sum + noise, nil
}
