package evo

import (
	"errors"
	"math"
	"strings"
	"testing"

	"diecup/internal/model"
	"diecup/internal/sim"
)

func tableOracle(genes int) sim.TableNoiseOracle {
	return sim.TableNoiseOracle{
		Genes: genes,
		Noise: map[int64]float64{7: 0.5, 13: -0.25, 21: 1.0},
	}
}

func equalWeights() CompositeWeights {
	return CompositeWeights{Mean: 0.25, StdDev: 0.25, Median: 0.25, Q3: 0.25}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	evaluator, err := NewEvaluator(tableOracle(2), 2, DefaultCompositeWeights())
	if err != nil {
		t.Fatalf("new evaluator: %v", err)
	}

	genes := []float64{1, 2}
	seeds := []int64{7, 13, 21}

	first, firstFitness, err := evaluator.Evaluate(genes, seeds)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	second, secondFitness, err := evaluator.Evaluate(genes, seeds)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if first != second {
		t.Fatalf("stats differ across identical evaluations: %+v vs %+v", first, second)
	}
	if firstFitness != secondFitness {
		t.Fatalf("fitness differs across identical evaluations: %v vs %v", firstFitness, secondFitness)
	}
}

func TestEvaluateAggregates(t *testing.T) {
	evaluator, err := NewEvaluator(tableOracle(2), 1, DefaultCompositeWeights())
	if err != nil {
		t.Fatalf("new evaluator: %v", err)
	}

	// Outcomes for genes [0,0]: 0.5, -0.25, 1.0.
	evalStats, _, err := evaluator.Evaluate([]float64{0, 0}, []int64{7, 13, 21})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	wantMean := (0.5 - 0.25 + 1.0) / 3
	if math.Abs(evalStats.Mean-wantMean) > 1e-12 {
		t.Fatalf("mean: got %v want %v", evalStats.Mean, wantMean)
	}
	if evalStats.Median != 0.5 {
		t.Fatalf("median: got %v want 0.5", evalStats.Median)
	}
	if evalStats.Q3 != 0.75 {
		t.Fatalf("q3: got %v want 0.75", evalStats.Q3)
	}
	if evalStats.Trials != 3 {
		t.Fatalf("trials: got %d want 3", evalStats.Trials)
	}
	wantSE := math.Sqrt(evalStats.Variance / 3)
	if math.Abs(evalStats.StandardError-wantSE) > 1e-12 {
		t.Fatalf("standard error: got %v want %v", evalStats.StandardError, wantSE)
	}
}

// The screening pass must hand every individual the identical seed
// batch, so each cached outcome set matches an independent single-vector
// evaluation on the same seeds.
func TestEvaluatePopulationUsesCommonSeeds(t *testing.T) {
	oracle := tableOracle(2)
	evaluator, err := NewEvaluator(oracle, 4, equalWeights())
	if err != nil {
		t.Fatalf("new evaluator: %v", err)
	}

	population := []*model.Individual{
		model.NewIndividual([]float64{0, 0}),
		model.NewIndividual([]float64{1, 1}),
		model.NewIndividual([]float64{2, 2}),
		model.NewIndividual([]float64{3, 3}),
	}
	seeds := []int64{7, 13, 21}

	if err := evaluator.EvaluatePopulation(population, seeds); err != nil {
		t.Fatalf("evaluate population: %v", err)
	}

	for i, ind := range population {
		wantStats, wantFitness, err := evaluator.Evaluate(ind.Genes, seeds)
		if err != nil {
			t.Fatalf("independent evaluate %d: %v", i, err)
		}
		if ind.Stats != wantStats {
			t.Fatalf("individual %d stats diverge from independent evaluation: %+v vs %+v", i, ind.Stats, wantStats)
		}
		if ind.Fitness != wantFitness {
			t.Fatalf("individual %d fitness diverges: %v vs %v", i, ind.Fitness, wantFitness)
		}
	}

	// Lowest gene sum must rank best under every composite component.
	best := population[0]
	for _, ind := range population[1:] {
		if ind.Fitness < best.Fitness {
			best = ind
		}
	}
	if best.Genes[0] != 0 || best.Genes[1] != 0 {
		t.Fatalf("expected [0,0] to rank best, got %v", best.Genes)
	}
}

func TestEvaluatePopulationSkipsCachedIndividuals(t *testing.T) {
	calls := 0
	oracle := sim.FuncOracle{
		OracleName: "counting",
		Genes:      1,
		Fn: func(genes []float64, seed int64) (float64, error) {
			calls++
			return genes[0], nil
		},
	}
	evaluator, err := NewEvaluator(oracle, 1, DefaultCompositeWeights())
	if err != nil {
		t.Fatalf("new evaluator: %v", err)
	}

	cached := model.NewIndividual([]float64{1})
	cached.Stats = model.EvalStats{Mean: 1, Trials: 5}
	cached.Fitness = 1
	fresh := model.NewIndividual([]float64{2})

	if err := evaluator.EvaluatePopulation([]*model.Individual{cached, fresh}, []int64{1, 2}); err != nil {
		t.Fatalf("evaluate population: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 oracle calls for the fresh individual only, got %d", calls)
	}
	if cached.Stats.Trials != 5 {
		t.Fatal("cached individual was re-evaluated")
	}
}

func TestEvaluatePopulationFailsFastOnOracleError(t *testing.T) {
	boom := errors.New("simulation blew up")
	oracle := sim.FuncOracle{
		OracleName: "failing",
		Genes:      1,
		Fn: func(genes []float64, seed int64) (float64, error) {
			if genes[0] > 1 {
				return 0, boom
			}
			return genes[0], nil
		},
	}
	evaluator, err := NewEvaluator(oracle, 2, DefaultCompositeWeights())
	if err != nil {
		t.Fatalf("new evaluator: %v", err)
	}

	population := []*model.Individual{
		model.NewIndividual([]float64{1}),
		model.NewIndividual([]float64{2}),
	}
	err = evaluator.EvaluatePopulation(population, []int64{1})
	if err == nil {
		t.Fatal("expected oracle failure to abort the generation")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped oracle error, got %v", err)
	}
	if !strings.Contains(err.Error(), "screening") {
		t.Fatalf("error should name the screening phase: %v", err)
	}
	if !strings.Contains(err.Error(), "individual 1") {
		t.Fatalf("error should name the individual: %v", err)
	}
}

func TestEvaluateRejectsNonFiniteOutcome(t *testing.T) {
	oracle := sim.FuncOracle{
		OracleName: "nan",
		Genes:      1,
		Fn: func(genes []float64, seed int64) (float64, error) {
			return math.NaN(), nil
		},
	}
	evaluator, err := NewEvaluator(oracle, 1, DefaultCompositeWeights())
	if err != nil {
		t.Fatalf("new evaluator: %v", err)
	}
	if _, _, err := evaluator.Evaluate([]float64{1}, []int64{1}); err == nil {
		t.Fatal("expected non-finite outcome to be fatal")
	}
}

func TestEvaluateRejectsEmptySeedBatch(t *testing.T) {
	evaluator, err := NewEvaluator(tableOracle(1), 1, DefaultCompositeWeights())
	if err != nil {
		t.Fatalf("new evaluator: %v", err)
	}
	if _, _, err := evaluator.Evaluate([]float64{1}, nil); err == nil {
		t.Fatal("expected error for empty seed batch")
	}
}
