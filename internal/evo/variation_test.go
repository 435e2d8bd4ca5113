package evo

import (
	"math"
	"math/rand"
	"testing"

	"diecup/internal/model"
)

func TestBlendAndAverageCrossoverStayWithinParentBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p1 := []float64{-1, 0.5, 2, 0}
	p2 := []float64{1, -0.5, 0, 0}

	for trial := 0; trial < 200; trial++ {
		for _, method := range []CrossoverMethod{CrossoverBlend, CrossoverAverage} {
			child := CrossoverWith(rng, p1, p2, method)
			for i := range child {
				lo := math.Min(p1[i], p2[i])
				hi := math.Max(p1[i], p2[i])
				if child[i] < lo || child[i] > hi {
					t.Fatalf("method %d gene %d out of bounds: %v not in [%v,%v]", method, i, child[i], lo, hi)
				}
			}
		}
	}
}

func TestBlendCrossoverSharesAlphaAcrossGenes(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	p1 := []float64{0, 0, 0}
	p2 := []float64{1, 2, 4}

	child := CrossoverWith(rng, p1, p2, CrossoverBlend)
	alpha := child[0]
	if math.Abs(child[1]-2*alpha) > 1e-12 || math.Abs(child[2]-4*alpha) > 1e-12 {
		t.Fatalf("alpha not shared across genes: %v", child)
	}
}

func TestUniformCrossoverCopiesParentGenes(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	p1 := []float64{1, 1, 1, 1}
	p2 := []float64{2, 2, 2, 2}

	child := CrossoverWith(rng, p1, p2, CrossoverUniform)
	for i, g := range child {
		if g != 1 && g != 2 {
			t.Fatalf("gene %d not copied from a parent: %v", i, g)
		}
	}
}

func TestCrossoverDoesNotAliasParents(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	p1 := []float64{1, 1}
	p2 := []float64{2, 2}

	child := Crossover(rng, p1, p2)
	child[0] = 99
	if p1[0] != 1 || p2[0] != 2 {
		t.Fatal("child genes alias a parent vector")
	}
}

func TestMutateNoOpWithZeroRates(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	mutator := Mutator{RatePerGene: 0, LargeRate: 0, Bounds: DefaultGeneRange()}

	ind := model.NewIndividual([]float64{0.1, 0.2, 0.3})
	ind.Stats = model.EvalStats{Mean: 5, Trials: 10}
	ind.Fitness = 5
	ind.Confirmed = true

	mutator.Mutate(rng, ind, 0.15)

	if ind.Genes[0] != 0.1 || ind.Genes[1] != 0.2 || ind.Genes[2] != 0.3 {
		t.Fatalf("genes changed: %v", ind.Genes)
	}
	if !ind.Evaluated() || !ind.Confirmed || ind.Fitness != 5 {
		t.Fatal("cached fitness was invalidated without a mutation")
	}
}

func TestMutateInvalidatesCache(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	mutator := Mutator{RatePerGene: 1, LargeRate: 0, Bounds: DefaultGeneRange()}

	ind := model.NewIndividual([]float64{0.1, 0.2})
	ind.Stats = model.EvalStats{Mean: 5, Trials: 10}
	ind.Fitness = 5
	ind.Confirmed = true

	mutator.Mutate(rng, ind, 0.15)

	if ind.Evaluated() {
		t.Fatal("mutation must clear cached trials")
	}
	if ind.Confirmed {
		t.Fatal("mutation must clear the confirmed flag")
	}
}

func TestLargeMutationResetsIntoRange(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	bounds := GeneRange{Min: -1, Max: 2}
	mutator := Mutator{RatePerGene: 0, LargeRate: 1, Bounds: bounds}

	for trial := 0; trial < 100; trial++ {
		ind := model.NewIndividual([]float64{100, 100, 100})
		mutator.Mutate(rng, ind, 0.15)

		resets := 0
		for _, g := range ind.Genes {
			if g != 100 {
				resets++
				if g < bounds.Min || g >= bounds.Max {
					t.Fatalf("reset gene outside exploration range: %v", g)
				}
			}
		}
		if resets != 1 {
			t.Fatalf("expected exactly one gene reset, got %d", resets)
		}
	}
}

func TestTournamentPicksLowestFitness(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	population := []*model.Individual{
		{Genes: []float64{1}, Fitness: 30},
		{Genes: []float64{2}, Fitness: 10},
		{Genes: []float64{3}, Fitness: 20},
	}

	selector := TournamentSelector{Size: 64}
	// A tournament this much larger than the population contains the
	// global best with overwhelming probability.
	for trial := 0; trial < 5; trial++ {
		parent, err := selector.PickParent(rng, population)
		if err != nil {
			t.Fatalf("pick parent: %v", err)
		}
		if parent.Fitness != 10 {
			t.Fatalf("expected fitness 10 winner, got %v", parent.Fitness)
		}
	}
}

func TestTournamentShunsUnevaluated(t *testing.T) {
	rng := rand.New(rand.NewSource(9))

	population := make([]*model.Individual, 0, 14)
	for i := 0; i < 10; i++ {
		population = append(population, &model.Individual{
			Genes:   []float64{float64(i)},
			Fitness: float64(20 + i),
			Stats:   model.EvalStats{Mean: float64(20 + i), Trials: 10},
		})
	}
	for i := 0; i < 4; i++ {
		population = append(population, model.NewIndividual(RandomGenes(rng, 1, DefaultGeneRange())))
	}

	selector := TournamentSelector{Size: 3}
	unevaluated := 0
	for draw := 0; draw < 1000; draw++ {
		parent, err := selector.PickParent(rng, population)
		if err != nil {
			t.Fatalf("pick parent: %v", err)
		}
		if !parent.Evaluated() {
			unevaluated++
		}
	}
	// An unevaluated individual carries +Inf fitness, so it can only win
	// a tournament sampled entirely from unevaluated individuals.
	if unevaluated > 150 {
		t.Fatalf("unevaluated individuals won %d of 1000 tournaments", unevaluated)
	}
}

func TestTournamentRequiresPopulation(t *testing.T) {
	selector := TournamentSelector{Size: 3}
	if _, err := selector.PickParent(rand.New(rand.NewSource(1)), nil); err == nil {
		t.Fatal("expected error for empty population")
	}
	if _, err := selector.PickParent(nil, []*model.Individual{{}}); err == nil {
		t.Fatal("expected error for nil rng")
	}
}
