package evo

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"diecup/internal/model"
	"diecup/internal/sim"
)

// Config drives one optimization run.
type Config struct {
	Oracle sim.Oracle

	PopulationSize int
	EliteCount     int
	DiversityRatio float64
	Generations    int
	Workers        int
	Seed           int64

	TournamentSize      int
	MutationRatePerGene float64
	LargeMutationRate   float64
	GeneRange           GeneRange

	ScreeningTrials    int
	ConfirmationTrials int
	TopCandidates      int
	Significance       float64

	Composite  CompositeWeights
	Stagnation StagnationConfig

	// InitialGenes optionally seeds population slot zero with a known
	// good weight vector.
	InitialGenes []float64

	// OnGeneration, when set, receives the progress record of every
	// completed generation. Called from the orchestrator goroutine.
	OnGeneration func(model.GenerationRecord)
}

// Result is the outcome of a finished (or gracefully stopped) run.
type Result struct {
	Best    model.BestSnapshot
	History []model.GenerationRecord
}

// Optimizer drives the generational loop: screen, sort, confirm, adapt,
// evolve. It is single-threaded; all parallelism lives behind the
// evaluator and the confirmation engine, and the population is only
// touched between their join barriers.
type Optimizer struct {
	cfg        Config
	rng        *rand.Rand
	seeds      *SeedGenerator
	evaluator  *Evaluator
	confirm    *ConfirmationEngine
	selector   TournamentSelector
	mutator    Mutator
	stagnation *StagnationController
}

// NewOptimizer validates the configuration and assembles the run.
func NewOptimizer(cfg Config) (*Optimizer, error) {
	if cfg.Oracle == nil {
		return nil, fmt.Errorf("oracle is required")
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0, got %d", cfg.PopulationSize)
	}
	if cfg.EliteCount <= 0 || cfg.EliteCount > cfg.PopulationSize {
		return nil, fmt.Errorf("elite count must be in [1, population size], got %d", cfg.EliteCount)
	}
	if cfg.DiversityRatio < 0 || cfg.DiversityRatio >= 1 {
		return nil, fmt.Errorf("diversity ratio must be in [0,1), got %v", cfg.DiversityRatio)
	}
	if cfg.EliteCount+int(float64(cfg.PopulationSize)*cfg.DiversityRatio) > cfg.PopulationSize {
		return nil, fmt.Errorf("elite count plus diversity quota exceeds population size")
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("generations must be > 0, got %d", cfg.Generations)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU() - 1
		if cfg.Workers < 1 {
			cfg.Workers = 1
		}
	}
	if cfg.ScreeningTrials <= 0 {
		return nil, fmt.Errorf("screening trials must be > 0, got %d", cfg.ScreeningTrials)
	}
	if cfg.ConfirmationTrials <= 0 {
		return nil, fmt.Errorf("confirmation trials must be > 0, got %d", cfg.ConfirmationTrials)
	}
	if cfg.MutationRatePerGene < 0 || cfg.MutationRatePerGene > 1 {
		return nil, fmt.Errorf("mutation rate per gene must be in [0,1], got %v", cfg.MutationRatePerGene)
	}
	if cfg.LargeMutationRate < 0 || cfg.LargeMutationRate > 1 {
		return nil, fmt.Errorf("large mutation rate must be in [0,1], got %v", cfg.LargeMutationRate)
	}
	if cfg.GeneRange.Max <= cfg.GeneRange.Min {
		return nil, fmt.Errorf("gene range is empty: [%v, %v)", cfg.GeneRange.Min, cfg.GeneRange.Max)
	}
	if len(cfg.InitialGenes) > 0 && len(cfg.InitialGenes) != cfg.Oracle.GeneCount() {
		return nil, fmt.Errorf("initial genes length mismatch: got %d want %d", len(cfg.InitialGenes), cfg.Oracle.GeneCount())
	}

	evaluator, err := NewEvaluator(cfg.Oracle, cfg.Workers, cfg.Composite)
	if err != nil {
		return nil, err
	}
	confirm, err := NewConfirmationEngine(cfg.Oracle, cfg.Workers, cfg.TopCandidates, cfg.Significance, cfg.Composite)
	if err != nil {
		return nil, err
	}
	stagnation, err := NewStagnationController(cfg.Stagnation)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	return &Optimizer{
		cfg:       cfg,
		rng:       rng,
		seeds:     NewSeedGenerator(rng.Int63()),
		evaluator: evaluator,
		confirm:   confirm,
		selector:  TournamentSelector{Size: cfg.TournamentSize},
		mutator: Mutator{
			RatePerGene: cfg.MutationRatePerGene,
			LargeRate:   cfg.LargeMutationRate,
			Bounds:      cfg.GeneRange,
		},
		stagnation: stagnation,
	}, nil
}

// Run executes the generational loop until the generation cap or until
// the context is cancelled. Cancellation is only honored between
// generations; a started evaluation always runs to completion. On
// cancellation the partial result is returned together with ctx.Err().
func (o *Optimizer) Run(ctx context.Context) (Result, error) {
	start := time.Now()

	population := o.initialPopulation()
	if err := o.evaluator.EvaluatePopulation(population, o.seeds.Batch(o.cfg.ScreeningTrials)); err != nil {
		return Result{}, fmt.Errorf("initial generation: %w", err)
	}
	sortByFitness(population)

	// No incumbent exists yet, so the first screening winner is taken
	// as-is and defended from the next generation on.
	population[0].Confirmed = true
	incumbent := model.SnapshotOf(population[0], 0)

	history := make([]model.GenerationRecord, 0, o.cfg.Generations)
	result := Result{Best: incumbent}

	restartPending := false
	for gen := 1; gen <= o.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			result.Best = incumbent
			result.History = history
			return result, err
		}

		population = o.nextPopulation(population, restartPending)
		restartPending = false
		screened := countUnevaluated(population)
		if err := o.evaluator.EvaluatePopulation(population, o.seeds.Batch(o.cfg.ScreeningTrials)); err != nil {
			result.History = history
			return result, fmt.Errorf("generation %d: %w", gen, err)
		}
		sortByFitness(population)

		// Every candidate of the generation faces the incumbent on the
		// one shared confirmation batch, seed for seed, so the top-T
		// comparisons stay mutually consistent.
		newIncumbent, outcomes, err := o.confirm.Confirm(population, incumbent, o.seeds.Batch(o.cfg.ConfirmationTrials), gen)
		if err != nil {
			result.History = history
			return result, fmt.Errorf("generation %d: %w", gen, err)
		}
		accepted := false
		for _, outcome := range outcomes {
			if outcome.Accepted {
				accepted = true
			}
		}
		incumbent = newIncumbent
		result.Best = incumbent

		restartPending = o.stagnation.Observe(accepted) == StagnationRestart

		record := model.GenerationRecord{
			Generation:       gen,
			BestFitness:      incumbent.Fitness,
			BestStats:        incumbent.Stats,
			ScreeningBest:    population[0].Fitness,
			Accepted:         accepted,
			MutationStrength: o.stagnation.Strength(),
			StagnationCount:  o.stagnation.Count(),
			TrialsRun:        screened*o.cfg.ScreeningTrials + len(outcomes)*2*o.cfg.ConfirmationTrials,
			ElapsedMillis:    time.Since(start).Milliseconds(),
		}
		history = append(history, record)
		if o.cfg.OnGeneration != nil {
			o.cfg.OnGeneration(record)
		}
	}

	result.History = history
	return result, nil
}

func (o *Optimizer) initialPopulation() []*model.Individual {
	population := make([]*model.Individual, 0, o.cfg.PopulationSize)
	if len(o.cfg.InitialGenes) > 0 {
		population = append(population, model.NewIndividual(o.cfg.InitialGenes))
	}
	for len(population) < o.cfg.PopulationSize {
		population = append(population, o.randomIndividual())
	}
	return population
}

func (o *Optimizer) randomIndividual() *model.Individual {
	return model.NewIndividual(RandomGenes(o.rng, o.cfg.Oracle.GeneCount(), o.cfg.GeneRange))
}

// nextPopulation builds the next generation from, in priority order:
// confirmed individuals, the remaining top performers up to the elite
// quota, fresh random individuals (the usual diversity quota, enlarged
// by the restart fraction after a stagnation restart), and offspring
// until the population is full again. Fresh individuals enter
// unevaluated and are screened with everyone else before selection can
// ever see them as parents.
func (o *Optimizer) nextPopulation(ranked []*model.Individual, restart bool) []*model.Individual {
	next := make([]*model.Individual, 0, o.cfg.PopulationSize)

	for _, ind := range ranked {
		if len(next) >= o.cfg.EliteCount {
			break
		}
		if ind.Confirmed {
			elite := ind.Clone()
			elite.Elite = true
			next = append(next, elite)
		}
	}
	for _, ind := range ranked {
		if len(next) >= o.cfg.EliteCount {
			break
		}
		if !ind.Confirmed {
			elite := ind.Clone()
			elite.Elite = true
			next = append(next, elite)
		}
	}

	diversity := int(float64(o.cfg.PopulationSize) * o.cfg.DiversityRatio)
	if restart {
		diversity += int(float64(o.cfg.PopulationSize) * o.stagnation.RestartFraction())
	}
	for i := 0; i < diversity && len(next) < o.cfg.PopulationSize; i++ {
		next = append(next, o.randomIndividual())
	}

	for len(next) < o.cfg.PopulationSize {
		next = append(next, o.offspring(ranked))
	}
	return next
}

func (o *Optimizer) offspring(ranked []*model.Individual) *model.Individual {
	// Population is never empty here, so PickParent cannot fail.
	p1, _ := o.selector.PickParent(o.rng, ranked)
	p2, _ := o.selector.PickParent(o.rng, ranked)
	child := model.NewIndividual(Crossover(o.rng, p1.Genes, p2.Genes))
	o.mutator.Mutate(o.rng, child, o.stagnation.Strength())
	return child
}

func sortByFitness(population []*model.Individual) {
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].Fitness < population[j].Fitness
	})
}

func countUnevaluated(population []*model.Individual) int {
	count := 0
	for _, ind := range population {
		if !ind.Evaluated() {
			count++
		}
	}
	return count
}
