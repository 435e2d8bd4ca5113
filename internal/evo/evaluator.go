package evo

import (
	"fmt"
	"math"
	"sync"

	"diecup/internal/model"
	"diecup/internal/sim"
	"diecup/internal/stats"
)

// Evaluator runs screening trials against the oracle and caches the
// aggregated statistics on each individual.
type Evaluator struct {
	oracle    sim.Oracle
	workers   int
	composite CompositeWeights
}

// NewEvaluator wires an oracle to the worker pool and composite weights.
func NewEvaluator(oracle sim.Oracle, workers int, composite CompositeWeights) (*Evaluator, error) {
	if oracle == nil {
		return nil, fmt.Errorf("oracle is required")
	}
	if workers <= 0 {
		return nil, fmt.Errorf("workers must be > 0, got %d", workers)
	}
	if err := composite.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{oracle: oracle, workers: workers, composite: composite}, nil
}

// Outcomes runs one trial per seed, in order, and returns the raw
// outcome sequence. Any oracle error or non-finite outcome is fatal:
// a partial trial set would break the common-random-numbers contract,
// so nothing is dropped or retried.
func (e *Evaluator) Outcomes(genes []float64, seeds []int64) ([]float64, error) {
	outcomes := make([]float64, len(seeds))
	for i, seed := range seeds {
		outcome, err := e.oracle.Simulate(genes, seed)
		if err != nil {
			return nil, fmt.Errorf("trial seed %d: %w", seed, err)
		}
		if math.IsNaN(outcome) || math.IsInf(outcome, 0) {
			return nil, fmt.Errorf("trial seed %d: non-finite outcome %v", seed, outcome)
		}
		outcomes[i] = outcome
	}
	return outcomes, nil
}

// Summarize aggregates a trial outcome sequence.
func Summarize(outcomes []float64) model.EvalStats {
	variance := stats.SampleVariance(outcomes)
	median, q3 := stats.Quartiles(outcomes)
	return model.EvalStats{
		Mean:          stats.Mean(outcomes),
		Variance:      variance,
		Median:        median,
		Q3:            q3,
		StandardError: math.Sqrt(variance / float64(len(outcomes))),
		Trials:        len(outcomes),
	}
}

// Evaluate runs all trials for one gene vector and returns the cached
// statistics plus the composite fitness.
func (e *Evaluator) Evaluate(genes []float64, seeds []int64) (model.EvalStats, float64, error) {
	if len(seeds) == 0 {
		return model.EvalStats{}, 0, fmt.Errorf("seed batch is empty")
	}
	outcomes, err := e.Outcomes(genes, seeds)
	if err != nil {
		return model.EvalStats{}, 0, err
	}
	evalStats := Summarize(outcomes)
	return evalStats, e.composite.Composite(evalStats), nil
}

// EvaluatePopulation screens every individual lacking a cached fitness
// against the shared seed batch. Each task owns its individual
// exclusively and writes only that individual's cached fields; the join
// barrier guarantees all results are in before the caller sorts.
func (e *Evaluator) EvaluatePopulation(population []*model.Individual, seeds []int64) error {
	if len(seeds) == 0 {
		return fmt.Errorf("seed batch is empty")
	}

	type job struct {
		idx int
		ind *model.Individual
	}
	type result struct {
		idx int
		err error
	}

	pending := make([]job, 0, len(population))
	for i, ind := range population {
		if !ind.Evaluated() {
			pending = append(pending, job{idx: i, ind: ind})
		}
	}
	if len(pending) == 0 {
		return nil
	}

	jobs := make(chan job)
	results := make(chan result, len(pending))

	workerCount := e.workers
	if workerCount > len(pending) {
		workerCount = len(pending)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				evalStats, fitness, err := e.Evaluate(j.ind.Genes, seeds)
				if err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				j.ind.Stats = evalStats
				j.ind.Fitness = fitness
				results <- result{idx: j.idx}
			}
		}()
	}

	for _, j := range pending {
		jobs <- j
	}
	close(jobs)

	wg.Wait()
	close(results)

	for res := range results {
		if res.err != nil {
			return fmt.Errorf("screening: individual %d: %w", res.idx, res.err)
		}
	}
	return nil
}
