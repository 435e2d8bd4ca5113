package evo

import (
	"fmt"
	"math"

	"github.com/sourcegraph/conc/pool"

	"diecup/internal/model"
	"diecup/internal/sim"
	"diecup/internal/stats"
)

// ConfirmationEngine re-tests promising candidates head to head against
// the incumbent before the reported best is allowed to change. The
// paired design runs both competitors on identical seeds, so per-seed
// luck cancels out of the difference and a small real edge becomes
// detectable.
type ConfirmationEngine struct {
	oracle       sim.Oracle
	workers      int
	composite    CompositeWeights
	topN         int
	significance float64
}

// NewConfirmationEngine validates and wires the confirmation settings.
func NewConfirmationEngine(oracle sim.Oracle, workers, topN int, significance float64, composite CompositeWeights) (*ConfirmationEngine, error) {
	if oracle == nil {
		return nil, fmt.Errorf("oracle is required")
	}
	if workers <= 0 {
		return nil, fmt.Errorf("workers must be > 0, got %d", workers)
	}
	if topN <= 0 {
		return nil, fmt.Errorf("top candidate count must be > 0, got %d", topN)
	}
	if significance <= 0 || significance >= 1 {
		return nil, fmt.Errorf("significance threshold must be in (0,1), got %v", significance)
	}
	if err := composite.Validate(); err != nil {
		return nil, err
	}
	return &ConfirmationEngine{
		oracle:       oracle,
		workers:      workers,
		composite:    composite,
		topN:         topN,
		significance: significance,
	}, nil
}

// Outcome reports how one candidate fared against the incumbent.
type Outcome struct {
	CandidateRank      int
	CandidateComposite float64
	IncumbentComposite float64
	MeanDiff           float64
	P                  float64
	Accepted           bool
}

// Confirm walks the top screened candidates in rank order and returns
// the new incumbent snapshot if any candidate passes. Candidates whose
// screening fitness is not plausibly competitive (more than two standard
// errors above the incumbent) are skipped without spending trials.
//
// Acceptance requires the paired test to favor the candidate
// significantly, or the candidate's composite over the confirmation
// trials to beat the incumbent's composite over the same trials. Either
// way the candidate's composite must also be below the incumbent's
// recorded fitness, which keeps the accepted-best sequence non-increasing.
func (c *ConfirmationEngine) Confirm(ranked []*model.Individual, incumbent model.BestSnapshot, seeds []int64, generation int) (model.BestSnapshot, []Outcome, error) {
	if len(seeds) == 0 {
		return model.BestSnapshot{}, nil, fmt.Errorf("confirmation seed batch is empty")
	}

	outcomes := make([]Outcome, 0, c.topN)
	limit := c.topN
	if limit > len(ranked) {
		limit = len(ranked)
	}

	for rank := 0; rank < limit; rank++ {
		candidate := ranked[rank]
		if candidate.Fitness > incumbent.Fitness+2*incumbent.Stats.StandardError {
			continue
		}

		candOut, incOut, err := c.pairedOutcomes(candidate.Genes, incumbent.Genes, seeds)
		if err != nil {
			return model.BestSnapshot{}, outcomes, fmt.Errorf("confirmation: candidate %d: %w", rank, err)
		}

		diffs := make([]float64, len(seeds))
		for i := range diffs {
			diffs[i] = candOut[i] - incOut[i]
		}
		cmp := stats.ComparePaired(diffs)

		candStats := Summarize(candOut)
		candComposite := c.composite.Composite(candStats)
		incComposite := c.composite.Composite(Summarize(incOut))

		outcome := Outcome{
			CandidateRank:      rank,
			CandidateComposite: candComposite,
			IncumbentComposite: incComposite,
			MeanDiff:           cmp.MeanDiff,
			P:                  cmp.P,
		}

		significantWin := cmp.MeanDiff < 0 && cmp.P < c.significance
		numericWin := candComposite < incComposite
		if (significantWin || numericWin) && candComposite < incumbent.Fitness {
			candidate.Stats = candStats
			candidate.Fitness = candComposite
			candidate.Confirmed = true
			outcome.Accepted = true
			outcomes = append(outcomes, outcome)
			return model.SnapshotOf(candidate, generation), outcomes, nil
		}
		outcomes = append(outcomes, outcome)
	}

	return incumbent, outcomes, nil
}

// pairedOutcomes runs the confirmation trials in contiguous chunks on a
// bounded pool. For trial i both competitors are simulated from the same
// seed, each behind its own RNG, which produces correlated pairs while
// every task writes only its own slice of the output arrays.
func (c *ConfirmationEngine) pairedOutcomes(candidate, incumbent []float64, seeds []int64) ([]float64, []float64, error) {
	candOut := make([]float64, len(seeds))
	incOut := make([]float64, len(seeds))

	chunk := (len(seeds) + c.workers - 1) / c.workers
	if chunk < 1 {
		chunk = 1
	}

	p := pool.New().WithErrors().WithMaxGoroutines(c.workers)
	for start := 0; start < len(seeds); start += chunk {
		end := start + chunk
		if end > len(seeds) {
			end = len(seeds)
		}
		p.Go(func() error {
			for i := start; i < end; i++ {
				co, err := c.oracle.Simulate(candidate, seeds[i])
				if err != nil {
					return fmt.Errorf("candidate trial seed %d: %w", seeds[i], err)
				}
				io, err := c.oracle.Simulate(incumbent, seeds[i])
				if err != nil {
					return fmt.Errorf("incumbent trial seed %d: %w", seeds[i], err)
				}
				if math.IsNaN(co) || math.IsInf(co, 0) || math.IsNaN(io) || math.IsInf(io, 0) {
					return fmt.Errorf("trial seed %d: non-finite outcome", seeds[i])
				}
				candOut[i] = co
				incOut[i] = io
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, nil, err
	}
	return candOut, incOut, nil
}
