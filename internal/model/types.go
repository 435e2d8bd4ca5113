package model

import "math"

// EvalStats aggregates the trial outcomes of one evaluation round.
// All components are in turns, lower is better.
type EvalStats struct {
	Mean          float64 `json:"mean"`
	Variance      float64 `json:"variance"`
	Median        float64 `json:"median"`
	Q3            float64 `json:"q3"`
	StandardError float64 `json:"standard_error"`
	Trials        int     `json:"trials"`
}

// Individual is one candidate weight vector plus its cached evaluation.
// Genes are exclusively owned by the population slot holding the
// individual; use Clone before handing them to another slot.
type Individual struct {
	Genes []float64

	// Fitness is the composite over the last screening batch; lower is
	// better. Unevaluated individuals carry +Inf so they lose every
	// selection contest until screened.
	Fitness float64
	Stats   EvalStats

	Elite     bool
	Confirmed bool
}

// NewIndividual deep-copies genes into a fresh, unevaluated individual.
func NewIndividual(genes []float64) *Individual {
	return &Individual{
		Genes:   append([]float64(nil), genes...),
		Fitness: math.Inf(1),
	}
}

// Clone deep-copies the individual, genes included.
func (ind *Individual) Clone() *Individual {
	clone := *ind
	clone.Genes = append([]float64(nil), ind.Genes...)
	return &clone
}

// Evaluated reports whether the individual carries a usable fitness.
func (ind *Individual) Evaluated() bool {
	return ind.Stats.Trials > 0
}

// Invalidate clears cached fitness after a gene change, forcing
// re-evaluation on the next screening round.
func (ind *Individual) Invalidate() {
	ind.Fitness = math.Inf(1)
	ind.Stats = EvalStats{}
	ind.Confirmed = false
}

// BestSnapshot is the accepted incumbent: a deep copy of the gene vector
// plus the statistics it was confirmed with. Only the confirmation engine
// produces new snapshots.
type BestSnapshot struct {
	Genes   []float64 `json:"genes"`
	Fitness float64   `json:"fitness"`
	Stats   EvalStats `json:"stats"`

	Generation int `json:"generation"`
}

// SnapshotOf captures an individual as a new incumbent snapshot.
func SnapshotOf(ind *Individual, generation int) BestSnapshot {
	return BestSnapshot{
		Genes:      append([]float64(nil), ind.Genes...),
		Fitness:    ind.Fitness,
		Stats:      ind.Stats,
		Generation: generation,
	}
}

// GenerationRecord is the per-generation progress row persisted by the store.
type GenerationRecord struct {
	Generation       int       `json:"generation"`
	BestFitness      float64   `json:"best_fitness"`
	BestStats        EvalStats `json:"best_stats"`
	ScreeningBest    float64   `json:"screening_best"`
	Accepted         bool      `json:"accepted"`
	MutationStrength float64   `json:"mutation_strength"`
	StagnationCount  int       `json:"stagnation_count"`
	TrialsRun        int       `json:"trials_run"`
	ElapsedMillis    int64     `json:"elapsed_ms"`
}

// RunSummary identifies one optimization run in the store.
type RunSummary struct {
	ID          string  `json:"id"`
	Oracle      string  `json:"oracle"`
	Generations int     `json:"generations"`
	BestFitness float64 `json:"best_fitness"`
	StartedAt   int64   `json:"started_at"`
	FinishedAt  int64   `json:"finished_at"`
}
