package storage

import (
	"context"
	"sort"
	"sync"

	"diecup/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	runs        map[string]model.RunSummary
	generations map[string][]model.GenerationRecord
	best        map[string]model.BestSnapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]model.RunSummary)
	s.generations = make(map[string][]model.GenerationRecord)
	s.best = make(map[string]model.BestSnapshot)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunSummary, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt != runs[j].StartedAt {
			return runs[i].StartedAt > runs[j].StartedAt
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

func (s *MemoryStore) SaveGenerations(_ context.Context, runID string, records []model.GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.GenerationRecord, len(records))
	copy(copied, records)
	s.generations[runID] = copied
	return nil
}

func (s *MemoryStore) GetGenerations(_ context.Context, runID string) ([]model.GenerationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.generations[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationRecord, len(records))
	copy(copied, records)
	return copied, true, nil
}

func (s *MemoryStore) SaveBest(_ context.Context, runID string, best model.BestSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	best.Genes = append([]float64(nil), best.Genes...)
	s.best[runID] = best
	return nil
}

func (s *MemoryStore) GetBest(_ context.Context, runID string) (model.BestSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best, ok := s.best[runID]
	if !ok {
		return model.BestSnapshot{}, false, nil
	}
	best.Genes = append([]float64(nil), best.Genes...)
	return best, true, nil
}
