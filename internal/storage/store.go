package storage

import (
	"context"

	"diecup/internal/model"
)

// Store persists optimization runs: the run summary, the per-generation
// progress records, and the best accepted weight vector.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunSummary) error
	GetRun(ctx context.Context, id string) (model.RunSummary, bool, error)
	ListRuns(ctx context.Context) ([]model.RunSummary, error)
	SaveGenerations(ctx context.Context, runID string, records []model.GenerationRecord) error
	GetGenerations(ctx context.Context, runID string) ([]model.GenerationRecord, bool, error)
	SaveBest(ctx context.Context, runID string, best model.BestSnapshot) error
	GetBest(ctx context.Context, runID string) (model.BestSnapshot, bool, error)
}
