package storage

import (
	"context"
	"path/filepath"
	"testing"

	"diecup/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "diecup.db"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestSQLiteStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	run := model.RunSummary{
		ID:          "run-1",
		Oracle:      "diecup",
		Generations: 50,
		BestFitness: 14.2,
		StartedAt:   1000,
		FinishedAt:  2000,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	loaded, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted run")
	}
	if loaded != run {
		t.Fatalf("unexpected run: %+v", loaded)
	}

	// Saving again updates in place.
	run.BestFitness = 13.9
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("update run: %v", err)
	}
	loaded, _, _ = store.GetRun(ctx, "run-1")
	if loaded.BestFitness != 13.9 {
		t.Fatalf("update did not stick: %+v", loaded)
	}

	if _, ok, _ := store.GetRun(ctx, "missing"); ok {
		t.Fatal("missing run must report not found")
	}
}

func TestSQLiteStoreListRuns(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	for _, run := range []model.RunSummary{
		{ID: "old", StartedAt: 100},
		{ID: "new", StartedAt: 300},
	} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %s: %v", run.ID, err)
		}
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "new" || runs[1].ID != "old" {
		t.Fatalf("unexpected order: %+v", runs)
	}
}

func TestSQLiteStoreGenerationsAndBestRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	records := []model.GenerationRecord{
		{Generation: 1, BestFitness: 16.0, Accepted: true, MutationStrength: 0.15, TrialsRun: 90000},
		{Generation: 2, BestFitness: 15.6, StagnationCount: 1, TrialsRun: 84000},
	}
	if err := store.SaveGenerations(ctx, "run-1", records); err != nil {
		t.Fatalf("save generations: %v", err)
	}
	loadedRecords, ok, err := store.GetGenerations(ctx, "run-1")
	if err != nil {
		t.Fatalf("get generations: %v", err)
	}
	if !ok || len(loadedRecords) != 2 || loadedRecords[1].StagnationCount != 1 {
		t.Fatalf("unexpected records: %+v", loadedRecords)
	}

	best := model.BestSnapshot{
		Genes:      []float64{0.3, 0.7, 1.0, 0.0, 0.8, 0.0, 0.3, 0.9},
		Fitness:    14.2,
		Stats:      model.EvalStats{Mean: 14.5, Variance: 9.0, Median: 14, Q3: 16, StandardError: 0.04, Trials: 5000},
		Generation: 12,
	}
	if err := store.SaveBest(ctx, "run-1", best); err != nil {
		t.Fatalf("save best: %v", err)
	}
	loadedBest, ok, err := store.GetBest(ctx, "run-1")
	if err != nil {
		t.Fatalf("get best: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted best")
	}
	if loadedBest.Fitness != best.Fitness || loadedBest.Stats.Trials != 5000 || len(loadedBest.Genes) != 8 {
		t.Fatalf("unexpected best: %+v", loadedBest)
	}

	if _, ok, _ := store.GetBest(ctx, "missing"); ok {
		t.Fatal("missing best must report not found")
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "diecup.db"))
	if err := store.SaveRun(context.Background(), model.RunSummary{ID: "x"}); err == nil {
		t.Fatal("expected error before Init")
	}
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	store := NewSQLiteStore("")
	if err := store.Init(context.Background()); err == nil {
		t.Fatal("expected error for empty path")
	}
}
