package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"diecup/internal/storage"
)

const smallRunConfig = `
seed: 11
ga:
  population: 16
  elites: 2
  generations: 2
eval:
  screening_trials: 30
  confirmation_trials: 60
  top_candidates: 2
  workers: 2
`

func TestRunCommandPersistsRun(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(smallRunConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	dbPath := filepath.Join(dir, "diecup.db")

	ctx := context.Background()
	err := run(ctx, []string{"run", "-config", configPath, "-store", "sqlite", "-db-path", dbPath})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	store, err := openStore(ctx, "sqlite", dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one persisted run, got %d", len(runs))
	}
	summary := runs[0]
	if summary.Oracle != "diecup" || summary.Generations != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	records, ok, err := store.GetGenerations(ctx, summary.ID)
	if err != nil || !ok {
		t.Fatalf("get generations: ok=%v err=%v", ok, err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 generation records, got %d", len(records))
	}

	best, ok, err := store.GetBest(ctx, summary.ID)
	if err != nil || !ok {
		t.Fatalf("get best: ok=%v err=%v", ok, err)
	}
	if best.Fitness != summary.BestFitness {
		t.Fatalf("best fitness mismatch: %v vs %v", best.Fitness, summary.BestFitness)
	}
	if len(best.Genes) != 8 {
		t.Fatalf("expected 8 genes, got %d", len(best.Genes))
	}

	// The query commands read the same store without error.
	if err := run(ctx, []string{"runs", "-db-path", dbPath}); err != nil {
		t.Fatalf("runs: %v", err)
	}
	if err := run(ctx, []string{"history", "-db-path", dbPath, "-run", summary.ID}); err != nil {
		t.Fatalf("history: %v", err)
	}
	if err := run(ctx, []string{"best", "-db-path", dbPath, "-run", summary.ID}); err != nil {
		t.Fatalf("best: %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := run(context.Background(), []string{"bogus"}); err == nil {
		t.Fatal("expected usage error")
	}
	if err := run(context.Background(), nil); err == nil {
		t.Fatal("expected usage error for missing command")
	}
}

func TestHistoryRequiresRunFlag(t *testing.T) {
	if err := run(context.Background(), []string{"history"}); err == nil {
		t.Fatal("expected usage error")
	}
	if err := run(context.Background(), []string{"best"}); err == nil {
		t.Fatal("expected usage error")
	}
}
