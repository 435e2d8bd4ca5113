package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"diecup/internal/config"
	"diecup/internal/diecup"
	"diecup/internal/evo"
	"diecup/internal/model"
	"diecup/internal/progress"
	"diecup/internal/sim"
	"diecup/internal/storage"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "analyze":
		return runAnalyze(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "best":
		return runBest(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	generations := fs.Int("generations", 0, "override generation cap")
	seed := fs.Int64("seed", 0, "override master seed")
	storeKind := fs.String("store", "", "override store backend: memory|sqlite")
	dbPath := fs.String("db-path", "", "override sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *generations > 0 {
		cfg.GA.Generations = *generations
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *storeKind != "" {
		cfg.Storage.Backend = *storeKind
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	oracle, err := buildOracle(cfg)
	if err != nil {
		return err
	}

	optCfg := cfg.Optimizer()
	optCfg.Oracle = oracle
	if cfg.GA.SeedKnownGood {
		defaults := diecup.DefaultWeights()
		if len(defaults) == oracle.GeneCount() {
			optCfg.InitialGenes = defaults
		}
	}

	out := io.Writer(os.Stdout)
	if cfg.Output.LogPath != "" {
		logFile, err := progress.OpenLog(cfg.Output.LogPath)
		if err != nil {
			return err
		}
		defer func() {
			_ = logFile.Close()
		}()
		out = io.MultiWriter(os.Stdout, logFile)
	}
	reporter := progress.NewReporter(out, cfg.GA.Generations)
	optCfg.OnGeneration = reporter.Generation

	store, err := storage.NewStore(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		return err
	}

	optimizer, err := evo.NewOptimizer(optCfg)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	fmt.Fprintf(out, "run %s: oracle=%s seed=%d population=%d generations=%d\n",
		runID, oracle.Name(), cfg.Seed, cfg.GA.Population, cfg.GA.Generations)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	result, runErr := optimizer.Run(runCtx)
	stopped := errors.Is(runErr, context.Canceled)
	if runErr != nil && !stopped {
		return runErr
	}

	// Persist on a fresh context so an interrupt still saves the run.
	saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	summary := model.RunSummary{
		ID:          runID,
		Oracle:      oracle.Name(),
		Generations: len(result.History),
		BestFitness: result.Best.Fitness,
		StartedAt:   started.UnixMilli(),
		FinishedAt:  time.Now().UnixMilli(),
	}
	if err := store.SaveRun(saveCtx, summary); err != nil {
		return err
	}
	if err := store.SaveGenerations(saveCtx, runID, result.History); err != nil {
		return err
	}
	if err := store.SaveBest(saveCtx, runID, result.Best); err != nil {
		return err
	}

	if stopped {
		fmt.Fprintf(out, "interrupted after %d generations; best so far:\n", len(result.History))
	}
	reporter.Finish(result.Best)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind := fs.String("store", "sqlite", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "diecup.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	runs, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, run := range runs {
		fmt.Printf("%s  oracle=%s  generations=%d  best=%.4f  started %s\n",
			run.ID, run.Oracle, run.Generations, run.BestFitness,
			humanize.Time(time.UnixMilli(run.StartedAt)))
	}
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	storeKind := fs.String("store", "sqlite", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "diecup.db", "sqlite database path")
	runID := fs.String("run", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("history requires -run")
	}

	store, err := openStore(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	records, ok, err := store.GetGenerations(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no history for run %s", *runID)
	}

	reporter := progress.NewReporter(os.Stdout, len(records))
	for _, record := range records {
		reporter.Generation(record)
	}
	return nil
}

func runBest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("best", flag.ContinueOnError)
	storeKind := fs.String("store", "sqlite", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "diecup.db", "sqlite database path")
	runID := fs.String("run", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("best requires -run")
	}

	store, err := openStore(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	best, ok, err := store.GetBest(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no best snapshot for run %s", *runID)
	}

	fmt.Printf("fitness %.4f (generation %d, %s trials)\n",
		best.Fitness, best.Generation, humanize.Comma(int64(best.Stats.Trials)))
	fmt.Printf("mean %.4f  sd %.4f  median %.1f  q3 %.1f\n",
		best.Stats.Mean, math.Sqrt(best.Stats.Variance), best.Stats.Median, best.Stats.Q3)
	for i, g := range best.Genes {
		name := fmt.Sprintf("gene%d", i)
		if i < len(diecup.WeightNames) && len(best.Genes) == diecup.WeightCount {
			name = diecup.WeightNames[i]
		}
		fmt.Printf("  %-16s %8.4f\n", name, g)
	}
	return nil
}

func openStore(ctx context.Context, kind, path string) (storage.Store, error) {
	store, err := storage.NewStore(kind, path)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func buildOracle(cfg *config.Config) (sim.Oracle, error) {
	oracle, err := diecup.NewOracle(cfg.Game.Dice, cfg.Game.Sides)
	if err != nil {
		return nil, err
	}
	if err := sim.Register(oracle); err != nil && !errors.Is(err, sim.ErrOracleExists) {
		return nil, err
	}
	return sim.Resolve(cfg.Game.Oracle)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: diecupctl <run|analyze|runs|history|best> [flags]", msg)
}
