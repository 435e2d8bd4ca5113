// Package config loads the run configuration: YAML file first,
// environment variable overrides second, validation last.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"diecup/internal/evo"
)

// Config is the root configuration structure.
type Config struct {
	Seed       int64                `yaml:"seed" env:"DIECUP_SEED"`
	Game       GameConfig           `yaml:"game"`
	GA         GAConfig             `yaml:"ga"`
	Eval       EvalConfig           `yaml:"eval"`
	Composite  evo.CompositeWeights `yaml:"composite"`
	Stagnation evo.StagnationConfig `yaml:"stagnation"`
	Storage    StorageConfig        `yaml:"storage"`
	Output     OutputConfig         `yaml:"output"`
}

// GameConfig selects and parameterizes the simulation.
type GameConfig struct {
	Oracle string `yaml:"oracle" env:"DIECUP_ORACLE"`
	Dice   int    `yaml:"dice" env:"DIECUP_DICE"`
	Sides  int    `yaml:"sides" env:"DIECUP_SIDES"`
}

// GAConfig defines the genetic algorithm parameters. The rate fields
// are pointers because zero is a legal setting for them; a nil pointer
// means "not set, use the default".
type GAConfig struct {
	Population        int      `yaml:"population" env:"DIECUP_POPULATION"`
	Elites            int      `yaml:"elites" env:"DIECUP_ELITES"`
	DiversityRatio    *float64 `yaml:"diversity_ratio"`
	Generations       int      `yaml:"generations" env:"DIECUP_GENERATIONS"`
	TournamentK       int      `yaml:"tournament_k"`
	MutationRate      *float64 `yaml:"mutation_rate"`
	LargeMutationRate *float64 `yaml:"large_mutation_rate"`
	GeneMin           float64  `yaml:"gene_min"`
	GeneMax           float64  `yaml:"gene_max"`
	// SeedKnownGood places the hand-tuned default weights into the
	// initial population so the run never does worse than them.
	SeedKnownGood bool `yaml:"seed_known_good" env:"DIECUP_SEED_KNOWN_GOOD"`
}

// EvalConfig defines the screening and confirmation trial counts.
type EvalConfig struct {
	ScreeningTrials    int     `yaml:"screening_trials" env:"DIECUP_SCREENING_TRIALS"`
	ConfirmationTrials int     `yaml:"confirmation_trials" env:"DIECUP_CONFIRMATION_TRIALS"`
	TopCandidates      int     `yaml:"top_candidates"`
	Significance       float64 `yaml:"significance"`
	Workers            int     `yaml:"workers" env:"DIECUP_WORKERS"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend string `yaml:"backend" env:"DIECUP_STORE"`
	Path    string `yaml:"path" env:"DIECUP_STORE_PATH"`
}

// OutputConfig defines where progress goes besides stdout.
type OutputConfig struct {
	LogPath string `yaml:"log_path" env:"DIECUP_LOG_PATH"`
}

// Load reads the YAML file (optional; empty path means defaults only),
// applies defaults, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyDefaults(cfg)

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Game.Oracle == "" {
		cfg.Game.Oracle = "diecup"
	}
	if cfg.Game.Dice == 0 {
		cfg.Game.Dice = 6
	}
	if cfg.Game.Sides == 0 {
		cfg.Game.Sides = 6
	}
	if cfg.GA.Population == 0 {
		cfg.GA.Population = 200
	}
	if cfg.GA.Elites == 0 {
		cfg.GA.Elites = 20
	}
	if cfg.GA.DiversityRatio == nil {
		cfg.GA.DiversityRatio = f64(0.15)
	}
	if cfg.GA.Generations == 0 {
		cfg.GA.Generations = 100
	}
	if cfg.GA.TournamentK == 0 {
		cfg.GA.TournamentK = 3
	}
	if cfg.GA.MutationRate == nil {
		cfg.GA.MutationRate = f64(0.30)
	}
	if cfg.GA.LargeMutationRate == nil {
		cfg.GA.LargeMutationRate = f64(0.08)
	}
	if cfg.GA.GeneMin == 0 && cfg.GA.GeneMax == 0 {
		bounds := evo.DefaultGeneRange()
		cfg.GA.GeneMin = bounds.Min
		cfg.GA.GeneMax = bounds.Max
	}
	if cfg.Eval.ScreeningTrials == 0 {
		cfg.Eval.ScreeningTrials = 500
	}
	if cfg.Eval.ConfirmationTrials == 0 {
		cfg.Eval.ConfirmationTrials = 5000
	}
	if cfg.Eval.TopCandidates == 0 {
		cfg.Eval.TopCandidates = 5
	}
	if cfg.Eval.Significance == 0 {
		cfg.Eval.Significance = 0.05
	}
	if cfg.Composite == (evo.CompositeWeights{}) {
		cfg.Composite = evo.DefaultCompositeWeights()
	}
	if cfg.Stagnation == (evo.StagnationConfig{}) {
		cfg.Stagnation = evo.DefaultStagnationConfig()
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "memory"
	}
}

func f64(v float64) *float64 { return &v }

// Optimizer maps the loaded configuration onto the optimizer settings.
// The oracle and initial genes are wired by the caller.
func (c *Config) Optimizer() evo.Config {
	return evo.Config{
		PopulationSize:      c.GA.Population,
		EliteCount:          c.GA.Elites,
		DiversityRatio:      *c.GA.DiversityRatio,
		Generations:         c.GA.Generations,
		Workers:             c.Eval.Workers,
		Seed:                c.Seed,
		TournamentSize:      c.GA.TournamentK,
		MutationRatePerGene: *c.GA.MutationRate,
		LargeMutationRate:   *c.GA.LargeMutationRate,
		GeneRange:           evo.GeneRange{Min: c.GA.GeneMin, Max: c.GA.GeneMax},
		ScreeningTrials:     c.Eval.ScreeningTrials,
		ConfirmationTrials:  c.Eval.ConfirmationTrials,
		TopCandidates:       c.Eval.TopCandidates,
		Significance:        c.Eval.Significance,
		Composite:           c.Composite,
		Stagnation:          c.Stagnation,
	}
}
