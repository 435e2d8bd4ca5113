package evo

import "fmt"

// StagnationAction is what the controller asks the orchestrator to do
// after observing a generation.
type StagnationAction int

const (
	// StagnationNone leaves the population alone.
	StagnationNone StagnationAction = iota
	// StagnationHeatUp escalated the mutation strength.
	StagnationHeatUp
	// StagnationRestart asks for a restart fraction of the next
	// generation to be filled with fresh random individuals.
	StagnationRestart
)

// StagnationConfig tunes the exploration escalation schedule.
type StagnationConfig struct {
	HeatUpThreshold  int     `yaml:"heat_up_threshold"`
	RestartThreshold int     `yaml:"restart_threshold"`
	RestartFraction  float64 `yaml:"restart_fraction"`

	InitialStrength  float64 `yaml:"initial_strength"`
	MaxStrength      float64 `yaml:"max_strength"`
	EscalationFactor float64 `yaml:"escalation_factor"`
	// RestartStrength is deliberately above the initial value so the
	// population keeps exploring right after a restart.
	RestartStrength float64 `yaml:"restart_strength"`
}

// DefaultStagnationConfig mirrors the tuned production schedule.
func DefaultStagnationConfig() StagnationConfig {
	return StagnationConfig{
		HeatUpThreshold:  5,
		RestartThreshold: 20,
		RestartFraction:  0.40,
		InitialStrength:  0.15,
		MaxStrength:      0.5,
		EscalationFactor: 1.5,
		RestartStrength:  0.3,
	}
}

// Validate fails fast on unusable thresholds.
func (c StagnationConfig) Validate() error {
	if c.HeatUpThreshold <= 0 {
		return fmt.Errorf("heat-up threshold must be > 0, got %d", c.HeatUpThreshold)
	}
	if c.RestartThreshold <= c.HeatUpThreshold {
		return fmt.Errorf("restart threshold must exceed heat-up threshold: %d <= %d", c.RestartThreshold, c.HeatUpThreshold)
	}
	if c.RestartFraction <= 0 || c.RestartFraction >= 1 {
		return fmt.Errorf("restart fraction must be in (0,1), got %v", c.RestartFraction)
	}
	if c.InitialStrength <= 0 {
		return fmt.Errorf("initial mutation strength must be > 0, got %v", c.InitialStrength)
	}
	if c.MaxStrength < c.InitialStrength {
		return fmt.Errorf("max mutation strength must be >= initial: %v < %v", c.MaxStrength, c.InitialStrength)
	}
	if c.EscalationFactor <= 1 {
		return fmt.Errorf("escalation factor must be > 1, got %v", c.EscalationFactor)
	}
	if c.RestartStrength <= c.InitialStrength || c.RestartStrength > c.MaxStrength {
		return fmt.Errorf("restart strength must be in (initial, max]: got %v", c.RestartStrength)
	}
	return nil
}

// StagnationController tracks generations without an accepted
// improvement and escalates exploration in two stages: heat up the
// mutation strength first, then demand a partial population restart.
type StagnationController struct {
	cfg      StagnationConfig
	count    int
	strength float64
}

// NewStagnationController validates the schedule and starts cold.
func NewStagnationController(cfg StagnationConfig) (*StagnationController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &StagnationController{cfg: cfg, strength: cfg.InitialStrength}, nil
}

// Observe records whether the generation produced an accepted
// improvement and returns the action the orchestrator should take.
func (s *StagnationController) Observe(improved bool) StagnationAction {
	if improved {
		s.count = 0
		s.strength = s.cfg.InitialStrength
		return StagnationNone
	}

	s.count++
	if s.count > s.cfg.RestartThreshold {
		s.count = 0
		s.strength = s.cfg.RestartStrength
		return StagnationRestart
	}
	if s.count > s.cfg.HeatUpThreshold {
		s.strength = s.strength * s.cfg.EscalationFactor
		if s.strength > s.cfg.MaxStrength {
			s.strength = s.cfg.MaxStrength
		}
		return StagnationHeatUp
	}
	return StagnationNone
}

// Strength is the current Gaussian mutation sigma.
func (s *StagnationController) Strength() float64 { return s.strength }

// Count is the number of generations since the last accepted improvement.
func (s *StagnationController) Count() int { return s.count }

// RestartFraction is the share of the population replaced on restart.
func (s *StagnationController) RestartFraction() float64 { return s.cfg.RestartFraction }
