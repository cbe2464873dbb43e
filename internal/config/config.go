package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/trajopt/internal/ilqr"
)

const (
	DefaultKnots = 101
	DefaultDt    = 0.05
)

type Config struct {
	Model       string       `yaml:"model"`
	Integrator  string       `yaml:"integrator"`
	Knots       int          `yaml:"knots"`
	Dt          float64      `yaml:"dt"`
	InitState   []float64    `yaml:"init_state"`
	GoalState   []float64    `yaml:"goal_state"`
	InitControl []float64    `yaml:"init_control"`
	Weights     WeightConfig `yaml:"weights"`
	Solver      SolverConfig `yaml:"solver"`
}

// WeightConfig holds diagonal cost weights.
type WeightConfig struct {
	Q  []float64 `yaml:"q"`
	R  []float64 `yaml:"r"`
	Qf []float64 `yaml:"qf"`
}

// SolverConfig mirrors ilqr.Options with yaml tags; zero values fall back
// to the solver defaults.
type SolverConfig struct {
	Iterations           int     `yaml:"iterations"`
	CostTolerance        float64 `yaml:"cost_tolerance"`
	GradientTolerance    float64 `yaml:"gradient_tolerance"`
	MaxCostValue         float64 `yaml:"max_cost_value"`
	MaxStateValue        float64 `yaml:"max_state_value"`
	RegType              string  `yaml:"reg_type"`
	RegIncreaseFactor    float64 `yaml:"reg_increase_factor"`
	RegMin               float64 `yaml:"reg_min"`
	RegForwardBump       float64 `yaml:"reg_forward_bump"`
	LinesearchIterations int     `yaml:"linesearch_iterations"`
	LinesearchLowerBound float64 `yaml:"linesearch_lower_bound"`
	LinesearchUpperBound float64 `yaml:"linesearch_upper_bound"`
	DJCounterLimit       int     `yaml:"dj_counter_limit"`
}

// Options merges the config onto the solver defaults.
func (sc SolverConfig) Options() (ilqr.Options, error) {
	opts := ilqr.DefaultOptions()
	if sc.Iterations > 0 {
		opts.Iterations = sc.Iterations
	}
	if sc.CostTolerance > 0 {
		opts.CostTolerance = sc.CostTolerance
	}
	if sc.GradientTolerance > 0 {
		opts.GradientTolerance = sc.GradientTolerance
	}
	if sc.MaxCostValue > 0 {
		opts.MaxCostValue = sc.MaxCostValue
	}
	if sc.MaxStateValue > 0 {
		opts.MaxStateValue = sc.MaxStateValue
	}
	switch sc.RegType {
	case "", "control":
		opts.RegType = ilqr.RegControl
	case "state":
		opts.RegType = ilqr.RegState
	default:
		return opts, fmt.Errorf("unknown reg_type: %s", sc.RegType)
	}
	if sc.RegIncreaseFactor > 0 {
		opts.RegIncreaseFactor = sc.RegIncreaseFactor
	}
	if sc.RegMin > 0 {
		opts.RegMin = sc.RegMin
	}
	if sc.RegForwardBump > 0 {
		opts.RegForwardBump = sc.RegForwardBump
	}
	if sc.LinesearchIterations > 0 {
		opts.LinesearchIterations = sc.LinesearchIterations
	}
	if sc.LinesearchLowerBound > 0 {
		opts.LinesearchLowerBound = sc.LinesearchLowerBound
	}
	if sc.LinesearchUpperBound > 0 {
		opts.LinesearchUpperBound = sc.LinesearchUpperBound
	}
	if sc.DJCounterLimit > 0 {
		opts.DJCounterLimit = sc.DJCounterLimit
	}
	return opts, nil
}

func DefaultConfig() *Config {
	return &Config{
		Model:     "pendulum",
		Knots:     DefaultKnots,
		Dt:        DefaultDt,
		InitState: []float64{0, 0},
		GoalState: []float64{3.141592653589793, 0},
		Weights: WeightConfig{
			Q:  []float64{0.01, 0.01},
			R:  []float64{0.1},
			Qf: []float64{100, 100},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Knots < 2 {
		return fmt.Errorf("knots must be at least 2, got %d", c.Knots)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if len(c.Weights.Q) != len(c.InitState) || len(c.Weights.Qf) != len(c.InitState) {
		return fmt.Errorf("state weight dimension %d does not match state dimension %d", len(c.Weights.Q), len(c.InitState))
	}
	if len(c.GoalState) != len(c.InitState) {
		return fmt.Errorf("goal state dimension %d does not match state dimension %d", len(c.GoalState), len(c.InitState))
	}
	return nil
}
