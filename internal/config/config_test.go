package config

import (
	"path/filepath"
	"testing"

	"github.com/san-kum/trajopt/internal/ilqr"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "pendulum" {
		t.Errorf("expected model pendulum, got %s", cfg.Model)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Knots < 2 {
		t.Error("knots should be at least 2")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"too few knots", func(c *Config) { c.Knots = 1 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"weight mismatch", func(c *Config) { c.Weights.Q = []float64{1} }},
		{"goal mismatch", func(c *Config) { c.GoalState = []float64{0} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSolverOptions(t *testing.T) {
	sc := SolverConfig{}
	opts, err := sc.Options()
	if err != nil {
		t.Fatal(err)
	}
	def := ilqr.DefaultOptions()
	if opts.Iterations != def.Iterations || opts.CostTolerance != def.CostTolerance {
		t.Error("zero config should fall back to defaults")
	}

	sc = SolverConfig{RegType: "state", Iterations: 42}
	opts, err = sc.Options()
	if err != nil {
		t.Fatal(err)
	}
	if opts.RegType != ilqr.RegState {
		t.Error("reg_type state not applied")
	}
	if opts.Iterations != 42 {
		t.Error("iterations override not applied")
	}

	sc = SolverConfig{RegType: "bogus"}
	if _, err := sc.Options(); err == nil {
		t.Error("expected error for unknown reg_type")
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")

	cfg := DefaultConfig()
	cfg.Knots = 77
	cfg.Solver.RegType = "state"

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Knots != 77 {
		t.Errorf("expected 77 knots, got %d", loaded.Knots)
	}
	if loaded.Solver.RegType != "state" {
		t.Errorf("expected state reg, got %s", loaded.Solver.RegType)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("pendulum", "swingup")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset should validate: %v", err)
	}

	if GetPreset("pendulum", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "swingup") != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestListPresets(t *testing.T) {
	if presets := ListPresets("pendulum"); len(presets) == 0 {
		t.Error("expected presets for pendulum")
	}
	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestAllPresetsValidate(t *testing.T) {
	for model, byName := range Presets {
		for name, cfg := range byName {
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset %s/%s invalid: %v", model, name, err)
			}
		}
	}
}
