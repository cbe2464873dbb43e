package config

import "sort"

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"swingup": {
			Model: "pendulum", Knots: 101, Dt: 0.05,
			InitState: []float64{0, 0},
			GoalState: []float64{3.141592653589793, 0},
			Weights:   WeightConfig{Q: []float64{0.01, 0.01}, R: []float64{0.1}, Qf: []float64{100, 100}},
		},
		"gentle": {
			Model: "pendulum", Knots: 51, Dt: 0.05,
			InitState: []float64{0.3, 0},
			GoalState: []float64{0, 0},
			Weights:   WeightConfig{Q: []float64{1, 1}, R: []float64{0.5}, Qf: []float64{50, 50}},
		},
	},
	"cartpole": {
		"balance": {
			Model: "cartpole", Knots: 101, Dt: 0.02,
			InitState: []float64{0, 0, 0.2, 0},
			GoalState: []float64{0, 0, 0, 0},
			Weights:   WeightConfig{Q: []float64{1, 0.1, 1, 0.1}, R: []float64{0.05}, Qf: []float64{100, 10, 100, 10}},
		},
		"recover": {
			Model: "cartpole", Knots: 151, Dt: 0.02,
			InitState: []float64{0, 0, 0.6, 0},
			GoalState: []float64{0, 0, 0, 0},
			Weights:   WeightConfig{Q: []float64{1, 0.1, 1, 0.1}, R: []float64{0.02}, Qf: []float64{200, 20, 200, 20}},
		},
	},
	"double_integrator": {
		"rest": {
			Model: "double_integrator", Knots: 51, Dt: 0.1,
			InitState: []float64{1, 0},
			GoalState: []float64{0, 0},
			Weights:   WeightConfig{Q: []float64{1, 1}, R: []float64{1}, Qf: []float64{100, 100}},
		},
		"brake": {
			Model: "double_integrator", Knots: 51, Dt: 0.1,
			InitState: []float64{0, 2},
			GoalState: []float64{0, 0},
			Weights:   WeightConfig{Q: []float64{0.1, 1}, R: []float64{0.5}, Qf: []float64{100, 100}},
		},
	},
}

func GetPreset(model, name string) *Config {
	byName, ok := Presets[model]
	if !ok {
		return nil
	}
	return byName[name]
}

func ListPresets(model string) []string {
	byName, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
