package problem

import (
	"fmt"

	"github.com/san-kum/trajopt/internal/config"
	"github.com/san-kum/trajopt/internal/cost"
	"github.com/san-kum/trajopt/internal/ilqr"
	"github.com/san-kum/trajopt/internal/integrators"
	"github.com/san-kum/trajopt/internal/models"
	"github.com/san-kum/trajopt/internal/traj"
)

// Problem bundles everything one solve needs: the dynamics oracle, the
// cost oracle, the horizon, the initial state, and the solver options.
type Problem struct {
	Name         string
	Dyn          traj.Discrete
	Cost         *cost.Quadratic
	X0           traj.State
	Knots        int
	Dt           float64
	InitControls []traj.Control
	Opts         ilqr.Options
}

// Dynamics builds the discrete dynamics oracle for a named model. Models
// defined directly in discrete time are used as they are; continuous models are
// discretized with the given scheme.
func Dynamics(model string, method integrators.Method) (traj.Discrete, error) {
	switch model {
	case "double_integrator":
		return models.NewDoubleIntegrator(), nil
	case "pendulum":
		return integrators.NewDiscretizer(models.NewPendulum(), method), nil
	case "cartpole":
		return integrators.NewDiscretizer(models.NewCartPole(), method), nil
	default:
		return nil, fmt.Errorf("unknown model: %s (available: double_integrator, pendulum, cartpole)", model)
	}
}

// FromConfig assembles a Problem from a validated config.
func FromConfig(cfg *config.Config) (*Problem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	method, err := integrators.ParseMethod(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	dyn, err := Dynamics(cfg.Model, method)
	if err != nil {
		return nil, err
	}
	if dyn.StateDim() != len(cfg.InitState) {
		return nil, fmt.Errorf("model %s expects %d states, config has %d", cfg.Model, dyn.StateDim(), len(cfg.InitState))
	}
	if len(cfg.Weights.R) != dyn.ControlDim() {
		return nil, fmt.Errorf("model %s expects %d control weights, config has %d", cfg.Model, dyn.ControlDim(), len(cfg.Weights.R))
	}

	opts, err := cfg.Solver.Options()
	if err != nil {
		return nil, err
	}

	p := &Problem{
		Name:  cfg.Model,
		Dyn:   dyn,
		Cost:  cost.NewQuadratic(cfg.Weights.Q, cfg.Weights.R, cfg.Weights.Qf, traj.State(cfg.GoalState)),
		X0:    traj.State(cfg.InitState).Clone(),
		Knots: cfg.Knots,
		Dt:    cfg.Dt,
		Opts:  opts,
	}

	if len(cfg.InitControl) > 0 {
		if len(cfg.InitControl) != dyn.ControlDim() {
			return nil, fmt.Errorf("init_control has %d entries, model expects %d", len(cfg.InitControl), dyn.ControlDim())
		}
		p.InitControls = make([]traj.Control, cfg.Knots-1)
		for k := range p.InitControls {
			p.InitControls[k] = traj.Control(cfg.InitControl).Clone()
		}
	}

	return p, nil
}

// Solve builds a solver for the problem and runs it.
func (p *Problem) Solve() (traj.Trajectory, *ilqr.Stats, error) {
	solver, err := ilqr.New(p.Dyn, p.Cost, p.Knots, p.Dt, p.Opts)
	if err != nil {
		return nil, nil, err
	}
	return solver.Solve(p.X0, p.InitControls)
}
