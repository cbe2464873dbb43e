package traj

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

type Control []float64

func (u Control) Clone() Control {
	c := make(Control, len(u))
	copy(c, u)
	return c
}

// System is a continuous-time controlled dynamical system.
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Discrete is the dynamics oracle consumed by the solver: a discrete-time
// step function plus its Jacobians at an operating point.
type Discrete interface {
	StateDim() int
	ControlDim() int
	// Step returns x' = f(x, u, dt). Non-finite components signal an
	// invalid state to the caller.
	Step(x State, u Control, dt float64) State
	// Jacobians writes A = df/dx (n x n) and B = df/du (n x m)
	// evaluated at (x, u).
	Jacobians(a, b *mat.Dense, x State, u Control, dt float64)
}

// Cost is the cost oracle: total trajectory cost plus the quadratic
// expansion of stage and terminal terms. The linear and quadratic terms
// must agree with Evaluate at zero deviation.
type Cost interface {
	Evaluate(z Trajectory) float64
	// StageExpansion writes the gradient and Hessian blocks of the stage
	// cost at (x, u) into the supplied buffers.
	StageExpansion(x State, u Control, dt float64, qx, qu *mat.VecDense, qxx, quu, qux *mat.Dense)
	// TerminalExpansion writes the gradient and Hessian of the terminal
	// cost at x into the supplied buffers.
	TerminalExpansion(x State, qx *mat.VecDense, qxx *mat.Dense)
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
