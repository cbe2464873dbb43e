package ilqr

// RegType selects how the backward pass damps the control Hessian.
type RegType int

const (
	// RegControl adds rho*I to Quu.
	RegControl RegType = iota
	// RegState adds rho*B'B to Quu and rho*B'A to Qux.
	RegState
)

func (t RegType) String() string {
	if t == RegState {
		return "state"
	}
	return "control"
}

// Options holds the solver configuration.
type Options struct {
	// Iterations is the maximum number of outer iterations.
	Iterations int
	// CostTolerance terminates the solve when 0 < dJ < CostTolerance.
	CostTolerance float64
	// GradientTolerance terminates the solve on a small feedforward gradient.
	GradientTolerance float64
	// MaxCostValue aborts the solve when the accepted cost exceeds it.
	MaxCostValue float64
	// MaxStateValue fails a rollout when any state component exceeds it.
	MaxStateValue float64

	RegType RegType
	// RegIncreaseFactor is the multiplicative damping rate (> 1).
	RegIncreaseFactor float64
	// RegMin is the floor for nonzero damping.
	RegMin float64
	// RegForwardBump is added to rho once per failed forward pass.
	RegForwardBump float64

	// LinesearchIterations bounds the backtracking loop.
	LinesearchIterations int
	// LinesearchLowerBound and LinesearchUpperBound define the acceptance
	// window on the ratio of actual to predicted cost reduction.
	LinesearchLowerBound float64
	LinesearchUpperBound float64

	// DJCounterLimit is the consecutive failed-forward-pass budget.
	DJCounterLimit int

	// OnIteration, when set, is called after each accepted iteration.
	OnIteration func(IterStat)
}

func DefaultOptions() Options {
	return Options{
		Iterations:           300,
		CostTolerance:        1e-4,
		GradientTolerance:    1e-5,
		MaxCostValue:         1e8,
		MaxStateValue:        1e8,
		RegType:              RegControl,
		RegIncreaseFactor:    1.6,
		RegMin:               1e-8,
		RegForwardBump:       10.0,
		LinesearchIterations: 10,
		LinesearchLowerBound: 1e-8,
		LinesearchUpperBound: 10.0,
		DJCounterLimit:       10,
	}
}
