package traj

import "errors"

// Domain errors for trajectory optimization.
var (
	// ErrCostBlowup indicates the trajectory cost exceeded the configured limit.
	ErrCostBlowup = errors.New("traj: cost exceeded maximum value")

	// ErrCostIncreased indicates the forward pass accepted a worse trajectory.
	// This is an invariant violation: the fallback branch must clamp the cost.
	ErrCostIncreased = errors.New("traj: cost increased during forward pass")

	// ErrIllConditioned indicates the backward pass could not restore positive
	// definiteness within its restart budget.
	ErrIllConditioned = errors.New("traj: control Hessian not positive definite")

	// ErrDimensionMismatch indicates mismatched state/control dimensions.
	ErrDimensionMismatch = errors.New("traj: dimension mismatch")

	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("traj: invalid state (NaN or Inf detected)")
)

// SolveError wraps a terminal solver error with the iteration at which it occurred.
type SolveError struct {
	Iteration int
	Wrapped   error
}

func (e *SolveError) Error() string {
	return e.Wrapped.Error()
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}
