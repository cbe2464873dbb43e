package metrics

import (
	"math"

	"github.com/san-kum/trajopt/internal/traj"
)

// TerminalError tracks the distance of the last observed state from a goal.
type TerminalError struct {
	goal traj.State
	last traj.State
}

func NewTerminalError(goal traj.State) *TerminalError {
	return &TerminalError{goal: goal.Clone()}
}

func (e *TerminalError) Name() string {
	return "terminal_error"
}

func (e *TerminalError) Observe(x traj.State, u traj.Control, t float64) {
	if len(e.last) != len(x) {
		e.last = make(traj.State, len(x))
	}
	copy(e.last, x)
}

func (e *TerminalError) Value() float64 {
	if len(e.last) == 0 {
		return math.Inf(1)
	}
	return e.last.Sub(e.goal).Norm()
}

func (e *TerminalError) Reset() {
	e.last = e.last[:0]
}
