package ilqr

import (
	"math"

	"github.com/san-kum/trajopt/internal/traj"
)

// forwardPass searches for a step size alpha whose closed-loop rollout
// achieves a cost reduction inside the acceptance window, writing the result
// into the candidate trajectory. On repeated failure it falls back to the
// unchanged trajectory, bumps the damping, and returns the previous cost.
func (s *Solver) forwardPass(dV [2]float64, jPrev float64) (float64, error) {
	alpha := 1.0
	iter := 0
	ratio := -1.0
	j := math.Inf(1)
	s.alpha = 0

	for (ratio <= s.opts.LinesearchLowerBound || ratio > s.opts.LinesearchUpperBound) && j >= jPrev {
		if iter > s.opts.LinesearchIterations {
			// Give up: keep the accepted trajectory, penalize the damping,
			// and report no progress.
			s.zbar.CopyFrom(s.z)
			j = s.cost.Evaluate(s.zbar)
			s.alpha = 0
			s.reg.increase()
			s.reg.bump(s.opts.RegForwardBump)
			s.dJCounter++
			s.stats.FailedForward++
			break
		}

		if !s.rollout(alpha) {
			alpha *= 0.5
			iter++
			continue
		}

		j = s.cost.Evaluate(s.zbar)
		expected := -alpha * (dV[0] + alpha*dV[1])
		if expected > 0 {
			ratio = (jPrev - j) / expected
		} else {
			ratio = -1
		}
		s.alpha = alpha
		alpha *= 0.5
		iter++
	}

	if j > jPrev {
		return j, traj.ErrCostIncreased
	}
	return j, nil
}

// rollout integrates the candidate trajectory under the current gains at
// step size alpha, reading deviations from the accepted trajectory. It
// reports false when any state component leaves the finite trust region.
func (s *Solver) rollout(alpha float64) bool {
	copy(s.zbar[0].X, s.z[0].X)

	for k := 0; k < s.numKnots-1; k++ {
		for i := 0; i < s.n; i++ {
			s.dx.SetVec(i, s.zbar[k].X[i]-s.z[k].X[i])
		}
		s.du.MulVec(s.gainK[k], s.dx)
		for i := 0; i < s.m; i++ {
			s.zbar[k].U[i] = s.z[k].U[i] + s.du.AtVec(i) + alpha*s.gainD[k].AtVec(i)
		}

		xn := s.dyn.Step(s.zbar[k].X, s.zbar[k].U, s.zbar[k].Dt)
		for i := range xn {
			if math.IsNaN(xn[i]) || math.Abs(xn[i]) > s.opts.MaxStateValue {
				return false
			}
		}
		copy(s.zbar[k+1].X, xn)
	}
	return true
}

// openLoopRollout integrates the accepted trajectory from its initial state
// under its stored controls, with no feedback. Divergent states are clamped
// to the trust region so the initial cost stays finite.
func (s *Solver) openLoopRollout() {
	limit := s.opts.MaxStateValue
	for k := 0; k < s.numKnots-1; k++ {
		xn := s.dyn.Step(s.z[k].X, s.z[k].U, s.z[k].Dt)
		for i := range xn {
			switch {
			case math.IsNaN(xn[i]):
				xn[i] = limit
			case xn[i] > limit:
				xn[i] = limit
			case xn[i] < -limit:
				xn[i] = -limit
			}
		}
		copy(s.z[k+1].X, xn)
	}
}
