package ilqr

import "math"

// regularizer is the Levenberg-Marquardt-like damping controller shared by
// the backward and forward passes. rho damps the control Hessian; drho is
// the multiplicative rate it grows or shrinks at.
type regularizer struct {
	rho    float64
	drho   float64
	factor float64 // increase factor, > 1
	min    float64 // floor for nonzero damping

	increases int // increase events this solve
}

func (r *regularizer) reset() {
	r.rho = 0
	r.drho = 0
	r.increases = 0
}

func (r *regularizer) increase() {
	r.drho = math.Max(r.drho*r.factor, r.factor)
	r.rho = math.Max(r.rho*r.drho, r.min)
	r.increases++
}

// decrease shrinks rho and collapses it to exactly zero once it would fall
// below the floor, terminating regularization rather than merely reducing it.
func (r *regularizer) decrease() {
	r.drho = math.Min(r.drho/r.factor, 1/r.factor)
	if r.rho*r.drho > r.min {
		r.rho *= r.drho
	} else {
		r.rho = 0
	}
}

// bump applies the one-shot forward-pass penalty.
func (r *regularizer) bump(amount float64) {
	r.rho += amount
}
