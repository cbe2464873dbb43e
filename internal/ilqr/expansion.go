package ilqr

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajopt/internal/traj"
)

// expansion caches the dynamics Jacobians and cost derivatives of the
// accepted trajectory. It is refilled from the oracles once at the top of
// every outer iteration and is read-only for the rest of it, so the
// backward pass may restart without corrupting the cached terms.
type expansion struct {
	a []*mat.Dense // n x n, interior knots
	b []*mat.Dense // n x m, interior knots

	cx  []*mat.VecDense // stage gradients; last entry is the terminal gradient
	cu  []*mat.VecDense
	cxx []*mat.Dense // last entry is the terminal Hessian
	cuu []*mat.Dense
	cux []*mat.Dense
}

func newExpansion(n, m, numKnots int) *expansion {
	e := &expansion{
		a:   make([]*mat.Dense, numKnots-1),
		b:   make([]*mat.Dense, numKnots-1),
		cx:  make([]*mat.VecDense, numKnots),
		cu:  make([]*mat.VecDense, numKnots-1),
		cxx: make([]*mat.Dense, numKnots),
		cuu: make([]*mat.Dense, numKnots-1),
		cux: make([]*mat.Dense, numKnots-1),
	}
	for k := 0; k < numKnots-1; k++ {
		e.a[k] = mat.NewDense(n, n, nil)
		e.b[k] = mat.NewDense(n, m, nil)
		e.cu[k] = mat.NewVecDense(m, nil)
		e.cuu[k] = mat.NewDense(m, m, nil)
		e.cux[k] = mat.NewDense(m, n, nil)
	}
	for k := 0; k < numKnots; k++ {
		e.cx[k] = mat.NewVecDense(n, nil)
		e.cxx[k] = mat.NewDense(n, n, nil)
	}
	return e
}

// refill evaluates both oracles along the trajectory.
func (e *expansion) refill(dyn traj.Discrete, c traj.Cost, z traj.Trajectory) {
	last := z.NumKnots() - 1
	for k := 0; k < last; k++ {
		dyn.Jacobians(e.a[k], e.b[k], z[k].X, z[k].U, z[k].Dt)
		c.StageExpansion(z[k].X, z[k].U, z[k].Dt, e.cx[k], e.cu[k], e.cxx[k], e.cuu[k], e.cux[k])
	}
	c.TerminalExpansion(z[last].X, e.cx[last], e.cxx[last])
}
