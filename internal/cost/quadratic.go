package cost

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajopt/internal/traj"
)

// Quadratic is a tracking cost with quadratic stage and terminal terms:
//
//	l(x, u)  = 1/2 (x-xref)' Q (x-xref) + 1/2 u' R u
//	lf(x)    = 1/2 (x-xref)' Qf (x-xref)
type Quadratic struct {
	Q    *mat.SymDense
	R    *mat.SymDense
	Qf   *mat.SymDense
	Xref traj.State

	dx *mat.VecDense
	qd *mat.VecDense
}

// NewQuadratic builds a quadratic cost from diagonal weights.
func NewQuadratic(q, r, qf []float64, xref traj.State) *Quadratic {
	n, m := len(q), len(r)
	c := &Quadratic{
		Q:    mat.NewSymDense(n, nil),
		R:    mat.NewSymDense(m, nil),
		Qf:   mat.NewSymDense(n, nil),
		Xref: xref.Clone(),
		dx:   mat.NewVecDense(n, nil),
		qd:   mat.NewVecDense(n, nil),
	}
	for i := 0; i < n; i++ {
		c.Q.SetSym(i, i, q[i])
		c.Qf.SetSym(i, i, qf[i])
	}
	for i := 0; i < m; i++ {
		c.R.SetSym(i, i, r[i])
	}
	return c
}

// NewQuadraticFull builds a quadratic cost from full weight matrices.
func NewQuadraticFull(q, r, qf *mat.SymDense, xref traj.State) *Quadratic {
	n := q.SymmetricDim()
	return &Quadratic{
		Q:    q,
		R:    r,
		Qf:   qf,
		Xref: xref.Clone(),
		dx:   mat.NewVecDense(n, nil),
		qd:   mat.NewVecDense(n, nil),
	}
}

func (c *Quadratic) deviation(x traj.State) *mat.VecDense {
	for i := range x {
		c.dx.SetVec(i, x[i]-c.Xref[i])
	}
	return c.dx
}

// Stage evaluates the stage cost at a single knot.
func (c *Quadratic) Stage(x traj.State, u traj.Control) float64 {
	dx := c.deviation(x)
	c.qd.MulVec(c.Q, dx)
	j := 0.5 * mat.Dot(dx, c.qd)
	for i := range u {
		ru := 0.0
		for l := range u {
			ru += c.R.At(i, l) * u[l]
		}
		j += 0.5 * u[i] * ru
	}
	return j
}

// Terminal evaluates the terminal cost.
func (c *Quadratic) Terminal(x traj.State) float64 {
	dx := c.deviation(x)
	c.qd.MulVec(c.Qf, dx)
	return 0.5 * mat.Dot(dx, c.qd)
}

// Evaluate sums stage costs over the interior knots plus the terminal cost.
func (c *Quadratic) Evaluate(z traj.Trajectory) float64 {
	j := 0.0
	for k := 0; k < z.NumKnots()-1; k++ {
		j += c.Stage(z[k].X, z[k].U)
	}
	return j + c.Terminal(z[z.NumKnots()-1].X)
}

func (c *Quadratic) StageExpansion(x traj.State, u traj.Control, dt float64, qx, qu *mat.VecDense, qxx, quu, qux *mat.Dense) {
	dx := c.deviation(x)
	qx.MulVec(c.Q, dx)
	n := len(x)
	m := len(u)
	for i := 0; i < m; i++ {
		ru := 0.0
		for l := 0; l < m; l++ {
			ru += c.R.At(i, l) * u[l]
		}
		qu.SetVec(i, ru)
	}
	for i := 0; i < n; i++ {
		for l := 0; l < n; l++ {
			qxx.Set(i, l, c.Q.At(i, l))
		}
	}
	for i := 0; i < m; i++ {
		for l := 0; l < m; l++ {
			quu.Set(i, l, c.R.At(i, l))
		}
	}
	qux.Zero()
}

func (c *Quadratic) TerminalExpansion(x traj.State, qx *mat.VecDense, qxx *mat.Dense) {
	dx := c.deviation(x)
	qx.MulVec(c.Qf, dx)
	n := len(x)
	for i := 0; i < n; i++ {
		for l := 0; l < n; l++ {
			qxx.Set(i, l, c.Qf.At(i, l))
		}
	}
}
