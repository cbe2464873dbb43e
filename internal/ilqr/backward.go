package ilqr

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajopt/internal/traj"
)

// maxBackwardRestarts caps regularization restarts within one outer
// iteration to prevent livelock on an irreparably indefinite Hessian.
const maxBackwardRestarts = 10

// backwardPass runs the Riccati sweep: it forms the action-value expansion
// at each interior knot from the cached cost and dynamics derivatives, solves
// for the feedback and feedforward gains through a Cholesky factorization of
// the regularized control Hessian, and propagates the cost-to-go. It returns
// the expected-improvement scalars used by the line search.
//
// When the regularized Hessian is not positive definite the sweep restarts
// from the terminal knot with increased damping. The cached expansions are
// never mutated, so a restart re-derives the action-value terms cleanly.
func (s *Solver) backwardPass() ([2]float64, error) {
	last := s.numKnots - 1
	m := s.m

	var dV [2]float64
	for restarts := 0; ; restarts++ {
		s.sx[last].CopyVec(s.cache.cx[last])
		s.sxx[last].Copy(s.cache.cxx[last])
		dV = [2]float64{}

		failed := false
		for k := last - 1; k >= 0; k-- {
			a, b := s.cache.a[k], s.cache.b[k]

			// Action-value expansion: Q* = cost expansion + propagated terms.
			s.qx[k].MulVec(a.T(), s.sx[k+1])
			s.qx[k].AddVec(s.qx[k], s.cache.cx[k])
			s.qu[k].MulVec(b.T(), s.sx[k+1])
			s.qu[k].AddVec(s.qu[k], s.cache.cu[k])

			s.nn.Mul(s.sxx[k+1], a)
			s.qxx[k].Mul(a.T(), s.nn)
			s.qxx[k].Add(s.qxx[k], s.cache.cxx[k])
			s.qux[k].Mul(b.T(), s.nn)
			s.qux[k].Add(s.qux[k], s.cache.cux[k])

			s.nm.Mul(s.sxx[k+1], b)
			s.quu[k].Mul(b.T(), s.nm)
			s.quu[k].Add(s.quu[k], s.cache.cuu[k])

			symmetrize(s.qxx[k])
			symmetrize(s.quu[k])

			// Regularized copies feed only the gain solves, never the
			// cost-to-go recursion.
			switch s.opts.RegType {
			case RegState:
				s.mm.Mul(b.T(), b)
				s.mm.Scale(s.reg.rho, s.mm)
				s.quuReg.Add(s.quu[k], s.mm)
				s.mn.Mul(b.T(), a)
				s.mn.Scale(s.reg.rho, s.mn)
				s.quxReg.Add(s.qux[k], s.mn)
			default:
				s.quuReg.Copy(s.quu[k])
				for i := 0; i < m; i++ {
					s.quuReg.Set(i, i, s.quuReg.At(i, i)+s.reg.rho)
				}
				s.quxReg.Copy(s.qux[k])
			}
			symmetrize(s.quuReg)
			for i := 0; i < m; i++ {
				for j := i; j < m; j++ {
					s.quuSym.SetSym(i, j, s.quuReg.At(i, j))
				}
			}

			if !s.chol.Factorize(s.quuSym) {
				s.reg.increase()
				failed = true
				break
			}

			// One factorization serves both solves.
			if err := s.chol.SolveTo(s.gainK[k], s.quxReg); err != nil {
				s.reg.increase()
				failed = true
				break
			}
			s.gainK[k].Scale(-1, s.gainK[k])
			if err := s.chol.SolveVecTo(s.gainD[k], s.qu[k]); err != nil {
				s.reg.increase()
				failed = true
				break
			}
			s.gainD[k].ScaleVec(-1, s.gainD[k])

			// Cost-to-go with the unregularized expansion.
			s.mv.MulVec(s.quu[k], s.gainD[k])
			s.sx[k].CopyVec(s.qx[k])
			s.nv.MulVec(s.gainK[k].T(), s.mv)
			s.sx[k].AddVec(s.sx[k], s.nv)
			s.nv.MulVec(s.gainK[k].T(), s.qu[k])
			s.sx[k].AddVec(s.sx[k], s.nv)
			s.nv.MulVec(s.qux[k].T(), s.gainD[k])
			s.sx[k].AddVec(s.sx[k], s.nv)

			s.sxx[k].Copy(s.qxx[k])
			s.mn.Mul(s.quu[k], s.gainK[k])
			s.nn.Mul(s.gainK[k].T(), s.mn)
			s.sxx[k].Add(s.sxx[k], s.nn)
			s.nn.Mul(s.gainK[k].T(), s.qux[k])
			s.sxx[k].Add(s.sxx[k], s.nn)
			s.nn.Mul(s.qux[k].T(), s.gainK[k])
			s.sxx[k].Add(s.sxx[k], s.nn)
			symmetrize(s.sxx[k])

			dV[0] += mat.Dot(s.gainD[k], s.qu[k])
			dV[1] += 0.5 * mat.Dot(s.gainD[k], s.mv)
		}

		if !failed {
			s.reg.decrease()
			return dV, nil
		}
		if restarts >= maxBackwardRestarts {
			return dV, traj.ErrIllConditioned
		}
	}
}

// symmetrize replaces m with (m + m')/2.
func symmetrize(m *mat.Dense) {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			v := 0.5 * (m.At(i, j) + m.At(j, i))
			m.Set(i, j, v)
			m.Set(j, i, v)
		}
	}
}
