package ilqr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajopt/internal/traj"
)

// Solver is an iterative LQR trajectory optimizer. It owns two trajectory
// buffers (accepted and candidate), the expansion cache, the gain and
// cost-to-go arrays, and all scratch space; everything is allocated once at
// construction and reused across iterations. A Solver is not safe for
// concurrent use.
type Solver struct {
	dyn  traj.Discrete
	cost traj.Cost
	opts Options

	n, m, numKnots int

	z    traj.Trajectory // accepted
	zbar traj.Trajectory // candidate, written by the forward pass

	cache *expansion

	// Action-value expansion per interior knot, rebuilt every sweep.
	qx, qu        []*mat.VecDense
	qxx, quu, qux []*mat.Dense

	gainK []*mat.Dense    // feedback, m x n
	gainD []*mat.VecDense // feedforward, m

	sx  []*mat.VecDense // cost-to-go gradient
	sxx []*mat.Dense    // cost-to-go Hessian

	reg       regularizer
	dJCounter int
	alpha     float64

	stats Stats

	// Scratch. Inner loops allocate nothing.
	quuReg *mat.Dense
	quxReg *mat.Dense
	quuSym *mat.SymDense
	chol   mat.Cholesky
	nn     *mat.Dense
	nm     *mat.Dense
	mn     *mat.Dense
	mm     *mat.Dense
	nv     *mat.VecDense
	mv     *mat.VecDense
	dx     *mat.VecDense
	du     *mat.VecDense
}

// New builds a solver for the given oracles over a horizon of numKnots
// knots spaced dt apart.
func New(dyn traj.Discrete, c traj.Cost, numKnots int, dt float64, opts Options) (*Solver, error) {
	n, m := dyn.StateDim(), dyn.ControlDim()
	if numKnots < 2 {
		return nil, fmt.Errorf("ilqr: horizon must have at least 2 knots, got %d", numKnots)
	}
	if opts.RegIncreaseFactor <= 1 {
		return nil, fmt.Errorf("ilqr: regularization increase factor must be > 1, got %g", opts.RegIncreaseFactor)
	}
	if opts.Iterations <= 0 {
		return nil, fmt.Errorf("ilqr: iterations must be positive, got %d", opts.Iterations)
	}

	s := &Solver{
		dyn:      dyn,
		cost:     c,
		opts:     opts,
		n:        n,
		m:        m,
		numKnots: numKnots,
		z:        traj.NewTrajectory(n, m, numKnots, dt),
		zbar:     traj.NewTrajectory(n, m, numKnots, dt),
		cache:    newExpansion(n, m, numKnots),
		qx:       make([]*mat.VecDense, numKnots-1),
		qu:       make([]*mat.VecDense, numKnots-1),
		qxx:      make([]*mat.Dense, numKnots-1),
		quu:      make([]*mat.Dense, numKnots-1),
		qux:      make([]*mat.Dense, numKnots-1),
		gainK:    make([]*mat.Dense, numKnots-1),
		gainD:    make([]*mat.VecDense, numKnots-1),
		sx:       make([]*mat.VecDense, numKnots),
		sxx:      make([]*mat.Dense, numKnots),
		quuReg:   mat.NewDense(m, m, nil),
		quxReg:   mat.NewDense(m, n, nil),
		quuSym:   mat.NewSymDense(m, nil),
		nn:       mat.NewDense(n, n, nil),
		nm:       mat.NewDense(n, m, nil),
		mn:       mat.NewDense(m, n, nil),
		mm:       mat.NewDense(m, m, nil),
		nv:       mat.NewVecDense(n, nil),
		mv:       mat.NewVecDense(m, nil),
		dx:       mat.NewVecDense(n, nil),
		du:       mat.NewVecDense(m, nil),
	}
	s.reg = regularizer{factor: opts.RegIncreaseFactor, min: opts.RegMin}
	for k := 0; k < numKnots-1; k++ {
		s.qx[k] = mat.NewVecDense(n, nil)
		s.qu[k] = mat.NewVecDense(m, nil)
		s.qxx[k] = mat.NewDense(n, n, nil)
		s.quu[k] = mat.NewDense(m, m, nil)
		s.qux[k] = mat.NewDense(m, n, nil)
		s.gainK[k] = mat.NewDense(m, n, nil)
		s.gainD[k] = mat.NewVecDense(m, nil)
	}
	for k := 0; k < numKnots; k++ {
		s.sx[k] = mat.NewVecDense(n, nil)
		s.sxx[k] = mat.NewDense(n, n, nil)
	}
	return s, nil
}

// Solve runs the optimizer from the initial state under the supplied
// initial controls (zeros when nil) and returns the accepted trajectory
// with the solve statistics. Recoverable numerical trouble is handled
// internally; only cost blowup and the cost-increase invariant violation
// surface as errors, and both still return the trajectory and statistics.
func (s *Solver) Solve(x0 traj.State, u0 []traj.Control) (traj.Trajectory, *Stats, error) {
	if len(x0) != s.n {
		return nil, nil, traj.ErrDimensionMismatch
	}

	s.reg.reset()
	s.dJCounter = 0
	s.stats.reset()

	copy(s.z[0].X, x0)
	for k := 0; k < s.numKnots-1; k++ {
		for i := range s.z[k].U {
			s.z[k].U[i] = 0
		}
	}
	if u0 != nil {
		s.z.SetControls(u0)
	}
	s.openLoopRollout()
	jPrev := s.cost.Evaluate(s.z)

	for i := 1; i <= s.opts.Iterations; i++ {
		s.cache.refill(s.dyn, s.cost, s.z)

		dV, err := s.backwardPass()
		if err != nil {
			// Restart budget exhausted: equivalent to an exhausted line
			// search so the dJ counter can end the solve instead of
			// looping forever.
			s.dJCounter++
			s.stats.FailedForward++
			s.stats.record(jPrev, 0, math.Inf(1))
			if s.dJCounter > s.opts.DJCounterLimit {
				s.stats.Reason = ReasonStalled
				break
			}
			continue
		}

		j, err := s.forwardPass(dV, jPrev)
		if err != nil {
			s.stats.Reason = ReasonCostIncreased
			s.stats.record(j, j-jPrev, 0)
			return s.z.Clone(), s.result(), &traj.SolveError{Iteration: i, Wrapped: err}
		}
		if j > s.opts.MaxCostValue {
			s.stats.Reason = ReasonCostBlowup
			s.stats.record(j, math.Abs(j-jPrev), 0)
			return s.z.Clone(), s.result(), &traj.SolveError{Iteration: i, Wrapped: traj.ErrCostBlowup}
		}

		s.z.CopyFrom(s.zbar)
		dJ := math.Abs(j - jPrev)
		g := s.gradient()
		s.stats.record(j, dJ, g)
		if s.opts.OnIteration != nil {
			s.opts.OnIteration(IterStat{Iter: i, Cost: j, DJ: dJ, Gradient: g, Alpha: s.alpha, Rho: s.reg.rho})
		}
		if s.alpha > 0 {
			s.dJCounter = 0
		}

		if s.checkConvergence(dJ, g) {
			break
		}
		jPrev = j
	}

	return s.z.Clone(), s.result(), nil
}

// result folds the regularizer's end-of-solve state into the statistics
// and returns a caller-owned snapshot.
func (s *Solver) result() *Stats {
	s.stats.RegIncreases = s.reg.increases
	s.stats.FinalRho = s.reg.rho
	return s.stats.snapshot()
}

// gradient is the normalized feedforward magnitude heuristic: the mean over
// interior knots of max_j |d[k][j]| / (|u[k][j]| + 1).
func (s *Solver) gradient() float64 {
	sum := 0.0
	for k := 0; k < s.numKnots-1; k++ {
		maxRatio := 0.0
		for j := 0; j < s.m; j++ {
			r := math.Abs(s.gainD[k].AtVec(j)) / (math.Abs(s.z[k].U[j]) + 1)
			if r > maxRatio {
				maxRatio = r
			}
		}
		sum += maxRatio
	}
	return sum / float64(s.numKnots-1)
}

// checkConvergence applies the termination tests after an accepted
// iteration. dJ must be strictly positive for the cost test so a fallback
// pass cannot register as convergence.
func (s *Solver) checkConvergence(dJ, g float64) bool {
	switch {
	case dJ > 0 && dJ < s.opts.CostTolerance:
		s.stats.Reason = ReasonCostTolerance
		s.stats.Converged = true
	case g < s.opts.GradientTolerance:
		s.stats.Reason = ReasonGradientTolerance
		s.stats.Converged = true
	case s.dJCounter > s.opts.DJCounterLimit:
		s.stats.Reason = ReasonStalled
	default:
		return false
	}
	return true
}

func (s *Stats) snapshot() *Stats {
	c := &Stats{
		Cost:          append([]float64(nil), s.Cost...),
		DJ:            append([]float64(nil), s.DJ...),
		Gradient:      append([]float64(nil), s.Gradient...),
		Iterations:    s.Iterations,
		FailedForward: s.FailedForward,
		RegIncreases:  s.RegIncreases,
		FinalRho:      s.FinalRho,
		Converged:     s.Converged,
		Reason:        s.Reason,
	}
	return c
}

// Rho exposes the current damping, mainly for inspection after a solve.
func (s *Solver) Rho() float64 { return s.reg.rho }
