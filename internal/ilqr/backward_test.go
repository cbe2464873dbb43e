package ilqr

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajopt/internal/cost"
	"github.com/san-kum/trajopt/internal/traj"
)

// prepared returns a solver with the expansion cache filled along the
// open-loop trajectory, ready for a backward pass.
func prepared(t *testing.T, numKnots int) *Solver {
	t.Helper()
	dyn, c := doubleIntegratorProblem()
	s, err := New(dyn, c, numKnots, 0.1, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	copy(s.z[0].X, traj.State{1, 0})
	s.openLoopRollout()
	s.cache.refill(s.dyn, s.cost, s.z)
	return s
}

func TestBackwardPassSymmetry(t *testing.T) {
	s := prepared(t, 21)
	if _, err := s.backwardPass(); err != nil {
		t.Fatal(err)
	}

	for k := 0; k < s.numKnots; k++ {
		for i := 0; i < s.n; i++ {
			for j := 0; j < s.n; j++ {
				if d := math.Abs(s.sxx[k].At(i, j) - s.sxx[k].At(j, i)); d > 1e-12 {
					t.Errorf("Sxx[%d] asymmetric at (%d,%d): %g", k, i, j, d)
				}
			}
		}
	}
	for k := 0; k < s.numKnots-1; k++ {
		for i := 0; i < s.m; i++ {
			for j := 0; j < s.m; j++ {
				if d := math.Abs(s.quu[k].At(i, j) - s.quu[k].At(j, i)); d > 1e-12 {
					t.Errorf("Quu[%d] asymmetric at (%d,%d): %g", k, i, j, d)
				}
			}
		}
	}
}

func TestBackwardPassGainConsistency(t *testing.T) {
	s := prepared(t, 21)
	if _, err := s.backwardPass(); err != nil {
		t.Fatal(err)
	}
	if s.reg.rho != 0 {
		t.Fatalf("expected no regularization on a benign problem, rho=%g", s.reg.rho)
	}

	// With rho = 0 the regularized and unregularized Hessians coincide, so
	// Quu*K + Qux and Quu*d + Qu must both vanish.
	res := mat.NewDense(s.m, s.n, nil)
	vres := mat.NewVecDense(s.m, nil)
	for k := 0; k < s.numKnots-1; k++ {
		res.Mul(s.quu[k], s.gainK[k])
		res.Add(res, s.qux[k])
		if norm := mat.Norm(res, 2); norm > 1e-9 {
			t.Errorf("||Quu K + Qux|| = %g at knot %d", norm, k)
		}

		vres.MulVec(s.quu[k], s.gainD[k])
		vres.AddVec(vres, s.qu[k])
		if norm := mat.Norm(vres, 2); norm > 1e-9 {
			t.Errorf("||Quu d + Qu|| = %g at knot %d", norm, k)
		}
	}
}

func TestBackwardPassExpectedImprovement(t *testing.T) {
	s := prepared(t, 21)
	dV, err := s.backwardPass()
	if err != nil {
		t.Fatal(err)
	}

	// dV1 = sum d'Qu is negative for a descent direction away from the
	// optimum, and the predicted reduction at alpha=1 is positive.
	if dV[0] >= 0 {
		t.Errorf("expected negative dV1, got %g", dV[0])
	}
	if expected := -(dV[0] + dV[1]); expected <= 0 {
		t.Errorf("expected positive predicted reduction, got %g", expected)
	}
}

func TestBackwardPassRecoversFromIndefiniteHessian(t *testing.T) {
	// A negative control weight makes the raw Quu indefinite near the
	// terminal knot; the sweep must restart with increased damping until
	// the factorization succeeds.
	dyn, _ := doubleIntegratorProblem()
	c := cost.NewQuadratic(
		[]float64{1, 1},
		[]float64{-0.5},
		[]float64{1, 1},
		traj.State{0, 0},
	)
	opts := DefaultOptions()
	opts.RegIncreaseFactor = 10
	s, err := New(dyn, c, 11, 0.1, opts)
	if err != nil {
		t.Fatal(err)
	}
	copy(s.z[0].X, traj.State{1, 0})
	s.openLoopRollout()
	s.cache.refill(s.dyn, s.cost, s.z)

	if _, err := s.backwardPass(); err != nil {
		t.Fatalf("expected recovery through regularization, got %v", err)
	}
	if s.reg.drho == 0 {
		t.Error("expected at least one regularization increase")
	}
}

func TestRolloutRoundTrip(t *testing.T) {
	s := prepared(t, 21)
	if _, err := s.backwardPass(); err != nil {
		t.Fatal(err)
	}

	// At alpha = 0 the closed-loop rollout must reproduce the accepted
	// trajectory exactly: deviations stay zero by induction.
	if !s.rollout(0) {
		t.Fatal("alpha=0 rollout failed")
	}
	for k := 0; k < s.numKnots; k++ {
		for i := 0; i < s.n; i++ {
			if s.zbar[k].X[i] != s.z[k].X[i] {
				t.Fatalf("knot %d state %d differs: %v vs %v", k, i, s.zbar[k].X[i], s.z[k].X[i])
			}
		}
	}
}
