package cost

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajopt/internal/traj"
)

func TestQuadraticEvaluate(t *testing.T) {
	c := NewQuadratic([]float64{2, 2}, []float64{1}, []float64{10, 10}, traj.State{0, 0})

	z := traj.NewTrajectory(2, 1, 3, 0.1)
	z[0].X = traj.State{1, 0}
	z[0].U = traj.Control{2}
	z[1].X = traj.State{0, 1}
	z[1].U = traj.Control{0}
	z[2].X = traj.State{1, 1}

	// stage 0: 0.5*2*1 + 0.5*1*4 = 3
	// stage 1: 0.5*2*1 = 1
	// terminal: 0.5*10*(1+1) = 10
	want := 14.0
	if got := c.Evaluate(z); math.Abs(got-want) > 1e-12 {
		t.Errorf("Evaluate = %v, want %v", got, want)
	}
}

func TestQuadraticTracksReference(t *testing.T) {
	c := NewQuadratic([]float64{1, 1}, []float64{1}, []float64{1, 1}, traj.State{2, 0})

	if got := c.Terminal(traj.State{2, 0}); got != 0 {
		t.Errorf("cost at the reference should be zero, got %v", got)
	}
	if got := c.Stage(traj.State{2, 0}, traj.Control{0}); got != 0 {
		t.Errorf("stage cost at the reference should be zero, got %v", got)
	}
}

// The expansion must agree with finite differences of the scalar cost.
func TestStageExpansionMatchesFiniteDifferences(t *testing.T) {
	c := NewQuadratic([]float64{2, 3}, []float64{0.5}, []float64{10, 10}, traj.State{1, -1})

	x := traj.State{0.3, 0.7}
	u := traj.Control{1.2}

	qx := mat.NewVecDense(2, nil)
	qu := mat.NewVecDense(1, nil)
	qxx := mat.NewDense(2, 2, nil)
	quu := mat.NewDense(1, 1, nil)
	qux := mat.NewDense(1, 2, nil)
	c.StageExpansion(x, u, 0.1, qx, qu, qxx, quu, qux)

	h := 1e-6
	for i := range x {
		xp, xm := x.Clone(), x.Clone()
		xp[i] += h
		xm[i] -= h
		fd := (c.Stage(xp, u) - c.Stage(xm, u)) / (2 * h)
		if math.Abs(fd-qx.AtVec(i)) > 1e-6 {
			t.Errorf("qx[%d] = %v, finite difference %v", i, qx.AtVec(i), fd)
		}
	}
	for i := range u {
		up, um := u.Clone(), u.Clone()
		up[i] += h
		um[i] -= h
		fd := (c.Stage(x, up) - c.Stage(x, um)) / (2 * h)
		if math.Abs(fd-qu.AtVec(i)) > 1e-6 {
			t.Errorf("qu[%d] = %v, finite difference %v", i, qu.AtVec(i), fd)
		}
	}

	if quu.At(0, 0) != 0.5 {
		t.Errorf("quu = %v, want 0.5", quu.At(0, 0))
	}
	if qxx.At(0, 0) != 2 || qxx.At(1, 1) != 3 {
		t.Errorf("qxx diagonal = (%v,%v), want (2,3)", qxx.At(0, 0), qxx.At(1, 1))
	}
	if qux.At(0, 0) != 0 || qux.At(0, 1) != 0 {
		t.Error("qux should be zero for a separable quadratic cost")
	}
}

func TestTerminalExpansion(t *testing.T) {
	c := NewQuadratic([]float64{1, 1}, []float64{1}, []float64{100, 100}, traj.State{0, 0})

	qx := mat.NewVecDense(2, nil)
	qxx := mat.NewDense(2, 2, nil)
	c.TerminalExpansion(traj.State{0.5, -0.5}, qx, qxx)

	if qx.AtVec(0) != 50 || qx.AtVec(1) != -50 {
		t.Errorf("terminal gradient = (%v,%v), want (50,-50)", qx.AtVec(0), qx.AtVec(1))
	}
	if qxx.At(0, 0) != 100 || qxx.At(1, 1) != 100 {
		t.Error("terminal Hessian should be Qf")
	}
}
