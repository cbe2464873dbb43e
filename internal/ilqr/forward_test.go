package ilqr

import (
	"math"
	"testing"
)

func TestForwardPassAcceptsDescentStep(t *testing.T) {
	s := prepared(t, 21)
	jPrev := s.cost.Evaluate(s.z)

	dV, err := s.backwardPass()
	if err != nil {
		t.Fatal(err)
	}

	j, err := s.forwardPass(dV, jPrev)
	if err != nil {
		t.Fatal(err)
	}
	if j >= jPrev {
		t.Errorf("expected strict cost decrease, got %g >= %g", j, jPrev)
	}
	if s.alpha <= 0 {
		t.Errorf("expected a positive accepted step size, got %g", s.alpha)
	}
	if s.stats.FailedForward != 0 {
		t.Errorf("unexpected failed forward pass count: %d", s.stats.FailedForward)
	}
}

func TestForwardPassFallback(t *testing.T) {
	s := prepared(t, 21)
	jPrev := s.cost.Evaluate(s.z)

	if _, err := s.backwardPass(); err != nil {
		t.Fatal(err)
	}

	// Zero gains make every rollout reproduce the accepted trajectory, so
	// the actual reduction is exactly zero while the supplied dV predicts
	// a large one. The line search must exhaust and fall back.
	for k := 0; k < s.numKnots-1; k++ {
		s.gainK[k].Zero()
		s.gainD[k].Zero()
	}
	rhoBefore := s.reg.rho

	j, err := s.forwardPass([2]float64{-1, 0}, jPrev)
	if err != nil {
		t.Fatal(err)
	}

	if j != jPrev {
		t.Errorf("fallback must clamp the cost to the previous value: got %g, want %g", j, jPrev)
	}
	if s.alpha != 0 {
		t.Errorf("expected alpha 0 after fallback, got %g", s.alpha)
	}
	if s.dJCounter != 1 {
		t.Errorf("expected dJ counter 1, got %d", s.dJCounter)
	}
	if s.stats.FailedForward != 1 {
		t.Errorf("expected one recorded failed forward pass, got %d", s.stats.FailedForward)
	}
	if s.reg.rho < rhoBefore+s.opts.RegForwardBump {
		t.Errorf("expected rho bumped by at least %g, got %g", s.opts.RegForwardBump, s.reg.rho)
	}

	// The candidate must be the unchanged trajectory.
	for k := 0; k < s.numKnots; k++ {
		for i := 0; i < s.n; i++ {
			if s.zbar[k].X[i] != s.z[k].X[i] {
				t.Fatalf("candidate state differs from accepted at knot %d", k)
			}
		}
	}
}

func TestRolloutRejectsDivergence(t *testing.T) {
	s := prepared(t, 11)
	if _, err := s.backwardPass(); err != nil {
		t.Fatal(err)
	}

	s.opts.MaxStateValue = 1e-6
	if s.rollout(1.0) {
		t.Error("expected rollout failure with a tiny state limit")
	}
	s.opts.MaxStateValue = math.Inf(1)
	if !s.rollout(1.0) {
		t.Error("expected rollout success with no state limit")
	}
}
