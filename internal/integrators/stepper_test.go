package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/trajopt/internal/traj"
)

type oscillator struct{}

func (o *oscillator) Derive(x traj.State, u traj.Control, t float64) traj.State {
	return traj.State{x[1], -x[0]}
}

func (o *oscillator) StateDim() int   { return 2 }
func (o *oscillator) ControlDim() int { return 0 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &oscillator{}
	st := newStepper(RK4, 2)

	x := traj.State{1.0, 0.0}
	next := make(traj.State, 2)
	u := traj.Control{}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		st.step(dyn, x, u, float64(i)*dt, dt, next)
		copy(x, next)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestEulerMatchesFirstOrderExpansion(t *testing.T) {
	dyn := &oscillator{}
	st := newStepper(Euler, 2)

	x := traj.State{1.0, 0.5}
	out := make(traj.State, 2)
	dt := 0.01
	st.step(dyn, x, traj.Control{}, 0, dt, out)

	// One Euler step is exactly x + dt*f(x).
	if math.Abs(out[0]-(1.0+dt*0.5)) > 1e-15 {
		t.Errorf("position = %v, want %v", out[0], 1.0+dt*0.5)
	}
	if math.Abs(out[1]-(0.5-dt*1.0)) > 1e-15 {
		t.Errorf("velocity = %v, want %v", out[1], 0.5-dt*1.0)
	}
}

func TestMethodsAgreeAtSmallStep(t *testing.T) {
	dyn := &oscillator{}
	euler := newStepper(Euler, 2)
	rk4 := newStepper(RK4, 2)

	x := traj.State{1.0, 0.0}
	coarse := make(traj.State, 2)
	fine := make(traj.State, 2)
	euler.step(dyn, x, traj.Control{}, 0, 0.001, coarse)
	rk4.step(dyn, x, traj.Control{}, 0, 0.001, fine)

	if math.Abs(coarse[0]-fine[0]) > 1e-5 {
		t.Errorf("euler and rk4 diverge at small dt: %v vs %v", coarse[0], fine[0])
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		name    string
		want    Method
		wantErr bool
	}{
		{"", RK4, false},
		{"rk4", RK4, false},
		{"euler", Euler, false},
		{"leapfrog", RK4, true},
	}

	for _, tt := range tests {
		got, err := ParseMethod(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMethod(%q) error = %v", tt.name, err)
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseMethod(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
