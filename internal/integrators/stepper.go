package integrators

import (
	"fmt"

	"github.com/san-kum/trajopt/internal/traj"
)

// Method selects the explicit Runge-Kutta scheme used to discretize a
// continuous-time system.
type Method int

const (
	Euler Method = iota
	RK4
)

func (m Method) String() string {
	if m == Euler {
		return "euler"
	}
	return "rk4"
}

// ParseMethod maps a config name to a Method.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "", "rk4":
		return RK4, nil
	case "euler":
		return Euler, nil
	default:
		return RK4, fmt.Errorf("unknown integration method: %s", name)
	}
}

// tableau holds the coefficients of an explicit Runge-Kutta scheme. a is
// strictly lower triangular; b are the output weights, c the stage times.
type tableau struct {
	c []float64
	a [][]float64
	b []float64
}

func (m Method) tableau() tableau {
	switch m {
	case Euler:
		return tableau{
			c: []float64{0},
			a: [][]float64{nil},
			b: []float64{1},
		}
	default:
		return tableau{
			c: []float64{0, 0.5, 0.5, 1},
			a: [][]float64{
				nil,
				{0.5},
				{0, 0.5},
				{0, 0, 1},
			},
			b: []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
		}
	}
}

// stepper advances a continuous-time system by one controlled step. The
// stage buffers are sized once for the state dimension; step itself never
// allocates, so it is safe inside the optimizer's inner loops.
type stepper struct {
	tab tableau
	k   []traj.State // stage derivatives
	y   traj.State   // stage evaluation point
}

func newStepper(m Method, n int) *stepper {
	tab := m.tableau()
	s := &stepper{
		tab: tab,
		k:   make([]traj.State, len(tab.b)),
		y:   make(traj.State, n),
	}
	for i := range s.k {
		s.k[i] = make(traj.State, n)
	}
	return s
}

// step writes x advanced by dt under control u into out. out must not
// alias x.
func (s *stepper) step(sys traj.System, x traj.State, u traj.Control, t, dt float64, out traj.State) {
	for i := range s.k {
		copy(s.y, x)
		for j, aij := range s.tab.a[i] {
			if aij == 0 {
				continue
			}
			for l := range s.y {
				s.y[l] += dt * aij * s.k[j][l]
			}
		}
		copy(s.k[i], sys.Derive(s.y, u, t+s.tab.c[i]*dt))
	}

	copy(out, x)
	for i, bi := range s.tab.b {
		for l := range out {
			out[l] += dt * bi * s.k[i][l]
		}
	}
}
