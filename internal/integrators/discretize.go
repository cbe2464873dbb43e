package integrators

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajopt/internal/traj"
)

var cubeEps = math.Pow(math.Nextafter(1, 2)-1, 1.0/3)

// Discretizer turns a continuous-time system into the discrete dynamics
// oracle expected by the solver, integrating with the chosen Runge-Kutta
// scheme. Jacobians are approximated with central differences around the
// operating point; the perturbation and stage buffers are preallocated, so
// a Jacobian evaluation allocates only what the wrapped system's Derive
// allocates.
type Discretizer struct {
	sys traj.System
	st  *stepper

	xPert  traj.State
	uPert  traj.Control
	fp, fm traj.State
}

func NewDiscretizer(sys traj.System, method Method) *Discretizer {
	n := sys.StateDim()
	return &Discretizer{
		sys:   sys,
		st:    newStepper(method, n),
		xPert: make(traj.State, n),
		uPert: make(traj.Control, sys.ControlDim()),
		fp:    make(traj.State, n),
		fm:    make(traj.State, n),
	}
}

func (d *Discretizer) StateDim() int   { return d.sys.StateDim() }
func (d *Discretizer) ControlDim() int { return d.sys.ControlDim() }

// System returns the wrapped continuous-time system.
func (d *Discretizer) System() traj.System { return d.sys }

func (d *Discretizer) Step(x traj.State, u traj.Control, dt float64) traj.State {
	out := make(traj.State, len(x))
	d.st.step(d.sys, x, u, 0, dt, out)
	return out
}

func (d *Discretizer) Jacobians(a, b *mat.Dense, x traj.State, u traj.Control, dt float64) {
	n, m := d.sys.StateDim(), d.sys.ControlDim()

	copy(d.xPert, x)
	for j := 0; j < n; j++ {
		h := cubeEps * math.Max(1, math.Abs(x[j]))
		d.xPert[j] = x[j] + h
		d.st.step(d.sys, d.xPert, u, 0, dt, d.fp)
		d.xPert[j] = x[j] - h
		d.st.step(d.sys, d.xPert, u, 0, dt, d.fm)
		d.xPert[j] = x[j]
		for i := 0; i < n; i++ {
			a.Set(i, j, (d.fp[i]-d.fm[i])/(2*h))
		}
	}

	copy(d.uPert, u)
	for j := 0; j < m; j++ {
		h := cubeEps * math.Max(1, math.Abs(u[j]))
		d.uPert[j] = u[j] + h
		d.st.step(d.sys, x, d.uPert, 0, dt, d.fp)
		d.uPert[j] = u[j] - h
		d.st.step(d.sys, x, d.uPert, 0, dt, d.fm)
		d.uPert[j] = u[j]
		for i := 0; i < n; i++ {
			b.Set(i, j, (d.fp[i]-d.fm[i])/(2*h))
		}
	}
}
