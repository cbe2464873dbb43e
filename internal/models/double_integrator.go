package models

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajopt/internal/traj"
)

// DoubleIntegrator is a point mass on a line with directly commanded
// acceleration. It is defined directly in discrete time by a forward-Euler
// step (no dt^2/2 acceleration term in the position update), so it also
// carries analytic Jacobians.
type DoubleIntegrator struct {
	Mass float64
}

func NewDoubleIntegrator() *DoubleIntegrator {
	return &DoubleIntegrator{Mass: 1.0}
}

func (d *DoubleIntegrator) StateDim() int {
	return 2
}

func (d *DoubleIntegrator) ControlDim() int {
	return 1
}

func (d *DoubleIntegrator) Step(x traj.State, u traj.Control, dt float64) traj.State {
	accel := 0.0
	if len(u) > 0 {
		accel = u[0] / d.Mass
	}
	return traj.State{
		x[0] + dt*x[1],
		x[1] + dt*accel,
	}
}

func (d *DoubleIntegrator) Jacobians(a, b *mat.Dense, x traj.State, u traj.Control, dt float64) {
	a.Set(0, 0, 1)
	a.Set(0, 1, dt)
	a.Set(1, 0, 0)
	a.Set(1, 1, 1)
	b.Set(0, 0, 0)
	b.Set(1, 0, dt/d.Mass)
}

func (d *DoubleIntegrator) GetParams() map[string]float64 {
	return map[string]float64{"mass": d.Mass}
}

func (d *DoubleIntegrator) SetParam(name string, value float64) error {
	if name != "mass" {
		return fmt.Errorf("unknown param: %s", name)
	}
	d.Mass = value
	return nil
}
