package models

import (
	"fmt"
	"math"

	"github.com/san-kum/trajopt/internal/traj"
)

// Pendulum is a torque-actuated point mass on a rigid massless rod. The
// angle is measured from the hanging position, so a swing-up drives the
// state toward (pi, 0).
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    1.0,
		Length:  0.5,
		Damping: 0.1,
		Gravity: 9.81,
	}
}

func (p *Pendulum) StateDim() int   { return 2 }
func (p *Pendulum) ControlDim() int { return 1 }

// inertia about the pivot.
func (p *Pendulum) inertia() float64 {
	return p.Mass * p.Length * p.Length
}

func (p *Pendulum) Derive(x traj.State, u traj.Control, t float64) traj.State {
	theta, omega := x[0], x[1]

	// Net torque about the pivot: actuator minus gravity and viscous drag.
	tau := u[0] - p.Mass*p.Gravity*p.Length*math.Sin(theta) - p.Damping*omega

	return traj.State{omega, tau / p.inertia()}
}

func (p *Pendulum) Energy(x traj.State) float64 {
	kinetic := 0.5 * p.inertia() * x[1] * x[1]
	potential := p.Mass * p.Gravity * p.Length * (1 - math.Cos(x[0]))
	return kinetic + potential
}

func (p *Pendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":    p.Mass,
		"length":  p.Length,
		"damping": p.Damping,
		"gravity": p.Gravity,
	}
}

func (p *Pendulum) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		p.Mass = value
	case "length":
		p.Length = value
	case "damping":
		p.Damping = value
	case "gravity":
		p.Gravity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
