package models

import (
	"fmt"
	"math"

	"github.com/san-kum/trajopt/internal/traj"
)

// CartPole is a pole hinged on a force-actuated cart. The pole angle is
// measured from upright, so balancing drives theta to 0. State layout is
// (cart position, cart velocity, pole angle, pole angular velocity).
type CartPole struct {
	CartMass   float64
	PoleMass   float64
	PoleLength float64
	Gravity    float64
}

func NewCartPole() *CartPole {
	return &CartPole{
		CartMass:   1.0,
		PoleMass:   0.1,
		PoleLength: 1.0,
		Gravity:    9.81,
	}
}

func (c *CartPole) StateDim() int   { return 4 }
func (c *CartPole) ControlDim() int { return 1 }

func (c *CartPole) Derive(x traj.State, u traj.Control, t float64) traj.State {
	vel, theta, omega := x[1], x[2], x[3]

	sin, cos := math.Sincos(theta)
	total := c.CartMass + c.PoleMass
	poleArm := c.PoleMass * c.PoleLength

	// Cart acceleration ignoring the pole reaction, then the pole's
	// angular acceleration about the hinge, then the correction back onto
	// the cart. Standard form with the pole modeled as a point mass at
	// 2/3 of its length.
	shared := (u[0] + poleArm*omega*omega*sin) / total
	alpha := (c.Gravity*sin - cos*shared) / (c.PoleLength * (4.0/3.0 - c.PoleMass*cos*cos/total))
	accel := shared - poleArm*alpha*cos/total

	return traj.State{vel, accel, omega, alpha}
}

func (c *CartPole) GetParams() map[string]float64 {
	return map[string]float64{
		"cart_mass":   c.CartMass,
		"pole_mass":   c.PoleMass,
		"pole_length": c.PoleLength,
		"gravity":     c.Gravity,
	}
}

func (c *CartPole) SetParam(name string, value float64) error {
	switch name {
	case "cart_mass":
		c.CartMass = value
	case "pole_mass":
		c.PoleMass = value
	case "pole_length":
		c.PoleLength = value
	case "gravity":
		c.Gravity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
