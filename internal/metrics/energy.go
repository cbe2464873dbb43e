package metrics

import (
	"github.com/san-kum/trajopt/internal/traj"
)

// Energy reports the mean mechanical energy along a trajectory for systems
// that expose a Hamiltonian.
type Energy struct {
	h       traj.Hamiltonian
	sum     float64
	samples int
}

func NewEnergy(h traj.Hamiltonian) *Energy {
	return &Energy{h: h}
}

func (e *Energy) Name() string {
	return "mean_energy"
}

func (e *Energy) Observe(x traj.State, u traj.Control, t float64) {
	e.sum += e.h.Energy(x)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *Energy) Reset() {
	e.sum = 0
	e.samples = 0
}
