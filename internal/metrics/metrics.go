package metrics

import (
	"github.com/san-kum/trajopt/internal/traj"
)

type Metric interface {
	Name() string
	Observe(x traj.State, u traj.Control, t float64)
	Value() float64
	Reset()
}

// Evaluate runs the metrics over every knot of a solved trajectory and
// returns their final values by name.
func Evaluate(z traj.Trajectory, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	t := 0.0
	for k := 0; k < z.NumKnots(); k++ {
		for _, m := range ms {
			m.Observe(z[k].X, z[k].U, t)
		}
		t += z[k].Dt
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
