package metrics

import "github.com/san-kum/kinefig/internal/dynamo"

// Metric folds accepted states into a single figure of merit.
type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}

// Collect resets every metric, feeds it the whole trajectory and returns
// the values by name.
func Collect(traj *dynamo.Trajectory, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for i, x := range traj.States {
			m.Observe(x, traj.Times[i])
		}
		out[m.Name()] = m.Value()
	}
	return out
}
