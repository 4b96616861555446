package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/kinefig/internal/dynamo"
)

// quadratic has energy 0.5*(x^2 + v^2).
type quadratic struct{}

func (quadratic) Energy(x dynamo.State) float64 { return 0.5 * (x[0]*x[0] + x[1]*x[1]) }

func TestEnergyMean(t *testing.T) {
	m := NewEnergy(quadratic{})

	m.Observe(dynamo.State{1, 0}, 0)
	m.Observe(dynamo.State{0, 2}, 0.1)

	if math.Abs(m.Value()-1.25) > 1e-12 {
		t.Errorf("expected mean energy 1.25, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(quadratic{})

	m.Observe(dynamo.State{1, 0}, 0)
	m.Observe(dynamo.State{0, 1.1}, 0.1)
	m.Observe(dynamo.State{0.9, 0}, 0.2)

	// the peak deviation counts, not the end point
	want := (0.5*1.21 - 0.5) / 0.5
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected drift %f, got %f", want, m.Value())
	}
}

func TestEnergyGain(t *testing.T) {
	m := NewEnergyGain(quadratic{})

	for i, x := range []dynamo.State{{1, 0}, {0.9, 0}, {0.95, 0}, {0.5, 0}} {
		m.Observe(x, float64(i))
	}

	want := (0.5*0.95*0.95 - 0.5*0.81) / 0.5
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected gain %f, got %f", want, m.Value())
	}
}

func TestEnergyGain_MonotoneIsZero(t *testing.T) {
	m := NewEnergyGain(quadratic{})
	for i := 0; i < 10; i++ {
		m.Observe(dynamo.State{1 / float64(i+1), 0}, float64(i))
	}
	if m.Value() != 0 {
		t.Errorf("decreasing energy should have zero gain, got %g", m.Value())
	}
}

func TestCollect(t *testing.T) {
	traj := &dynamo.Trajectory{
		Times:  []float64{0, 1, 2},
		States: []dynamo.State{{1, 0}, {0.01, 0.01}, {0.02, 0}},
	}

	got := Collect(traj, NewEnergy(quadratic{}), NewSettlingTime(0.1))

	if _, ok := got["energy"]; !ok {
		t.Error("energy missing")
	}
	if got["settling_time"] != 0 {
		t.Errorf("expected settling_time 0, got %f", got["settling_time"])
	}
}

func TestSettlingTime(t *testing.T) {
	tests := []struct {
		name   string
		states []dynamo.State
		want   float64
	}{
		{"always inside", []dynamo.State{{0.01, 0}, {0, 0.01}}, 0},
		{"settles", []dynamo.State{{1, 0}, {0.5, 0.2}, {0, 0.01}, {0.01, 0}}, 1},
		{"leaves again", []dynamo.State{{1, 0}, {0, 0}, {0, -0.3}, {0, 0}}, 2},
		{"never", []dynamo.State{{1, 0}, {0, 1}, {-1, 0}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSettlingTime(0.05)
			for i, x := range tt.states {
				m.Observe(x, float64(i))
			}
			if m.Value() != tt.want {
				t.Errorf("settling time = %v, want %v", m.Value(), tt.want)
			}
			m.Reset()
			if m.Value() != 0 {
				t.Errorf("reset left %v", m.Value())
			}
		})
	}
}
