package integrators

import (
	"testing"

	"github.com/san-kum/kinefig/internal/dynamo"
)

type benchDynamics struct{}

func (b *benchDynamics) Name() string  { return "bench" }
func (b *benchDynamics) StateDim() int { return 2 }
func (b *benchDynamics) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0] - 0.1*x[1]}
}

func benchStep(b *testing.B, integrator dynamo.Integrator) {
	dyn := &benchDynamics{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkEuler(b *testing.B)    { benchStep(b, NewEuler()) }
func BenchmarkRK4(b *testing.B)      { benchStep(b, NewRK4()) }
func BenchmarkRK45(b *testing.B)     { benchStep(b, NewRK45()) }
func BenchmarkVerlet(b *testing.B)   { benchStep(b, NewVerlet()) }
func BenchmarkLeapfrog(b *testing.B) { benchStep(b, NewLeapfrog()) }
