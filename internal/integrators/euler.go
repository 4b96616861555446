package integrators

import "github.com/san-kum/kinefig/internal/dynamo"

// Euler is the explicit first order method. Only useful for comparisons.
type Euler struct{}

func NewEuler() *Euler { return &Euler{} }

func (e *Euler) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return eulerTableau.step(sys, x, t, dt)
}
