package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/kinefig/internal/dynamo"
)

// Verlet and Leapfrog assume the state is laid out as [positions...,
// velocities...] and that the second half of the derivative is the
// acceleration. Velocity dependent forces are evaluated at the velocity
// the step started with.

// Verlet is velocity Verlet.
type Verlet struct{}

func NewVerlet() *Verlet { return &Verlet{} }

func (v *Verlet) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	h := len(x) / 2
	acc := sys.Derive(x, t)[h:]

	next := x.Clone()
	floats.AddScaled(next[:h], dt, x[h:])
	floats.AddScaled(next[:h], 0.5*dt*dt, acc)

	accNext := sys.Derive(next, t+dt)[h:]
	floats.AddScaled(next[h:], 0.5*dt, acc)
	floats.AddScaled(next[h:], 0.5*dt, accNext)
	return next
}

// Leapfrog is the kick-drift-kick form.
type Leapfrog struct{}

func NewLeapfrog() *Leapfrog { return &Leapfrog{} }

func (l *Leapfrog) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	h := len(x) / 2

	next := x.Clone()
	floats.AddScaled(next[h:], 0.5*dt, sys.Derive(x, t)[h:])
	floats.AddScaled(next[:h], dt, next[h:])
	floats.AddScaled(next[h:], 0.5*dt, sys.Derive(next, t+dt)[h:])
	return next
}
