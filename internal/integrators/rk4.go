package integrators

import "github.com/san-kum/kinefig/internal/dynamo"

// RK4 is the classic fourth order Runge-Kutta method. It keeps no state
// between calls, so one value can serve concurrent solvers.
type RK4 struct{}

func NewRK4() *RK4 { return &RK4{} }

func (r *RK4) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return rk4Tableau.step(sys, x, t, dt)
}
