package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/kinefig/internal/dynamo"
)

// tableau is the Butcher tableau of an explicit Runge-Kutta scheme. Row i
// of a holds the weights of stages 0..i-1 used to build stage i.
type tableau struct {
	c []float64
	a [][]float64
	b []float64

	// e holds b minus the weights of the embedded lower-order solution.
	// Only adaptive schemes set it.
	e []float64
}

// stages evaluates every stage derivative of one step.
func (tb *tableau) stages(sys dynamo.System, x dynamo.State, t, dt float64) []dynamo.State {
	k := make([]dynamo.State, len(tb.c))
	for i, ci := range tb.c {
		xi := x.Clone()
		for j, aij := range tb.a[i] {
			if aij != 0 {
				floats.AddScaled(xi, dt*aij, k[j])
			}
		}
		k[i] = sys.Derive(xi, t+ci*dt)
	}
	return k
}

// combine returns x + dt·Σ w_i·k_i without touching x.
func combine(x dynamo.State, k []dynamo.State, w []float64, dt float64) dynamo.State {
	out := x.Clone()
	for i, wi := range w {
		if wi != 0 {
			floats.AddScaled(out, dt*wi, k[i])
		}
	}
	return out
}

// step advances x by one step of size dt.
func (tb *tableau) step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return combine(x, tb.stages(sys, x, t, dt), tb.b, dt)
}

var (
	eulerTableau = &tableau{
		c: []float64{0},
		a: [][]float64{{}},
		b: []float64{1},
	}

	rk4Tableau = &tableau{
		c: []float64{0, 0.5, 0.5, 1},
		a: [][]float64{
			{},
			{0.5},
			{0, 0.5},
			{0, 0, 1},
		},
		b: []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
	}

	// Dormand-Prince 5(4). The last stage is evaluated at the fifth order
	// solution and only feeds the error estimate.
	dopriTableau = &tableau{
		c: []float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1},
		a: [][]float64{
			{},
			{1.0 / 5},
			{3.0 / 40, 9.0 / 40},
			{44.0 / 45, -56.0 / 15, 32.0 / 9},
			{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
			{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
			{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
		},
		b: []float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0},
		e: []float64{
			35.0/384 - 5179.0/57600,
			0,
			500.0/1113 - 7571.0/16695,
			125.0/192 - 393.0/640,
			-2187.0/6784 + 92097.0/339200,
			11.0/84 - 187.0/2100,
			-1.0 / 40,
		},
	}
)
