package integrators

import (
	"math"

	"github.com/san-kum/kinefig/internal/dynamo"
)

// RK45 is the Dormand-Prince embedded pair with error-controlled steps.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
	tol      float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
		tol:      1e-6,
	}
}

// Step takes one fifth order step of size dt regardless of the error
// estimate. Use StepAdaptive for error control.
func (r *RK45) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	next, _, _ := r.StepAdaptive(sys, x, t, dt, r.tol)
	return next
}

func (r *RK45) StepAdaptive(sys dynamo.System, x dynamo.State, t, dt, tol float64) (dynamo.State, float64, bool) {
	tb := dopriTableau
	k := tb.stages(sys, x, t, dt)
	next := combine(x, k, tb.b, dt)

	// mixed absolute/relative error, scaled by the state and the first stage
	worst := 0.0
	for i := range x {
		est := 0.0
		for j, ej := range tb.e {
			est += ej * k[j][i]
		}
		scale := math.Abs(x[i]) + math.Abs(dt*k[0][i]) + 1e-10
		worst = math.Max(worst, math.Abs(dt*est)/scale)
	}

	ratio := worst / tol
	switch {
	case ratio > 1:
		return next, dt * math.Max(r.minScale, r.safety*math.Pow(ratio, -0.25)), false
	case ratio > 0:
		return next, dt * math.Min(r.maxScale, r.safety*math.Pow(ratio, -0.2)), true
	default:
		return next, dt * r.maxScale, true
	}
}
