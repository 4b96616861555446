package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// gridSlack absorbs representation error in duration/dt so that 20/0.05
// yields 400 samples rather than 399.
const gridSlack = 1e-9

// TimeGrid is a strictly increasing fixed-step sequence t_i = i*Dt with
// floor(Duration/Dt) samples.
type TimeGrid struct {
	Dt       float64
	Duration float64
	Times    []float64
}

func NewTimeGrid(duration, dt float64) (TimeGrid, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return TimeGrid{}, &ParameterError{System: "grid", Param: "dt", Value: dt, Constraint: "a positive finite real"}
	}
	if !(duration > 0) || math.IsInf(duration, 0) {
		return TimeGrid{}, &ParameterError{System: "grid", Param: "duration", Value: duration, Constraint: "a positive finite real"}
	}

	n := int(math.Floor(duration/dt + gridSlack))
	if n < 2 {
		return TimeGrid{}, &ParameterError{System: "grid", Param: "duration", Value: duration, Constraint: "at least two steps of dt"}
	}

	times := floats.Span(make([]float64, n), 0, float64(n-1)*dt)
	return TimeGrid{Dt: dt, Duration: duration, Times: times}, nil
}

func (g TimeGrid) Len() int {
	return len(g.Times)
}
