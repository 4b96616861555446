package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Equal reports whether both states have the same arity and identical values.
func (s State) Equal(other State) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// System is an ODE right-hand side. Autonomous systems ignore t.
type System interface {
	Name() string
	Derive(x State, t float64) State
	StateDim() int
}

// Hamiltonian is implemented by systems that can report mechanical energy.
type Hamiltonian interface {
	Energy(x State) float64
}

// Validator is implemented by systems whose physical parameters have a
// restricted domain.
type Validator interface {
	Validate() error
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	// StepAdaptive attempts one step of size dt. It returns the new state,
	// the suggested next step size and whether the step met tol. A rejected
	// step must be retried with the suggested size.
	StepAdaptive(sys System, x State, t, dt, tol float64) (State, float64, bool)
}

// Corrector rewrites a freshly integrated state at a discontinuity. It
// returns the state to accept and whether a correction took place.
type Corrector interface {
	Correct(prev, next State) (State, bool)
}

// Correction records one event applied by a Corrector.
type Correction struct {
	Step   int
	Time   float64
	Before State
	After  State
}

// Trajectory holds the accepted states of one run, index-aligned with Times.
type Trajectory struct {
	Times  []float64
	States []State
}

func (tr *Trajectory) Len() int {
	return len(tr.States)
}

// Column extracts coordinate i of every state.
func (tr *Trajectory) Column(i int) []float64 {
	col := make([]float64, len(tr.States))
	for k, s := range tr.States {
		if i < len(s) {
			col[k] = s[i]
		}
	}
	return col
}
