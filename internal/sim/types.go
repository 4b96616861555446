package sim

import (
	"fmt"

	"github.com/san-kum/kinefig/internal/dynamo"
)

const (
	DefaultTolerance = 1e-6
	DefaultMinDt     = 1e-10
	DefaultMaxStep   = 0.005
)

// Config tunes how the solver advances between grid instants. Tolerance and
// MinDt apply to adaptive integrators, MaxStep caps the sub-step of fixed
// ones.
type Config struct {
	Tolerance float64
	MinDt     float64
	MaxStep   float64
}

func DefaultConfig() Config {
	return Config{
		Tolerance: DefaultTolerance,
		MinDt:     DefaultMinDt,
		MaxStep:   DefaultMaxStep,
	}
}

func (c Config) validate() error {
	if !(c.Tolerance > 0) {
		return &dynamo.ParameterError{System: "solver", Param: "tolerance", Value: c.Tolerance, Constraint: "positive"}
	}
	if !(c.MinDt > 0) {
		return &dynamo.ParameterError{System: "solver", Param: "min_dt", Value: c.MinDt, Constraint: "positive"}
	}
	if !(c.MaxStep > 0) {
		return &dynamo.ParameterError{System: "solver", Param: "max_step", Value: c.MaxStep, Constraint: "positive"}
	}
	return nil
}

// guard sits between an integrator and a system and records the first
// derivative that has the wrong arity or non-finite entries. Integrators
// have no error return, so the solver inspects guard.err after every step.
type guard struct {
	sys dynamo.System
	err error
}

func (g *guard) Name() string  { return g.sys.Name() }
func (g *guard) StateDim() int { return g.sys.StateDim() }

func (g *guard) Derive(x dynamo.State, t float64) dynamo.State {
	dim := g.sys.StateDim()
	if g.err != nil {
		return make(dynamo.State, dim)
	}

	dx := g.sys.Derive(x, t)
	if len(dx) != dim {
		g.err = fmt.Errorf("%w: derivative has %d components, want %d", dynamo.ErrDimensionMismatch, len(dx), dim)
		return make(dynamo.State, dim)
	}
	if !dx.IsValid() {
		g.err = fmt.Errorf("%w: derivative at t=%.4f is %v", dynamo.ErrInvalidState, t, dx)
		return make(dynamo.State, dim)
	}
	return dx
}

func checkState(x dynamo.State, dim int) error {
	if len(x) != dim {
		return fmt.Errorf("%w: state has %d components, want %d", dynamo.ErrDimensionMismatch, len(x), dim)
	}
	if !x.IsValid() {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidState, x)
	}
	return nil
}
