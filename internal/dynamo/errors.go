package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a physical or run parameter outside its valid domain.
	ErrInvalidParameter = errors.New("dynamo: parameter out of valid bounds")

	// ErrIntegration indicates the integrator produced unusable output.
	ErrIntegration = errors.New("dynamo: integration failed")

	// ErrGeometryMapping indicates a state that cannot be mapped to scene geometry.
	ErrGeometryMapping = errors.New("dynamo: geometry mapping failed")

	// ErrInvalidState indicates a state vector with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates mismatched state dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")
)

// ParameterError reports a rejected parameter at setup.
type ParameterError struct {
	System     string
	Param      string
	Value      float64
	Constraint string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s = %g, must be %s", e.System, e.Param, e.Value, e.Constraint)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// IntegrationError wraps a solver failure with simulation context.
type IntegrationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *IntegrationError) Unwrap() []error {
	return []error{ErrIntegration, e.Wrapped}
}

// MappingError reports a state of unexpected arity reaching a mapper.
type MappingError struct {
	Mapper string
	Index  int
	Got    int
	Want   int
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("%s mapper: frame %d: state has %d components, want %d", e.Mapper, e.Index, e.Got, e.Want)
}

func (e *MappingError) Unwrap() error {
	return ErrGeometryMapping
}
