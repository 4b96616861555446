package physics

import (
	"math"

	"github.com/san-kum/kinefig/internal/dynamo"
)

const (
	DefaultGravity = 9.81
	DefaultMass    = 1.0
)

func positive(system, name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return &dynamo.ParameterError{System: system, Param: name, Value: v, Constraint: "a positive finite real"}
	}
	return nil
}

func nonNegative(system, name string, v float64) error {
	if !(v >= 0) || math.IsInf(v, 0) {
		return &dynamo.ParameterError{System: system, Param: name, Value: v, Constraint: "a non-negative finite real"}
	}
	return nil
}

// restitution must lie in (0, 1] so a bounce never adds energy.
func restitution(system, name string, v float64) error {
	if !(v > 0 && v <= 1) {
		return &dynamo.ParameterError{System: system, Param: name, Value: v, Constraint: "in (0, 1]"}
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
