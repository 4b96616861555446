package physics

import (
	"math"

	"github.com/san-kum/kinefig/internal/dynamo"
)

const (
	DefaultStiffness = 4.0
	DefaultDamping   = 0.0
)

type SpringMassParams struct {
	Mass      float64
	Stiffness float64
	Damping   float64
}

func DefaultSpringMassParams() SpringMassParams {
	return SpringMassParams{
		Mass:      DefaultMass,
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
	}
}

func (p SpringMassParams) Validate() error {
	return firstErr(
		positive(SpringMassName, "mass", p.Mass),
		positive(SpringMassName, "stiffness", p.Stiffness),
		nonNegative(SpringMassName, "damping", p.Damping),
	)
}

// SpringMass is a single block on a frictionless floor tied to a wall:
// m·ẍ = -k·x - c·ẋ.
type SpringMass struct {
	p SpringMassParams
}

const SpringMassName = "spring_mass"

func NewSpringMass(p SpringMassParams) (*SpringMass, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &SpringMass{p: p}, nil
}

func (s *SpringMass) Name() string             { return SpringMassName }
func (s *SpringMass) StateDim() int            { return 2 }
func (s *SpringMass) Params() SpringMassParams { return s.p }
func (s *SpringMass) Validate() error          { return s.p.Validate() }

func (s *SpringMass) Derive(x dynamo.State, t float64) dynamo.State {
	pos, vel := x[0], x[1]
	acc := -(s.p.Stiffness/s.p.Mass)*pos - (s.p.Damping/s.p.Mass)*vel
	return dynamo.State{vel, acc}
}

func (s *SpringMass) Energy(x dynamo.State) float64 {
	pos, vel := x[0], x[1]
	return 0.5*s.p.Mass*vel*vel + 0.5*s.p.Stiffness*pos*pos
}

// NaturalFrequency is the undamped angular frequency sqrt(k/m).
func (s *SpringMass) NaturalFrequency() float64 {
	return math.Sqrt(s.p.Stiffness / s.p.Mass)
}

