package physics

import (
	"math"

	"github.com/san-kum/kinefig/internal/dynamo"
)

const (
	PendulumName = "pendulum"

	DefaultLength          = 1.9
	DefaultPendulumDamping = 1.0
)

type PendulumParams struct {
	Gravity float64
	Length  float64
	Mass    float64
	Damping float64
}

func DefaultPendulumParams() PendulumParams {
	return PendulumParams{
		Gravity: DefaultGravity,
		Length:  DefaultLength,
		Mass:    DefaultMass,
		Damping: DefaultPendulumDamping,
	}
}

func (p PendulumParams) Validate() error {
	return firstErr(
		positive(PendulumName, "gravity", p.Gravity),
		positive(PendulumName, "length", p.Length),
		positive(PendulumName, "mass", p.Mass),
		nonNegative(PendulumName, "damping", p.Damping),
	)
}

// Pendulum is a point mass on a rigid massless rod, θ measured from the
// downward vertical, with viscous damping torque -c·ω at the pivot.
type Pendulum struct {
	p PendulumParams
}

func NewPendulum(p PendulumParams) (*Pendulum, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Pendulum{p: p}, nil
}

func (p *Pendulum) Name() string           { return PendulumName }
func (p *Pendulum) StateDim() int          { return 2 }
func (p *Pendulum) Params() PendulumParams { return p.p }
func (p *Pendulum) Validate() error        { return p.p.Validate() }

func (p *Pendulum) Derive(x dynamo.State, t float64) dynamo.State {
	theta := x[0]
	omega := x[1]

	alpha := (-p.p.Damping*omega - p.p.Mass*p.p.Gravity*p.p.Length*math.Sin(theta)) / (p.p.Mass * p.p.Length * p.p.Length)

	return dynamo.State{omega, alpha}
}

func (p *Pendulum) Energy(x dynamo.State) float64 {
	// KE = 0.5 * m * (L*omega)^2
	// PE = m * g * L * (1 - cos(theta))
	v := p.p.Length * x[1]
	ke := 0.5 * p.p.Mass * v * v
	pe := p.p.Mass * p.p.Gravity * p.p.Length * (1.0 - math.Cos(x[0]))
	return ke + pe
}

// NaturalFrequency is the small-angle angular frequency sqrt(g/L).
func (p *Pendulum) NaturalFrequency() float64 {
	return math.Sqrt(p.p.Gravity / p.p.Length)
}

