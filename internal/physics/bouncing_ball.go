package physics

import "github.com/san-kum/kinefig/internal/dynamo"

const (
	BouncingBallName = "bouncing_ball"

	DefaultHorizontalVelocity = 1.0
	DefaultRestitution        = 0.9
	GroundLevel               = 0.0
)

type BouncingBallParams struct {
	Gravity            float64
	HorizontalVelocity float64
	Restitution        float64
}

func DefaultBouncingBallParams() BouncingBallParams {
	return BouncingBallParams{
		Gravity:            DefaultGravity,
		HorizontalVelocity: DefaultHorizontalVelocity,
		Restitution:        DefaultRestitution,
	}
}

func (p BouncingBallParams) Validate() error {
	return firstErr(
		positive(BouncingBallName, "gravity", p.Gravity),
		positive(BouncingBallName, "horizontal_velocity", p.HorizontalVelocity),
		restitution(BouncingBallName, "restitution", p.Restitution),
	)
}

// BouncingBall integrates only the vertical motion [y, v_y]. Horizontal
// motion is uniform and derived from time, see HorizontalPosition. Ground
// impacts are not part of the ODE and are handled by the Bounce corrector.
type BouncingBall struct {
	p      BouncingBallParams
	bounce *Bounce
}

func NewBouncingBall(p BouncingBallParams) (*BouncingBall, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	bounce, err := NewBounce(GroundLevel, p.Restitution)
	if err != nil {
		return nil, err
	}
	return &BouncingBall{p: p, bounce: bounce}, nil
}

func (b *BouncingBall) Name() string               { return BouncingBallName }
func (b *BouncingBall) StateDim() int              { return 2 }
func (b *BouncingBall) Params() BouncingBallParams { return b.p }
func (b *BouncingBall) Validate() error            { return b.p.Validate() }

// Corrector returns the ground impact rule for this ball.
func (b *BouncingBall) Corrector() dynamo.Corrector { return b.bounce }

func (b *BouncingBall) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -b.p.Gravity}
}

// Energy is the specific mechanical energy of the vertical motion (per unit
// mass, relative to the ground).
func (b *BouncingBall) Energy(x dynamo.State) float64 {
	return b.p.Gravity*(x[0]-GroundLevel) + 0.5*x[1]*x[1]
}

func (b *BouncingBall) HorizontalPosition(t float64) float64 {
	return b.p.HorizontalVelocity * t
}

