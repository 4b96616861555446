package physics

import "github.com/san-kum/kinefig/internal/dynamo"

// Bounce reverses a downward velocity at the ground. It fires on
// y <= Ground with v_y < 0, clamps y to Ground and scales the reversed
// velocity by Restitution. Only sampled states are inspected, so the impact
// is registered up to one step after the true crossing.
type Bounce struct {
	Ground      float64
	Restitution float64
}

func NewBounce(ground, e float64) (*Bounce, error) {
	b := &Bounce{Ground: ground, Restitution: e}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bounce) Validate() error {
	return restitution("bounce", "restitution", b.Restitution)
}

func (b *Bounce) Triggered(x dynamo.State) bool {
	return len(x) == 2 && x[0] <= b.Ground && x[1] < 0
}

func (b *Bounce) Correct(prev, next dynamo.State) (dynamo.State, bool) {
	if !b.Triggered(next) {
		return next, false
	}
	return dynamo.State{b.Ground, -next[1] * b.Restitution}, true
}
