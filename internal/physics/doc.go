// Package physics provides the mechanical systems drawn as figures.
//
// Each model implements the [dynamo.System] interface, defining the
// differential equations governing the system's evolution:
//
//   - [SpringMass]: damped horizontal spring-mass oscillator, state [x, v]
//   - [Pendulum]: damped pendulum, state [θ, ω]
//   - [BouncingBall]: vertical free fall, state [y, v_y], with a [Bounce]
//     corrector for ground impacts
//
// Parameters are validated once in the constructors and are immutable
// afterwards. Every model implements [dynamo.Hamiltonian] so energy can be
// tracked along a trajectory:
//
//	p, _ := physics.NewPendulum(physics.DefaultPendulumParams())
//	energy := p.Energy(state)
package physics
