// Package dynamo provides core simulation primitives for the figure pipeline.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical stepping scheme
//   - [Corrector]: discrete event correction applied between steps
//   - [TimeGrid]: fixed-step sample instants
//   - [Trajectory]: accepted states, index-aligned with a TimeGrid
//
// # Errors
//
// Every failure is reported through one of three sentinels so callers can
// tell which stage broke: [ErrInvalidParameter], [ErrIntegration] and
// [ErrGeometryMapping]. The typed wrappers ([ParameterError],
// [IntegrationError], [MappingError]) carry the details.
//
// # Example
//
//	grid, _ := dynamo.NewTimeGrid(20, 0.055)
//	traj, err := sim.NewSolver(integrators.NewRK45()).Solve(ctx, pendulum, x0, grid)
package dynamo
