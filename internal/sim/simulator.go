package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/kinefig/internal/dynamo"
	"github.com/sirupsen/logrus"
)

// Solver turns an initial state and a time grid into a Trajectory.
type Solver struct {
	integrator dynamo.Integrator
	cfg        Config
	log        logrus.FieldLogger
}

func New(integrator dynamo.Integrator, cfg Config) *Solver {
	return &Solver{
		integrator: integrator,
		cfg:        cfg,
		log:        logrus.StandardLogger(),
	}
}

func (s *Solver) SetLogger(l logrus.FieldLogger) { s.log = l }

// Solve integrates sys over the whole grid in one pass. The returned
// trajectory has one state per grid instant and starts with an exact copy of
// x0. On failure no trajectory is returned.
func (s *Solver) Solve(ctx context.Context, sys dynamo.System, x0 dynamo.State, grid dynamo.TimeGrid) (*dynamo.Trajectory, error) {
	if err := s.Validate(sys, x0, grid); err != nil {
		return nil, err
	}

	traj, err := s.solve(ctx, sys, x0, grid)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"system":  sys.Name(),
		"samples": traj.Len(),
	}).Debug("trajectory solved")

	return traj, nil
}

func (s *Solver) solve(ctx context.Context, sys dynamo.System, x0 dynamo.State, grid dynamo.TimeGrid) (*dynamo.Trajectory, error) {
	g := &guard{sys: sys}
	traj := &dynamo.Trajectory{
		Times:  append([]float64(nil), grid.Times...),
		States: make([]dynamo.State, 0, grid.Len()),
	}
	traj.States = append(traj.States, x0.Clone())

	x := x0.Clone()
	h := grid.Dt
	for i := 1; i < grid.Len(); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		next, hNext, err := s.advance(g, x, grid.Times[i-1], grid.Times[i], h)
		if err != nil {
			return nil, &dynamo.IntegrationError{Step: i, Time: grid.Times[i], State: x.Clone(), Wrapped: err}
		}
		x, h = next, hNext
		traj.States = append(traj.States, x.Clone())
	}
	return traj, nil
}

// SolveCorrected integrates one grid interval at a time, restarting the
// integrator from the accepted state of the previous interval, and lets corr
// rewrite each raw result before it is accepted. Events are detected on the
// sampled state only, so an event instant is late by at most one grid step.
func (s *Solver) SolveCorrected(ctx context.Context, sys dynamo.System, corr dynamo.Corrector, x0 dynamo.State, grid dynamo.TimeGrid) (*dynamo.Trajectory, []dynamo.Correction, error) {
	if err := s.Validate(sys, x0, grid); err != nil {
		return nil, nil, err
	}
	if v, ok := corr.(dynamo.Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, nil, err
		}
	}

	traj := &dynamo.Trajectory{
		Times:  append([]float64(nil), grid.Times...),
		States: make([]dynamo.State, 0, grid.Len()),
	}
	traj.States = append(traj.States, x0.Clone())

	var corrections []dynamo.Correction
	prev := x0.Clone()
	for i := 1; i < grid.Len(); i++ {
		b := grid.Times[i]
		raw, err := s.Advance(ctx, sys, prev, grid.Times[i-1], b)
		if err != nil {
			var ie *dynamo.IntegrationError
			if errors.As(err, &ie) {
				ie.Step = i
			}
			return nil, nil, err
		}

		accepted, hit := corr.Correct(prev, raw)
		if hit {
			if err := checkState(accepted, sys.StateDim()); err != nil {
				return nil, nil, &dynamo.IntegrationError{Step: i, Time: b, State: raw.Clone(), Wrapped: fmt.Errorf("corrected state: %w", err)}
			}
			corrections = append(corrections, dynamo.Correction{
				Step:   i,
				Time:   b,
				Before: raw.Clone(),
				After:  accepted.Clone(),
			})
		}

		traj.States = append(traj.States, accepted.Clone())
		prev = accepted.Clone()
	}

	s.log.WithFields(logrus.Fields{
		"system":      sys.Name(),
		"samples":     traj.Len(),
		"corrections": len(corrections),
	}).Debug("trajectory solved with event correction")

	return traj, corrections, nil
}

// Advance integrates a single interval [a, b] starting from x with a fresh
// integrator state. It is the restart primitive used between event checks.
func (s *Solver) Advance(ctx context.Context, sys dynamo.System, x dynamo.State, a, b float64) (dynamo.State, error) {
	next, _, err := s.Continue(ctx, sys, x, a, b, 0)
	return next, err
}

// Continue integrates [a, b] from x like Advance, but an adaptive integrator
// first tries step h (h <= 0 means the whole interval) and the step size to
// try next is returned. Feeding it back on consecutive intervals follows the
// same path as Solve.
func (s *Solver) Continue(ctx context.Context, sys dynamo.System, x dynamo.State, a, b, h float64) (dynamo.State, float64, error) {
	if !(b > a) {
		return nil, 0, &dynamo.ParameterError{System: sys.Name(), Param: "interval", Value: b - a, Constraint: "positive"}
	}
	if err := checkState(x, sys.StateDim()); err != nil {
		return nil, 0, &dynamo.IntegrationError{Step: 0, Time: a, State: x.Clone(), Wrapped: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	next, hNext, err := s.advance(&guard{sys: sys}, x.Clone(), a, b, h)
	if err != nil {
		return nil, 0, &dynamo.IntegrationError{Step: 1, Time: b, State: x.Clone(), Wrapped: err}
	}
	return next, hNext, nil
}

// Validate checks the solver configuration, the grid, the initial state and
// the system parameters without integrating anything.
func (s *Solver) Validate(sys dynamo.System, x0 dynamo.State, grid dynamo.TimeGrid) error {
	if err := s.cfg.validate(); err != nil {
		return err
	}
	if grid.Len() < 2 {
		return &dynamo.ParameterError{System: sys.Name(), Param: "grid samples", Value: float64(grid.Len()), Constraint: "at least 2"}
	}
	if err := checkState(x0, sys.StateDim()); err != nil {
		return &dynamo.IntegrationError{Step: 0, Time: grid.Times[0], State: x0.Clone(), Wrapped: err}
	}
	if v, ok := sys.(dynamo.Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// advance carries x from a to b. h is the step size to try first with an
// adaptive integrator; the suggested size for the next interval is returned.
func (s *Solver) advance(g *guard, x dynamo.State, a, b, h float64) (dynamo.State, float64, error) {
	dim := g.StateDim()
	span := b - a

	if adaptive, ok := s.integrator.(dynamo.AdaptiveIntegrator); ok {
		if h <= 0 || h > span {
			h = span
		}
		t := a
		for b-t > span*1e-12 {
			remaining := b - t
			step := math.Min(h, remaining)

			next, hNext, accepted := adaptive.StepAdaptive(g, x, t, step, s.cfg.Tolerance)
			if g.err != nil {
				return nil, 0, g.err
			}
			if !accepted {
				if hNext < s.cfg.MinDt {
					return nil, 0, fmt.Errorf("%w: %g at t=%.4f", dynamo.ErrStepTooSmall, hNext, t)
				}
				h = hNext
				continue
			}
			if err := checkState(next, dim); err != nil {
				return nil, 0, err
			}

			x = next
			if step >= remaining {
				t = b
			} else {
				t += step
			}
			h = hNext
		}
		return x, h, nil
	}

	n := int(math.Ceil(span/s.cfg.MaxStep - 1e-9))
	if n < 1 {
		n = 1
	}
	sub := span / float64(n)
	for k := 0; k < n; k++ {
		x = s.integrator.Step(g, x, a+float64(k)*sub, sub)
		if g.err != nil {
			return nil, 0, g.err
		}
		if err := checkState(x, dim); err != nil {
			return nil, 0, err
		}
	}
	return x, h, nil
}
