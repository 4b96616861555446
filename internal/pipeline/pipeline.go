package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/san-kum/kinefig/internal/dynamo"
	"github.com/san-kum/kinefig/internal/metrics"
	"github.com/san-kum/kinefig/internal/scene"
	"github.com/san-kum/kinefig/internal/sim"
	"github.com/sirupsen/logrus"
)

const (
	StageSolve = "solve"
	StageMap   = "map"
)

// Pipeline is parameterized by a system, an optional corrector and a mapper.
// A nil Corrector integrates the whole horizon in one pass.
type Pipeline struct {
	System    dynamo.System
	Corrector dynamo.Corrector
	Mapper    scene.Mapper
	Solver    *sim.Solver
	Metrics   []metrics.Metric

	log logrus.FieldLogger
}

func New(sys dynamo.System, corr dynamo.Corrector, mapper scene.Mapper, solver *sim.Solver) *Pipeline {
	return &Pipeline{
		System:    sys,
		Corrector: corr,
		Mapper:    mapper,
		Solver:    solver,
		log:       logrus.StandardLogger(),
	}
}

func (p *Pipeline) SetLogger(l logrus.FieldLogger) {
	p.log = l
	p.Solver.SetLogger(l)
}

func (p *Pipeline) AddMetric(m metrics.Metric) {
	p.Metrics = append(p.Metrics, m)
}

type Result struct {
	System      string
	Trajectory  *dynamo.Trajectory
	Corrections []dynamo.Correction
	Frames      []scene.Frame
	Layout      scene.Layout
	Metrics     map[string]float64
}

// Bounces is the number of corrector events in the run.
func (r *Result) Bounces() int { return len(r.Corrections) }

// Run solves the full horizon and maps every accepted state. Frame i is the
// image of Trajectory state i.
func (p *Pipeline) Run(ctx context.Context, x0 dynamo.State, grid dynamo.TimeGrid) (*Result, error) {
	name := p.System.Name()
	log := p.log.WithField("system", name)

	var (
		traj        *dynamo.Trajectory
		corrections []dynamo.Correction
		err         error
	)
	if p.Corrector != nil {
		traj, corrections, err = p.Solver.SolveCorrected(ctx, p.System, p.Corrector, x0, grid)
	} else {
		traj, err = p.Solver.Solve(ctx, p.System, x0, grid)
	}
	if err != nil {
		return nil, stageError(name, StageSolve, err)
	}
	log.WithFields(logrus.Fields{
		"stage":   StageSolve,
		"samples": traj.Len(),
		"bounces": len(corrections),
	}).Info("trajectory accepted")

	frames, err := scene.MapTrajectory(p.Mapper, traj)
	if err != nil {
		return nil, stageError(name, StageMap, err)
	}
	log.WithFields(logrus.Fields{
		"stage":  StageMap,
		"frames": len(frames),
	}).Debug("frames mapped")

	res := &Result{
		System:      name,
		Trajectory:  traj,
		Corrections: corrections,
		Frames:      frames,
		Layout:      p.Mapper.Layout(),
		Metrics:     metrics.Collect(traj, p.Metrics...),
	}
	if p.Corrector != nil {
		res.Metrics["bounces"] = float64(len(corrections))
	}
	return res, nil
}

// SimulationState is the accepted state at one grid instant.
type SimulationState struct {
	Index int
	Time  float64
	X     dynamo.State

	// H is the step an adaptive integrator tries first on the next
	// interval. Zero restarts from the full interval.
	H float64
}

// Start validates the run and returns the state at grid instant 0.
func (p *Pipeline) Start(x0 dynamo.State, grid dynamo.TimeGrid) (SimulationState, error) {
	name := p.System.Name()
	if err := p.Solver.Validate(p.System, x0, grid); err != nil {
		return SimulationState{}, stageError(name, StageSolve, err)
	}
	if v, ok := p.Corrector.(dynamo.Validator); ok {
		if err := v.Validate(); err != nil {
			return SimulationState{}, stageError(name, StageSolve, err)
		}
	}
	return SimulationState{Index: 0, Time: grid.Times[0], X: x0.Clone(), H: grid.Dt}, nil
}

// Step advances s to the next grid instant. The input is not modified. The
// returned correction is nil unless the corrector fired on this interval.
func (p *Pipeline) Step(ctx context.Context, s SimulationState, grid dynamo.TimeGrid) (SimulationState, *dynamo.Correction, error) {
	name := p.System.Name()
	i := s.Index + 1
	if i >= grid.Len() {
		return s, nil, stageError(name, StageSolve, &dynamo.ParameterError{
			System: name, Param: "step index", Value: float64(i), Constraint: fmt.Sprintf("below %d", grid.Len()),
		})
	}

	// smooth systems carry the step size across intervals like Solve; a
	// corrector forces a restart on every interval like SolveCorrected
	t := grid.Times[i]
	h := s.H
	if p.Corrector != nil {
		h = 0
	}
	raw, hNext, err := p.Solver.Continue(ctx, p.System, s.X, s.Time, t, h)
	if err != nil {
		var ie *dynamo.IntegrationError
		if errors.As(err, &ie) {
			ie.Step = i
		}
		return s, nil, stageError(name, StageSolve, err)
	}

	next := SimulationState{Index: i, Time: t, X: raw, H: hNext}
	if p.Corrector == nil {
		return next, nil, nil
	}

	accepted, hit := p.Corrector.Correct(s.X, raw)
	if !hit {
		return next, nil, nil
	}
	if !accepted.IsValid() || len(accepted) != p.System.StateDim() {
		return s, nil, stageError(name, StageSolve, &dynamo.IntegrationError{
			Step: i, Time: t, State: raw.Clone(), Wrapped: dynamo.ErrInvalidState,
		})
	}
	next.X = accepted.Clone()
	return next, &dynamo.Correction{Step: i, Time: t, Before: raw, After: accepted.Clone()}, nil
}

// Frame maps the state to its scene frame.
func (p *Pipeline) Frame(s SimulationState) (scene.Frame, error) {
	f, err := p.Mapper.Map(s.Index, s.Time, s.X)
	if err != nil {
		return scene.Frame{}, stageError(p.System.Name(), StageMap, err)
	}
	return f, nil
}

// Stream yields the frames of a run in order without holding the
// trajectory. Iteration stops after the first error, which is yielded with a
// zero frame.
func (p *Pipeline) Stream(ctx context.Context, x0 dynamo.State, grid dynamo.TimeGrid) iter.Seq2[scene.Frame, error] {
	return func(yield func(scene.Frame, error) bool) {
		s, err := p.Start(x0, grid)
		if err != nil {
			yield(scene.Frame{}, err)
			return
		}

		bounces := 0
		for {
			f, err := p.Frame(s)
			if err != nil {
				yield(scene.Frame{}, err)
				return
			}
			if !yield(f, nil) {
				return
			}
			if s.Index == grid.Len()-1 {
				break
			}

			var c *dynamo.Correction
			s, c, err = p.Step(ctx, s, grid)
			if err != nil {
				yield(scene.Frame{}, err)
				return
			}
			if c != nil {
				bounces++
			}
		}

		p.log.WithFields(logrus.Fields{
			"system":  p.System.Name(),
			"frames":  grid.Len(),
			"bounces": bounces,
		}).Debug("stream finished")
	}
}

func stageError(system, stage string, err error) error {
	return fmt.Errorf("%s: %s: %w", system, stage, err)
}
