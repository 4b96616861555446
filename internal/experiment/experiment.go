package experiment

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/kinefig/internal/config"
	"github.com/san-kum/kinefig/internal/dynamo"
	"github.com/san-kum/kinefig/internal/pipeline"
	"github.com/san-kum/kinefig/internal/render"
	"github.com/san-kum/kinefig/internal/scene"
	"github.com/san-kum/kinefig/internal/sim"
)

// Experiment is one configured figure: a pipeline, its grid and the
// initial state.
type Experiment struct {
	cfg      *config.Config
	grid     dynamo.TimeGrid
	x0       dynamo.State
	pipeline *pipeline.Pipeline
	log      logrus.FieldLogger
}

func New(cfg *config.Config, reg *Registry, log logrus.FieldLogger) (*Experiment, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	grid, err := dynamo.NewTimeGrid(cfg.Duration, cfg.Dt)
	if err != nil {
		return nil, err
	}
	setup, err := reg.GetSystem(cfg)
	if err != nil {
		return nil, err
	}
	integrator, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	solver := sim.New(integrator, sim.Config{
		Tolerance: cfg.Tolerance,
		MinDt:     sim.DefaultMinDt,
		MaxStep:   cfg.MaxStep,
	})
	p := pipeline.New(setup.System, setup.Corrector, setup.Mapper, solver)
	p.SetLogger(log)
	for _, m := range reg.DefaultMetrics(setup.System) {
		p.AddMetric(m)
	}

	return &Experiment{
		cfg:      cfg,
		grid:     grid,
		x0:       cfg.GetInitState(),
		pipeline: p,
		log:      log.WithField("system", cfg.System),
	}, nil
}

func (e *Experiment) Config() *config.Config       { return e.cfg }
func (e *Experiment) Grid() dynamo.TimeGrid        { return e.grid }
func (e *Experiment) Pipeline() *pipeline.Pipeline { return e.pipeline }

func (e *Experiment) Run(ctx context.Context) (*pipeline.Result, error) {
	return e.pipeline.Run(ctx, e.x0, e.grid)
}

// Render runs the whole pipeline, then writes the GIF atomically to path.
// The result is returned so the run can be stored.
func (e *Experiment) Render(ctx context.Context, path string, progress func(done, total int)) (*pipeline.Result, error) {
	res, err := e.Run(ctx)
	if err != nil {
		return nil, err
	}

	enc := e.encoder(progress)
	err = render.WriteFile(path, func(w io.Writer) error {
		return enc.Export(w, res.Layout, res.Frames)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: render: %w", e.cfg.System, err)
	}

	e.log.WithFields(logrus.Fields{
		"stage":   "render",
		"frames":  len(res.Frames),
		"bounces": res.Bounces(),
		"output":  path,
	}).Info("figure written")
	return res, nil
}

// RenderStream writes the GIF without keeping the trajectory, mapping each
// state as soon as it is accepted.
func (e *Experiment) RenderStream(ctx context.Context, path string, progress func(done, total int)) error {
	enc := e.encoder(progress)
	layout := e.pipeline.Mapper.Layout()
	frames := e.pipeline.Stream(ctx, e.x0, e.grid)

	// Stream errors already carry the system and stage.
	err := render.WriteFile(path, func(w io.Writer) error {
		return enc.ExportStream(w, layout, frames, e.grid.Len())
	})
	if err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{
		"stage":  "render",
		"frames": e.grid.Len(),
		"output": path,
	}).Info("figure written")
	return nil
}

// Frame steps the pipeline to grid instant index and maps that state only.
func (e *Experiment) Frame(ctx context.Context, index int) (scene.Frame, error) {
	if index < 0 || index >= e.grid.Len() {
		return scene.Frame{}, &dynamo.ParameterError{
			System: e.cfg.System, Param: "frame", Value: float64(index),
			Constraint: fmt.Sprintf("in [0, %d)", e.grid.Len()),
		}
	}

	s, err := e.pipeline.Start(e.x0, e.grid)
	if err != nil {
		return scene.Frame{}, err
	}
	for s.Index < index {
		if s, _, err = e.pipeline.Step(ctx, s, e.grid); err != nil {
			return scene.Frame{}, err
		}
	}
	return e.pipeline.Frame(s)
}

// Still writes frame index of the run as an SVG.
func (e *Experiment) Still(ctx context.Context, path string, index int) error {
	f, err := e.Frame(ctx, index)
	if err != nil {
		return err
	}
	return render.WriteFile(path, func(w io.Writer) error {
		return render.SVG{}.Export(w, e.pipeline.Mapper.Layout(), f)
	})
}

func (e *Experiment) encoder(progress func(done, total int)) *render.GIF {
	enc := render.NewGIF(e.cfg.FPS, e.cfg.DPI)
	enc.SetLogger(e.log)
	enc.Progress = progress
	return enc
}
