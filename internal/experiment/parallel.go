package experiment

import (
	"context"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/kinefig/internal/config"
)

// Outcome is the file one figure was written to.
type Outcome struct {
	System string
	Output string
}

// RunAll renders every configuration concurrently into dir, streaming frames
// so no run holds its full trajectory. Runs share nothing. The first failure
// cancels the others and is returned.
func RunAll(ctx context.Context, reg *Registry, cfgs []*config.Config, dir string, log logrus.FieldLogger) ([]Outcome, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	outcomes := make([]Outcome, len(cfgs))
	g, ctx := errgroup.WithContext(ctx)
	for i, cfg := range cfgs {
		g.Go(func() error {
			exp, err := New(cfg, reg, log)
			if err != nil {
				return err
			}

			out := cfg.Output
			if out == "" {
				out = cfg.System + ".gif"
			}
			out = filepath.Join(dir, filepath.Base(out))

			if err := exp.RenderStream(ctx, out, nil); err != nil {
				return err
			}
			outcomes[i] = Outcome{System: cfg.System, Output: out}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// DefaultFigures returns the configuration of every registered system's
// default figure.
func DefaultFigures(reg *Registry) ([]*config.Config, error) {
	var cfgs []*config.Config
	for _, name := range reg.ListSystems() {
		cfg, err := config.ForSystem(name)
		if err != nil {
			return nil, err
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}
