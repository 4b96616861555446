package optim

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/kinefig/internal/config"
	"github.com/san-kum/kinefig/internal/experiment"
	"github.com/san-kum/kinefig/internal/physics"
)

func pendulumBuilder(t *testing.T) func(map[string]float64) (*experiment.Experiment, error) {
	reg := experiment.NewRegistry()
	l := logrus.New()
	l.SetOutput(io.Discard)

	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg, err := config.ForSystem(physics.PendulumName)
		require.NoError(t, err)
		cfg.Duration = 5
		for k, v := range params {
			if err := cfg.Set(k, v); err != nil {
				return nil, err
			}
		}
		return experiment.New(cfg, reg, l)
	}
}

func TestGridSearchFindsMostStableDamping(t *testing.T) {
	g, err := NewGridSearch([]string{"pendulum.damping"}, [][]float64{{0, 1, 4}})
	require.NoError(t, err)

	// mean energy over the run falls as damping grows
	best, trials, err := g.Search(context.Background(), pendulumBuilder(t), "energy")
	require.NoError(t, err)

	assert.Len(t, trials, 3)
	assert.Equal(t, 4.0, best.Params["pendulum.damping"])
	for _, tr := range trials {
		assert.NoError(t, tr.Err)
		assert.LessOrEqual(t, best.Value, tr.Value)
	}
}

func TestGridSearchSkipsInvalidPoints(t *testing.T) {
	g, err := NewGridSearch([]string{"pendulum.length"}, [][]float64{{-1, 1.9}})
	require.NoError(t, err)

	best, trials, err := g.Search(context.Background(), pendulumBuilder(t), "energy")
	require.NoError(t, err)

	require.Len(t, trials, 2)
	assert.Error(t, trials[0].Err)
	assert.Equal(t, 1.9, best.Params["pendulum.length"])
}

func TestGridSearchCartesian(t *testing.T) {
	g, err := NewGridSearch(
		[]string{"pendulum.damping", "init_state.theta"},
		[][]float64{{0.5, 1}, {0.1, 0.2, 0.3}},
	)
	require.NoError(t, err)

	_, trials, err := g.Search(context.Background(), pendulumBuilder(t), "energy")
	require.NoError(t, err)
	assert.Len(t, trials, 6)
	assert.Equal(t, []string{"init_state.theta", "pendulum.damping"}, g.Names())
}

func TestGridSearchErrors(t *testing.T) {
	_, err := NewGridSearch([]string{"a"}, nil)
	assert.Error(t, err)

	_, err = NewGridSearch([]string{"a"}, [][]float64{{}})
	assert.Error(t, err)

	g, err := NewGridSearch([]string{"pendulum.damping"}, [][]float64{{1}})
	require.NoError(t, err)

	_, _, err = g.Search(context.Background(), pendulumBuilder(t), "no_such_metric")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = g.Search(ctx, pendulumBuilder(t), "energy")
	assert.ErrorIs(t, err, context.Canceled)
}
