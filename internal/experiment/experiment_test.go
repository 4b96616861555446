package experiment

import (
	"context"
	"errors"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/kinefig/internal/config"
	"github.com/san-kum/kinefig/internal/dynamo"
	"github.com/san-kum/kinefig/internal/physics"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// smallFigure keeps the figure defaults but shortens the run and lowers the
// resolution so rendering stays quick.
func smallFigure(t *testing.T, system string) *config.Config {
	t.Helper()
	cfg, err := config.ForSystem(system)
	require.NoError(t, err)
	cfg.Duration = 1.5
	cfg.DPI = 12
	return cfg
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	assert.Equal(t, []string{"bouncing_ball", "pendulum", "spring_mass"}, reg.ListSystems())
	assert.Equal(t, []string{"euler", "leapfrog", "rk4", "rk45", "verlet"}, reg.ListIntegrators())

	for _, name := range reg.ListIntegrators() {
		in, err := reg.GetIntegrator(name)
		require.NoError(t, err)
		assert.NotNil(t, in)
	}

	_, err := reg.GetIntegrator("midpoint")
	assert.Error(t, err)

	cfg := config.DefaultConfig()
	cfg.System = "lorenz"
	_, err = reg.GetSystem(cfg)
	assert.Error(t, err)
}

func TestRegistryBallHasCorrector(t *testing.T) {
	reg := NewRegistry()
	for _, name := range reg.ListSystems() {
		cfg, err := config.ForSystem(name)
		require.NoError(t, err)

		setup, err := reg.GetSystem(cfg)
		require.NoError(t, err)
		assert.Equal(t, name, setup.System.Name())
		assert.Equal(t, name == physics.BouncingBallName, setup.Corrector != nil, name)
	}
}

func TestDefaultMetrics(t *testing.T) {
	reg := NewRegistry()

	p, err := physics.NewPendulum(physics.DefaultPendulumParams())
	require.NoError(t, err)
	names := map[string]bool{}
	for _, m := range reg.DefaultMetrics(p) {
		names[m.Name()] = true
	}
	assert.True(t, names["energy"])
	assert.True(t, names["energy_drift"])
	assert.True(t, names["energy_gain"])
	assert.True(t, names["settling_time"])
}

func TestNewRejectsBadConfig(t *testing.T) {
	reg := NewRegistry()

	cfg := smallFigure(t, physics.BouncingBallName)
	cfg.BouncingBall.Restitution = 0
	_, err := New(cfg, reg, quietLogger())
	assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)

	cfg = smallFigure(t, physics.PendulumName)
	cfg.Duration = cfg.Dt
	_, err = New(cfg, reg, quietLogger())
	assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)

	cfg = smallFigure(t, physics.SpringMassName)
	cfg.Integrator = "midpoint"
	_, err = New(cfg, reg, quietLogger())
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	reg := NewRegistry()
	cfg := smallFigure(t, physics.BouncingBallName)
	cfg.InitState.Y = 1

	exp, err := New(cfg, reg, quietLogger())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ball.gif")
	calls := 0
	res, err := exp.Render(context.Background(), path, func(done, total int) { calls++ })
	require.NoError(t, err)

	assert.Equal(t, exp.Grid().Len(), calls)
	assert.NotZero(t, res.Bounces())
	assert.Equal(t, float64(res.Bounces()), res.Metrics["bounces"])

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	require.NoError(t, err)
	assert.Len(t, anim.Image, exp.Grid().Len())
}

func TestRenderStreamMatchesFrameCount(t *testing.T) {
	reg := NewRegistry()
	cfg := smallFigure(t, physics.SpringMassName)

	exp, err := New(cfg, reg, quietLogger())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "spring.gif")
	require.NoError(t, exp.RenderStream(context.Background(), path, nil))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	require.NoError(t, err)
	assert.Len(t, anim.Image, exp.Grid().Len())
}

func TestRenderCanceledLeavesNoFile(t *testing.T) {
	reg := NewRegistry()
	exp, err := New(smallFigure(t, physics.PendulumName), reg, quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	err = exp.RenderStream(ctx, filepath.Join(dir, "pendulum.gif"), nil)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStill(t *testing.T) {
	reg := NewRegistry()
	exp, err := New(smallFigure(t, physics.PendulumName), reg, quietLogger())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "pendulum.svg")
	require.NoError(t, exp.Still(context.Background(), path, 3))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "<svg"))

	err = exp.Still(context.Background(), path, exp.Grid().Len())
	assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)
}

func TestRunAll(t *testing.T) {
	reg := NewRegistry()
	cfgs, err := DefaultFigures(reg)
	require.NoError(t, err)
	require.Len(t, cfgs, 3)
	for _, cfg := range cfgs {
		cfg.Duration = 1
		cfg.DPI = 12
	}

	dir := t.TempDir()
	outcomes, err := RunAll(context.Background(), reg, cfgs, dir, quietLogger())
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	for _, o := range outcomes {
		assert.Equal(t, filepath.Join(dir, o.System+".gif"), o.Output)
		_, err := os.Stat(o.Output)
		assert.NoError(t, err)
	}
}

func TestRunAllStopsOnFailure(t *testing.T) {
	reg := NewRegistry()
	cfgs, err := DefaultFigures(reg)
	require.NoError(t, err)
	for _, cfg := range cfgs {
		cfg.Duration = 1
		cfg.DPI = 12
	}
	cfgs[1].Pendulum.Length = -1

	_, err = RunAll(context.Background(), reg, cfgs, t.TempDir(), quietLogger())
	assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)
}
