package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/kinefig/internal/config"
	"github.com/san-kum/kinefig/internal/dynamo"
	"github.com/san-kum/kinefig/internal/integrators"
	"github.com/san-kum/kinefig/internal/metrics"
	"github.com/san-kum/kinefig/internal/physics"
	"github.com/san-kum/kinefig/internal/scene"
)

// Setup is everything a pipeline needs besides the solver.
type Setup struct {
	System    dynamo.System
	Corrector dynamo.Corrector
	Mapper    scene.Mapper
}

// SystemFactory builds a validated Setup from a configuration.
type SystemFactory func(cfg *config.Config) (*Setup, error)

type Registry struct {
	systems     map[string]SystemFactory
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		systems:     make(map[string]SystemFactory),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.systems[physics.SpringMassName] = func(cfg *config.Config) (*Setup, error) {
		s, err := physics.NewSpringMass(cfg.SpringMassParams())
		if err != nil {
			return nil, err
		}
		return &Setup{System: s, Mapper: scene.NewSpringMassMapper()}, nil
	}
	r.systems[physics.PendulumName] = func(cfg *config.Config) (*Setup, error) {
		p, err := physics.NewPendulum(cfg.PendulumParams())
		if err != nil {
			return nil, err
		}
		return &Setup{System: p, Mapper: scene.NewPendulumMapper(p.Params().Length)}, nil
	}
	r.systems[physics.BouncingBallName] = func(cfg *config.Config) (*Setup, error) {
		b, err := physics.NewBouncingBall(cfg.BouncingBallParams())
		if err != nil {
			return nil, err
		}
		mapper := scene.NewBouncingBallMapper(b.Params().HorizontalVelocity, cfg.Duration, cfg.InitState.Y)
		return &Setup{System: b, Corrector: b.Corrector(), Mapper: mapper}, nil
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }
	r.integrators["verlet"] = func() dynamo.Integrator { return integrators.NewVerlet() }
	r.integrators["leapfrog"] = func() dynamo.Integrator { return integrators.NewLeapfrog() }

	return r
}

func (r *Registry) GetSystem(cfg *config.Config) (*Setup, error) {
	fn, ok := r.systems[cfg.System]
	if !ok {
		return nil, fmt.Errorf("unknown system: %s", cfg.System)
	}
	return fn(cfg)
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListSystems() []string {
	return sortedKeys(r.systems)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

// DefaultMetrics are the energy checks for any system that exposes an
// energy, plus a settling measure for the oscillators.
func (r *Registry) DefaultMetrics(sys dynamo.System) []metrics.Metric {
	var ms []metrics.Metric
	if h, ok := sys.(dynamo.Hamiltonian); ok {
		ms = append(ms,
			metrics.NewEnergy(h),
			metrics.NewEnergyDrift(h),
			metrics.NewEnergyGain(h),
		)
	}
	if sys.Name() != physics.BouncingBallName {
		ms = append(ms, metrics.NewSettlingTime(0.05))
	}
	return ms
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
