package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/kinefig/internal/dynamo"
	"github.com/san-kum/kinefig/internal/physics"
)

const (
	DefaultSystem     = physics.PendulumName
	DefaultIntegrator = "rk45"
	DefaultDuration   = 20.0
	DefaultFPS        = 30.0
	DefaultDPI        = 150
	DefaultTolerance  = 1e-6
	DefaultMaxStep    = 0.005

	DefaultSpringDt   = 0.05
	DefaultPendulumDt = 0.055
	DefaultBallDt     = 0.06

	DefaultSpringX0    = 1.0
	DefaultPendulumX0  = -math.Pi / 6
	DefaultBallHeight0 = 5.0
)

type Config struct {
	System     string  `yaml:"system"`
	Integrator string  `yaml:"integrator"`
	Dt         float64 `yaml:"dt"`
	Duration   float64 `yaml:"duration"`
	FPS        float64 `yaml:"fps"`
	DPI        int     `yaml:"dpi"`
	Tolerance  float64 `yaml:"tolerance"`
	MaxStep    float64 `yaml:"max_step"`
	Output     string  `yaml:"output"`

	InitState    InitStateConfig    `yaml:"init_state"`
	SpringMass   SpringMassConfig   `yaml:"spring_mass"`
	Pendulum     PendulumConfig     `yaml:"pendulum"`
	BouncingBall BouncingBallConfig `yaml:"bouncing_ball"`
}

type InitStateConfig struct {
	Pos   float64 `yaml:"pos"`
	Vel   float64 `yaml:"vel"`
	Theta float64 `yaml:"theta"`
	Omega float64 `yaml:"omega"`
	Y     float64 `yaml:"y"`
	VY    float64 `yaml:"vy"`
}

type SpringMassConfig struct {
	Mass      float64 `yaml:"mass"`
	Stiffness float64 `yaml:"stiffness"`
	Damping   float64 `yaml:"damping"`
}

type PendulumConfig struct {
	Gravity float64 `yaml:"gravity"`
	Length  float64 `yaml:"length"`
	Mass    float64 `yaml:"mass"`
	Damping float64 `yaml:"damping"`
}

type BouncingBallConfig struct {
	Gravity            float64 `yaml:"gravity"`
	HorizontalVelocity float64 `yaml:"horizontal_velocity"`
	Restitution        float64 `yaml:"restitution"`
}

func DefaultConfig() *Config {
	sm := physics.DefaultSpringMassParams()
	p := physics.DefaultPendulumParams()
	b := physics.DefaultBouncingBallParams()

	return &Config{
		System:     DefaultSystem,
		Integrator: DefaultIntegrator,
		Dt:         DefaultPendulumDt,
		Duration:   DefaultDuration,
		FPS:        DefaultFPS,
		DPI:        DefaultDPI,
		Tolerance:  DefaultTolerance,
		MaxStep:    DefaultMaxStep,
		InitState: InitStateConfig{
			Pos:   DefaultSpringX0,
			Theta: DefaultPendulumX0,
			Y:     DefaultBallHeight0,
		},
		SpringMass: SpringMassConfig{Mass: sm.Mass, Stiffness: sm.Stiffness, Damping: sm.Damping},
		Pendulum:   PendulumConfig{Gravity: p.Gravity, Length: p.Length, Mass: p.Mass, Damping: p.Damping},
		BouncingBall: BouncingBallConfig{
			Gravity:            b.Gravity,
			HorizontalVelocity: b.HorizontalVelocity,
			Restitution:        b.Restitution,
		},
	}
}

// ForSystem returns the defaults of the published figure for system, which
// differ from DefaultConfig only in the system name and time step.
func ForSystem(system string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.System = system
	switch system {
	case physics.SpringMassName:
		cfg.Dt = DefaultSpringDt
	case physics.PendulumName:
		cfg.Dt = DefaultPendulumDt
	case physics.BouncingBallName:
		cfg.Dt = DefaultBallDt
	default:
		return nil, fmt.Errorf("unknown system: %s", system)
	}
	return cfg, nil
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base, so keys missing from the
// file keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run-level settings. Physical parameters are checked
// by the systems themselves when they are built.
func (c *Config) Validate() error {
	checks := []struct {
		name string
		v    float64
	}{
		{"dt", c.Dt},
		{"duration", c.Duration},
		{"fps", c.FPS},
		{"dpi", float64(c.DPI)},
		{"tolerance", c.Tolerance},
		{"max_step", c.MaxStep},
	}
	for _, ch := range checks {
		if !(ch.v > 0) || math.IsInf(ch.v, 0) {
			return &dynamo.ParameterError{System: "config", Param: ch.name, Value: ch.v, Constraint: "positive"}
		}
	}
	return nil
}

func (c *Config) GetInitState() dynamo.State {
	switch c.System {
	case physics.SpringMassName:
		return dynamo.State{c.InitState.Pos, c.InitState.Vel}
	case physics.BouncingBallName:
		return dynamo.State{c.InitState.Y, c.InitState.VY}
	default:
		return dynamo.State{c.InitState.Theta, c.InitState.Omega}
	}
}

func (c *Config) SpringMassParams() physics.SpringMassParams {
	return physics.SpringMassParams{
		Mass:      c.SpringMass.Mass,
		Stiffness: c.SpringMass.Stiffness,
		Damping:   c.SpringMass.Damping,
	}
}

func (c *Config) PendulumParams() physics.PendulumParams {
	return physics.PendulumParams{
		Gravity: c.Pendulum.Gravity,
		Length:  c.Pendulum.Length,
		Mass:    c.Pendulum.Mass,
		Damping: c.Pendulum.Damping,
	}
}

func (c *Config) BouncingBallParams() physics.BouncingBallParams {
	return physics.BouncingBallParams{
		Gravity:            c.BouncingBall.Gravity,
		HorizontalVelocity: c.BouncingBall.HorizontalVelocity,
		Restitution:        c.BouncingBall.Restitution,
	}
}

// Params flattens the physical parameters of the configured system, for
// run metadata.
func (c *Config) Params() map[string]float64 {
	switch c.System {
	case physics.SpringMassName:
		return map[string]float64{
			"mass":      c.SpringMass.Mass,
			"stiffness": c.SpringMass.Stiffness,
			"damping":   c.SpringMass.Damping,
		}
	case physics.BouncingBallName:
		return map[string]float64{
			"gravity":             c.BouncingBall.Gravity,
			"horizontal_velocity": c.BouncingBall.HorizontalVelocity,
			"restitution":         c.BouncingBall.Restitution,
		}
	default:
		return map[string]float64{
			"gravity": c.Pendulum.Gravity,
			"length":  c.Pendulum.Length,
			"mass":    c.Pendulum.Mass,
			"damping": c.Pendulum.Damping,
		}
	}
}

// Set assigns one numeric setting by its YAML path, such as "dt",
// "pendulum.damping" or "init_state.theta".
func (c *Config) Set(key string, v float64) error {
	fields := map[string]*float64{
		"dt":                                &c.Dt,
		"duration":                          &c.Duration,
		"fps":                               &c.FPS,
		"tolerance":                         &c.Tolerance,
		"max_step":                          &c.MaxStep,
		"init_state.pos":                    &c.InitState.Pos,
		"init_state.vel":                    &c.InitState.Vel,
		"init_state.theta":                  &c.InitState.Theta,
		"init_state.omega":                  &c.InitState.Omega,
		"init_state.y":                      &c.InitState.Y,
		"init_state.vy":                     &c.InitState.VY,
		"spring_mass.mass":                  &c.SpringMass.Mass,
		"spring_mass.stiffness":             &c.SpringMass.Stiffness,
		"spring_mass.damping":               &c.SpringMass.Damping,
		"pendulum.gravity":                  &c.Pendulum.Gravity,
		"pendulum.length":                   &c.Pendulum.Length,
		"pendulum.mass":                     &c.Pendulum.Mass,
		"pendulum.damping":                  &c.Pendulum.Damping,
		"bouncing_ball.gravity":             &c.BouncingBall.Gravity,
		"bouncing_ball.horizontal_velocity": &c.BouncingBall.HorizontalVelocity,
		"bouncing_ball.restitution":         &c.BouncingBall.Restitution,
	}

	if key == "dpi" {
		c.DPI = int(v)
		return nil
	}
	dst, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown setting: %s", key)
	}
	*dst = v
	return nil
}
