package config

import (
	"sort"

	"github.com/san-kum/kinefig/internal/physics"
)

// preset starts from the figure defaults of system and applies edit.
func preset(system string, edit func(*Config)) *Config {
	cfg, err := ForSystem(system)
	if err != nil {
		panic(err)
	}
	if edit != nil {
		edit(cfg)
	}
	return cfg
}

var Presets = map[string]map[string]*Config{
	physics.SpringMassName: {
		"default": preset(physics.SpringMassName, nil),
		"damped": preset(physics.SpringMassName, func(c *Config) {
			c.SpringMass.Damping = 0.5
		}),
		"stiff": preset(physics.SpringMassName, func(c *Config) {
			c.SpringMass.Stiffness = 16
			c.Duration = 10
		}),
		"kick": preset(physics.SpringMassName, func(c *Config) {
			c.InitState.Pos = 0
			c.InitState.Vel = 2
		}),
	},
	physics.PendulumName: {
		"default": preset(physics.PendulumName, nil),
		"undamped": preset(physics.PendulumName, func(c *Config) {
			c.Pendulum.Damping = 0
		}),
		"large": preset(physics.PendulumName, func(c *Config) {
			c.InitState.Theta = 2.5
			c.Pendulum.Damping = 0.3
		}),
		"spinning": preset(physics.PendulumName, func(c *Config) {
			c.InitState.Theta = 0
			c.InitState.Omega = 5
			c.Pendulum.Damping = 0.5
		}),
	},
	physics.BouncingBallName: {
		"default": preset(physics.BouncingBallName, nil),
		"elastic": preset(physics.BouncingBallName, func(c *Config) {
			c.BouncingBall.Restitution = 1
		}),
		"dead": preset(physics.BouncingBallName, func(c *Config) {
			c.BouncingBall.Restitution = 0.5
			c.Duration = 6
			c.BouncingBall.HorizontalVelocity = 2
		}),
		"moon": preset(physics.BouncingBallName, func(c *Config) {
			c.BouncingBall.Gravity = 1.62
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(system, name string) *Config {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	cfg, ok := systemPresets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(system string) []string {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(systemPresets))
	for name := range systemPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
