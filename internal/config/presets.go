package config

import (
	"sort"

	"github.com/san-kum/odestream/internal/integrators"
	"github.com/san-kum/odestream/internal/physics"
)

var Presets = map[string]map[string]*Config{
	physics.OscillatorName: {
		"unit": preset(physics.OscillatorName, func(c *Config) {
			c.Simulation.Timesteps = 1000
		}),
		"period": preset(physics.OscillatorName, func(c *Config) {
			c.Simulation.Dt = 0.001
			c.Simulation.Timesteps = 6283
		}),
		"stiff": preset(physics.OscillatorName, func(c *Config) {
			c.HarmonicOscillator.Omega = 400
			c.Simulation.Solver = integrators.Dopri5Name
			c.Simulation.Timesteps = 2000
			c.Simulation.Dt = 0.005
		}),
	},
	physics.NeuronName: {
		"spike": preset(physics.NeuronName, func(c *Config) {
			c.Simulation.Timesteps = 5000
		}),
		"tonic": preset(physics.NeuronName, func(c *Config) {
			c.Simulation.Timesteps = 10000
			c.HodgkinHuxley.IExtStart = 0
			c.HodgkinHuxley.IExtEnd = 100
		}),
		"rest": preset(physics.NeuronName, func(c *Config) {
			c.Simulation.Timesteps = 5000
			c.HodgkinHuxley.IExtAmplitude = 0
		}),
	},
	physics.LorenzName: {
		"classic": preset(physics.LorenzName, func(c *Config) {
			c.Simulation.Timesteps = 5000
		}),
		"adaptive": preset(physics.LorenzName, func(c *Config) {
			c.Simulation.Timesteps = 5000
			c.Simulation.Solver = integrators.Dopri5Name
			c.Simulation.RTol = 1e-9
			c.Simulation.ATol = 1e-12
		}),
		"stable": preset(physics.LorenzName, func(c *Config) {
			c.Simulation.Timesteps = 3000
			c.LorenzAttractor.Rho = 14
		}),
		"periodic": preset(physics.LorenzName, func(c *Config) {
			c.Simulation.Timesteps = 5000
			c.Simulation.Dt = 0.005
			c.LorenzAttractor.Rho = 160
		}),
	},
}

func preset(model string, tweak func(*Config)) *Config {
	c := DefaultConfig()
	c.Simulation.DiffeqProblem = model
	tweak(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
