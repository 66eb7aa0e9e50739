package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/odestream/internal/config"
	"github.com/san-kum/odestream/internal/dynamo"
	"github.com/san-kum/odestream/internal/integrators"
	"github.com/san-kum/odestream/internal/metrics"
	"github.com/san-kum/odestream/internal/physics"
)

// spikeThreshold is the membrane voltage (mV) counted as an action potential.
const spikeThreshold = 0.0

// stabilityBound flags states that have clearly diverged.
const stabilityBound = 1e6

type modelFactory func(cfg *config.Config) (dynamo.System, dynamo.State)

type solverFactory func(cfg *config.Config) dynamo.Integrator

// Registry maps configuration identifiers to models and solvers.
type Registry struct {
	models      map[string]modelFactory
	integrators map[string]solverFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]modelFactory),
		integrators: make(map[string]solverFactory),
	}

	r.models[physics.OscillatorName] = func(cfg *config.Config) (dynamo.System, dynamo.State) {
		o := physics.NewOscillator(cfg.HarmonicOscillator.Omega)
		return o, o.InitialState()
	}
	r.models[physics.NeuronName] = func(cfg *config.Config) (dynamo.System, dynamo.State) {
		p := cfg.HodgkinHuxley
		n := physics.Neuron{
			GNa: p.GNa, GK: p.GK, GL: p.GL,
			ENa: p.ENa, EK: p.EK, EL: p.EL,
			C:         p.C,
			Amplitude: p.IExtAmplitude,
			Start:     p.IExtStart,
			End:       p.IExtEnd,
		}
		return n, n.InitialState(p.V0, p.M0, p.N0, p.H0)
	}
	r.models[physics.LorenzName] = func(cfg *config.Config) (dynamo.System, dynamo.State) {
		p := cfg.LorenzAttractor
		l := physics.NewLorenz(p.Sigma, p.Rho, p.Beta)
		return l, l.InitialState(p.X0, p.Y0, p.Z0)
	}

	r.integrators[integrators.RK4Name] = func(cfg *config.Config) dynamo.Integrator {
		return integrators.NewRK4(cfg.Simulation.Dt)
	}
	r.integrators[integrators.Dopri5Name] = func(cfg *config.Config) dynamo.Integrator {
		return integrators.NewDopri5(cfg.Simulation.RTol, cfg.Simulation.ATol)
	}

	return r
}

// GetModel builds the model named by cfg together with its initial state.
func (r *Registry) GetModel(cfg *config.Config) (dynamo.System, dynamo.State, error) {
	name := cfg.Simulation.DiffeqProblem
	fn, ok := r.models[name]
	if !ok {
		return nil, dynamo.State{}, fmt.Errorf("%q: %w", name, dynamo.ErrUnknownModel)
	}
	dyn, y0 := fn(cfg)
	return dyn, y0, nil
}

func (r *Registry) GetIntegrator(cfg *config.Config) (dynamo.Integrator, error) {
	name := cfg.Simulation.Solver
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, dynamo.ErrUnknownSolver)
	}
	return fn(cfg), nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics picks the metrics that are meaningful for dyn.
func (r *Registry) DefaultMetrics(dyn dynamo.System) []dynamo.Metric {
	ms := []dynamo.Metric{metrics.NewStability(stabilityBound)}
	if h, ok := dyn.(dynamo.Hamiltonian); ok {
		ms = append(ms, metrics.NewEnergy(h), metrics.NewEnergyDrift(dyn))
	}
	if dyn.Name() == physics.NeuronName {
		ms = append(ms, metrics.NewSpikeCount(0, spikeThreshold))
	}
	return ms
}
