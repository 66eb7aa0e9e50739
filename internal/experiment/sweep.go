package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/odestream/internal/analysis"
	"github.com/san-kum/odestream/internal/config"
	"github.com/san-kum/odestream/internal/dynamo"
)

// paramFields maps sweepable parameter names to their config fields.
func paramFields(cfg *config.Config) map[string]*float64 {
	return map[string]*float64{
		"omega":           &cfg.HarmonicOscillator.Omega,
		"i_ext_amplitude": &cfg.HodgkinHuxley.IExtAmplitude,
		"g_na":            &cfg.HodgkinHuxley.GNa,
		"g_k":             &cfg.HodgkinHuxley.GK,
		"sigma":           &cfg.LorenzAttractor.Sigma,
		"rho":             &cfg.LorenzAttractor.Rho,
		"beta":            &cfg.LorenzAttractor.Beta,
	}
}

// SweepParams lists the parameter names Sweep accepts.
func SweepParams() []string {
	names := make([]string, 0)
	for name := range paramFields(config.DefaultConfig()) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetParam assigns one named model parameter in cfg.
func SetParam(cfg *config.Config, name string, value float64) error {
	field, ok := paramFields(cfg)[name]
	if !ok {
		return fmt.Errorf("%w: unknown parameter %q (one of %v)", config.ErrInvalid, name, SweepParams())
	}
	*field = value
	return nil
}

// Sweep builds a bifurcation diagram of cfg's model over values of one
// parameter. Each value runs for transient time units before the peaks of
// slot are recorded over the configured interval.
func Sweep(reg *Registry, cfg *config.Config, param string, values []float64, slot int, transient float64) ([]analysis.BifurcationPoint, error) {
	if err := SetParam(&config.Config{}, param, 0); err != nil {
		return nil, err
	}
	if _, _, err := reg.GetModel(cfg); err != nil {
		return nil, err
	}
	integ, err := reg.GetIntegrator(cfg)
	if err != nil {
		return nil, err
	}

	build := func(p float64) (dynamo.System, dynamo.State) {
		c := *cfg
		_ = SetParam(&c, param, p)
		// the model name was checked above
		dyn, y0, _ := reg.GetModel(&c)
		return dyn, y0
	}
	return analysis.BifurcationDiagram(build, integ, values, slot, cfg.Simulation.Dt, transient, cfg.TEnd())
}
