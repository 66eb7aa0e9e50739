package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/odestream/internal/dynamo"
	"github.com/san-kum/odestream/internal/integrators"
	"github.com/san-kum/odestream/internal/physics"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. ODESTREAM_SIMULATION_DT.
const EnvPrefix = "ODESTREAM"

var ErrInvalid = errors.New("config: invalid")

const (
	DefaultTimesteps = 1000
	DefaultDt        = 0.01
	DefaultRTol      = 1e-6
	DefaultATol      = 1e-9
)

type Config struct {
	Simulation         Simulation       `yaml:"simulation" mapstructure:"simulation"`
	HarmonicOscillator OscillatorParams `yaml:"harmonic_oscillator" mapstructure:"harmonic_oscillator"`
	HodgkinHuxley      NeuronParams     `yaml:"hodgkin_huxley" mapstructure:"hodgkin_huxley"`
	LorenzAttractor    LorenzParams     `yaml:"lorenz_attractor" mapstructure:"lorenz_attractor"`
}

type Simulation struct {
	Timesteps     int     `yaml:"timesteps" mapstructure:"timesteps"`
	Dt            float64 `yaml:"dt" mapstructure:"dt"`
	Solver        string  `yaml:"solver" mapstructure:"solver"`
	RTol          float64 `yaml:"rtol" mapstructure:"rtol"`
	ATol          float64 `yaml:"atol" mapstructure:"atol"`
	RealtimeDelay float64 `yaml:"realtime_delay" mapstructure:"realtime_delay"`
	DiffeqProblem string  `yaml:"diffeq_problem" mapstructure:"diffeq_problem"`
	ShowPlot      bool    `yaml:"show_plot" mapstructure:"show_plot"`
}

type OscillatorParams struct {
	Omega float64 `yaml:"omega" mapstructure:"omega"`
}

type NeuronParams struct {
	GNa           float64 `yaml:"g_na" mapstructure:"g_na"`
	GK            float64 `yaml:"g_k" mapstructure:"g_k"`
	GL            float64 `yaml:"g_l" mapstructure:"g_l"`
	ENa           float64 `yaml:"e_na" mapstructure:"e_na"`
	EK            float64 `yaml:"e_k" mapstructure:"e_k"`
	EL            float64 `yaml:"e_l" mapstructure:"e_l"`
	C             float64 `yaml:"c" mapstructure:"c"`
	IExtAmplitude float64 `yaml:"i_ext_amplitude" mapstructure:"i_ext_amplitude"`
	IExtStart     float64 `yaml:"i_ext_start" mapstructure:"i_ext_start"`
	IExtEnd       float64 `yaml:"i_ext_end" mapstructure:"i_ext_end"`
	V0            float64 `yaml:"v0" mapstructure:"v0"`
	M0            float64 `yaml:"m0" mapstructure:"m0"`
	N0            float64 `yaml:"n0" mapstructure:"n0"`
	H0            float64 `yaml:"h0" mapstructure:"h0"`
}

type LorenzParams struct {
	Sigma float64 `yaml:"sigma" mapstructure:"sigma"`
	Rho   float64 `yaml:"rho" mapstructure:"rho"`
	Beta  float64 `yaml:"beta" mapstructure:"beta"`
	X0    float64 `yaml:"x0" mapstructure:"x0"`
	Y0    float64 `yaml:"y0" mapstructure:"y0"`
	Z0    float64 `yaml:"z0" mapstructure:"z0"`
}

func DefaultConfig() *Config {
	n := physics.NewNeuron()
	return &Config{
		Simulation: Simulation{
			Timesteps:     DefaultTimesteps,
			Dt:            DefaultDt,
			Solver:        integrators.RK4Name,
			RTol:          DefaultRTol,
			ATol:          DefaultATol,
			RealtimeDelay: 0,
			DiffeqProblem: physics.LorenzName,
			ShowPlot:      true,
		},
		HarmonicOscillator: OscillatorParams{Omega: 1.0},
		HodgkinHuxley: NeuronParams{
			GNa: n.GNa, GK: n.GK, GL: n.GL,
			ENa: n.ENa, EK: n.EK, EL: n.EL,
			C:             n.C,
			IExtAmplitude: n.Amplitude,
			IExtStart:     n.Start,
			IExtEnd:       n.End,
			V0:            -65.0,
			M0:            0.05,
			N0:            0.32,
			H0:            0.6,
		},
		LorenzAttractor: LorenzParams{
			Sigma: 10.0, Rho: 28.0, Beta: 8.0 / 3.0,
			X0: 1.0, Y0: 1.0, Z0: 1.0,
		},
	}
}

// Load reads a complete configuration from path and applies ODESTREAM_*
// environment overrides. Every key of every section must be present in the
// file or set in the environment; a missing or mistyped key is an
// ErrInvalid naming it. An empty path loads the defaults and environment
// only. TOML, YAML and JSON are recognised by extension; .ini files are read
// as TOML.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		defaults, err := yaml.Marshal(DefaultConfig())
		if err != nil {
			return nil, err
		}
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigFile(path)
		v.SetConfigType(configType(path))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", ErrInvalid, path, err)
		}
		if err := checkKeys(v, path); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// keys absent from the file are only visible to Unmarshal once bound
	for key := range fieldKinds() {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fieldKinds maps every "section.key" to the kind of its struct field.
func fieldKinds() map[string]reflect.Kind {
	kinds := make(map[string]reflect.Kind)
	ct := reflect.TypeOf(Config{})
	for i := 0; i < ct.NumField(); i++ {
		sec := ct.Field(i)
		for j := 0; j < sec.Type.NumField(); j++ {
			f := sec.Type.Field(j)
			kinds[sec.Tag.Get("mapstructure")+"."+f.Tag.Get("mapstructure")] = f.Type.Kind()
		}
	}
	return kinds
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// checkKeys requires every key in the file or the environment and checks
// the type of the values taken from the file.
func checkKeys(v *viper.Viper, path string) error {
	kinds := fieldKinds()
	keys := make([]string, 0, len(kinds))
	for key := range kinds {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !v.InConfig(key) {
			if _, ok := os.LookupEnv(envName(key)); ok {
				continue
			}
			return invalid(key, "missing from %s", path)
		}
		raw := v.Get(key)
		switch kinds[key] {
		case reflect.Int:
			if f, ok := number(raw); !ok || f != math.Trunc(f) {
				return invalid(key, "must be a whole number, got %v", raw)
			}
		case reflect.Float64:
			if _, ok := number(raw); !ok {
				return invalid(key, "must be a number, got %v", raw)
			}
		case reflect.String:
			if _, ok := raw.(string); !ok {
				return invalid(key, "must be a string, got %v", raw)
			}
		case reflect.Bool:
			if _, ok := raw.(bool); !ok {
				return invalid(key, "must be true or false, got %v", raw)
			}
		}
	}
	return nil
}

// number accepts the numeric types the TOML, YAML and JSON decoders produce.
func number(raw any) (float64, bool) {
	switch n := raw.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func configType(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "ini", "":
		return "toml"
	case "yml":
		return "yaml"
	}
	return ext
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every field the engine depends on. Errors wrap ErrInvalid
// and name the offending key.
func (c *Config) Validate() error {
	s := c.Simulation
	if s.Timesteps <= 0 {
		return invalid("simulation.timesteps", "must be positive, got %d", s.Timesteps)
	}
	if !positive(s.Dt) {
		return invalid("simulation.dt", "must be positive, got %g", s.Dt)
	}
	if !positive(s.RTol) {
		return invalid("simulation.rtol", "must be positive, got %g", s.RTol)
	}
	if !positive(s.ATol) {
		return invalid("simulation.atol", "must be positive, got %g", s.ATol)
	}
	if s.RealtimeDelay < 0 || math.IsNaN(s.RealtimeDelay) {
		return invalid("simulation.realtime_delay", "must be non-negative, got %g", s.RealtimeDelay)
	}
	if !knownSolver(s.Solver) {
		return fmt.Errorf("%w: simulation.solver %q: %w", ErrInvalid, s.Solver, dynamo.ErrUnknownSolver)
	}

	switch s.DiffeqProblem {
	case physics.OscillatorName:
		if !positive(c.HarmonicOscillator.Omega) {
			return invalid("harmonic_oscillator.omega", "must be positive, got %g", c.HarmonicOscillator.Omega)
		}
	case physics.NeuronName:
		return c.HodgkinHuxley.validate()
	case physics.LorenzName:
		l := c.LorenzAttractor
		for _, f := range []field{{"sigma", l.Sigma}, {"rho", l.Rho}, {"beta", l.Beta}, {"x0", l.X0}, {"y0", l.Y0}, {"z0", l.Z0}} {
			if math.IsNaN(f.val) || math.IsInf(f.val, 0) {
				return invalid("lorenz_attractor."+f.key, "must be finite, got %g", f.val)
			}
		}
	default:
		return fmt.Errorf("%w: simulation.diffeq_problem %q: %w", ErrInvalid, s.DiffeqProblem, dynamo.ErrUnknownModel)
	}
	return nil
}

func (p NeuronParams) validate() error {
	for _, f := range []field{{"g_na", p.GNa}, {"g_k", p.GK}, {"g_l", p.GL}} {
		if f.val < 0 || math.IsNaN(f.val) {
			return invalid("hodgkin_huxley."+f.key, "conductance must be non-negative, got %g", f.val)
		}
	}
	if !positive(p.C) {
		return invalid("hodgkin_huxley.c", "capacitance must be positive, got %g", p.C)
	}
	if p.IExtEnd < p.IExtStart {
		return invalid("hodgkin_huxley.i_ext_end", "%g is before i_ext_start %g", p.IExtEnd, p.IExtStart)
	}
	for _, f := range []field{{"m0", p.M0}, {"n0", p.N0}, {"h0", p.H0}} {
		if f.val < 0 || f.val > 1 || math.IsNaN(f.val) {
			return invalid("hodgkin_huxley."+f.key, "gate must lie in [0, 1], got %g", f.val)
		}
	}
	return nil
}

type field struct {
	key string
	val float64
}

func invalid(key, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", ErrInvalid, key, fmt.Sprintf(format, args...))
}

func positive(x float64) bool { return x > 0 && !math.IsInf(x, 1) }

func knownSolver(name string) bool {
	return name == integrators.RK4Name || name == integrators.Dopri5Name
}

// TEnd is the end of the simulated interval; simulations start at t=0.
func (c *Config) TEnd() float64 {
	return float64(c.Simulation.Timesteps) * c.Simulation.Dt
}

func (c *Config) Delay() time.Duration {
	return time.Duration(c.Simulation.RealtimeDelay * float64(time.Millisecond))
}

// Integration converts the simulation section into the engine's config.
func (c *Config) Integration() dynamo.Config {
	return dynamo.Config{
		T0:     0,
		TEnd:   c.TEnd(),
		Dt:     c.Simulation.Dt,
		RTol:   c.Simulation.RTol,
		ATol:   c.Simulation.ATol,
		Solver: c.Simulation.Solver,
		Delay:  c.Delay(),
	}
}
