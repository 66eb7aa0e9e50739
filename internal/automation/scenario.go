package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/odestream/internal/config"
	"github.com/san-kum/odestream/internal/dynamo"
	"github.com/san-kum/odestream/internal/experiment"
	"github.com/san-kum/odestream/internal/sim"
	"gopkg.in/yaml.v3"
)

// Scenario defines a batch of simulations solved together
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one simulation: a model, optionally a preset, and
// overrides applied on top.
type ScenarioStep struct {
	Model     string             `yaml:"model"`
	Preset    string             `yaml:"preset"`
	Solver    string             `yaml:"solver"`
	Timesteps int                `yaml:"timesteps"`
	Dt        float64            `yaml:"dt"`
	Params    map[string]float64 `yaml:"params"`
}

// StepResult summarises one solved step.
type StepResult struct {
	Step    int
	Model   string
	Solver  string
	Samples int
	Final   dynamo.Sample
	Metrics map[string]float64
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", config.ErrInvalid, path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%w: %s: scenario has no steps", config.ErrInvalid, path)
	}
	return &scenario, nil
}

// Config resolves the settings of one step.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(s.Model, s.Preset); cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q for %s", config.ErrInvalid, s.Preset, s.Model)
		}
	}
	cfg.Simulation.DiffeqProblem = s.Model
	if s.Solver != "" {
		cfg.Simulation.Solver = s.Solver
	}
	if s.Timesteps != 0 {
		cfg.Simulation.Timesteps = s.Timesteps
	}
	if s.Dt != 0 {
		cfg.Simulation.Dt = s.Dt
	}
	for name, v := range s.Params {
		if err := experiment.SetParam(cfg, name, v); err != nil {
			return nil, err
		}
	}
	// batch runs are never paced
	cfg.Simulation.RealtimeDelay = 0
	return cfg, cfg.Validate()
}

// RunScenario builds every step first, so a bad step fails before any
// integration, then solves all of them concurrently.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger *slog.Logger) ([]StepResult, error) {
	engines := make([]*sim.Engine, len(scenario.Steps))
	metrics := make([][]dynamo.Metric, len(scenario.Steps))
	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		exp, err := experiment.New(registry, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		engines[i], metrics[i] = exp.Engine(), exp.Metrics()
	}

	ens, err := sim.NewEnsemble(engines...)
	if err != nil {
		return nil, err
	}
	logger.Info("running scenario", "name", scenario.Name, "steps", ens.Len())
	views, err := ens.Solve(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]StepResult, len(views))
	for i, v := range views {
		results[i] = StepResult{
			Step:    i + 1,
			Model:   engines[i].System().Name(),
			Solver:  engines[i].Solver(),
			Samples: v.Len(),
			Final:   v.Last(),
			Metrics: make(map[string]float64, len(metrics[i])),
		}
		for _, m := range metrics[i] {
			results[i].Metrics[m.Name()] = m.Value()
		}
	}
	return results, nil
}
