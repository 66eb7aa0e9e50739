package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/odestream/internal/config"
	"github.com/san-kum/odestream/internal/dynamo"
	"github.com/san-kum/odestream/internal/sim"
)

// Result summarises one batch run.
type Result struct {
	Model      string
	Solver     string
	Trajectory sim.View
	Metrics    map[string]float64
	Elapsed    time.Duration
}

type Experiment struct {
	cfg     *config.Config
	engine  *sim.Engine
	metrics []dynamo.Metric
	logger  *slog.Logger
}

// New builds the engine described by cfg. Unknown identifiers and invalid
// parameters are reported here, before any integration.
func New(reg *Registry, cfg *config.Config, logger *slog.Logger, opts ...sim.Option) (*Experiment, error) {
	if logger == nil {
		logger = slog.Default()
	}
	engine, err := Build(reg, cfg, append(opts, sim.WithLogger(logger))...)
	if err != nil {
		return nil, err
	}

	e := &Experiment{cfg: cfg, engine: engine, logger: logger}
	e.metrics = reg.DefaultMetrics(engine.System())
	for _, m := range e.metrics {
		engine.AddObserver(m)
	}
	return e, nil
}

// Build constructs an engine from cfg without attaching metrics.
func Build(reg *Registry, cfg *config.Config, opts ...sim.Option) (*sim.Engine, error) {
	dyn, y0, err := reg.GetModel(cfg)
	if err != nil {
		return nil, err
	}
	integ, err := reg.GetIntegrator(cfg)
	if err != nil {
		return nil, err
	}
	engine, err := sim.New(dyn, integ, y0, cfg.Integration(), opts...)
	if err != nil {
		return nil, fmt.Errorf("building %s engine: %w", dyn.Name(), err)
	}
	return engine, nil
}

// Run solves the full interval and collects metric values.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, m := range e.metrics {
		m.Reset()
	}

	start := time.Now()
	traj, err := e.engine.Solve()
	if err != nil {
		return nil, err
	}

	res := &Result{
		Model:      e.engine.System().Name(),
		Solver:     e.engine.Solver(),
		Trajectory: traj,
		Metrics:    make(map[string]float64, len(e.metrics)),
		Elapsed:    time.Since(start),
	}
	for _, m := range e.metrics {
		res.Metrics[m.Name()] = m.Value()
	}

	e.logger.Info("run complete",
		"model", res.Model,
		"solver", res.Solver,
		"samples", traj.Len(),
		"elapsed", res.Elapsed)
	return res, nil
}

// Engine returns the underlying engine, e.g. for incremental driving.
func (e *Experiment) Engine() *sim.Engine {
	return e.engine
}

func (e *Experiment) Metrics() []dynamo.Metric {
	return e.metrics
}
