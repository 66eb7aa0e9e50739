package sim

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/san-kum/odestream/internal/dynamo"
)

// Engine owns a system, its integrator and the trajectory they produce.
// An Engine must be driven from a single goroutine.
type Engine struct {
	dyn       dynamo.System
	integ     dynamo.Integrator
	cfg       dynamo.Config
	y0        dynamo.State
	traj      *Trajectory
	observers []dynamo.Observer

	logger *slog.Logger
	now    func() time.Time
	sleep  func(time.Duration)
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock replaces the wall clock used for pacing.
func WithClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(e *Engine) {
		e.now = now
		e.sleep = sleep
	}
}

// WithObserver registers an observer for every committed sample.
func WithObserver(o dynamo.Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

func New(dyn dynamo.System, integ dynamo.Integrator, y0 dynamo.State, cfg dynamo.Config, opts ...Option) (*Engine, error) {
	if dyn == nil || integ == nil {
		return nil, fmt.Errorf("engine needs a system and an integrator: %w", dynamo.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if v, ok := integ.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	if !y0.IsValid() {
		return nil, fmt.Errorf("initial state %v: %w", y0, dynamo.ErrInvalidState)
	}

	e := &Engine{
		dyn:    dyn,
		integ:  integ,
		cfg:    cfg,
		y0:     y0,
		traj:   NewTrajectory(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) AddObserver(o dynamo.Observer) { e.observers = append(e.observers, o) }

// Solve integrates the whole configured interval and replaces the
// trajectory with the result. On failure the previous trajectory is kept.
func (e *Engine) Solve() (View, error) {
	start := e.now()

	var (
		samples []dynamo.Sample
		err     error
	)
	if s, ok := e.integ.(dynamo.Sampler); ok {
		samples, err = s.Sample(e.dyn, e.cfg.T0, e.cfg.TEnd, e.cfg.Dt, e.y0)
	} else {
		samples, err = e.sampleByIntegrate()
	}
	if err != nil {
		last := dynamo.Sample{T: e.cfg.T0, Y: e.y0}
		if len(samples) > 0 {
			last = samples[len(samples)-1]
		}
		return e.traj.View(), &dynamo.SimulationError{Step: max(len(samples)-1, 0), Time: last.T, State: last.Y, Wrapped: err}
	}

	traj := NewTrajectory()
	if err := traj.extend(samples); err != nil {
		return e.traj.View(), &dynamo.SimulationError{Time: e.cfg.T0, State: e.y0, Wrapped: err}
	}
	e.traj = traj
	for _, s := range samples {
		e.notify(s)
	}

	e.logger.Debug("solve finished",
		"system", e.dyn.Name(),
		"solver", e.integ.Name(),
		"samples", traj.Len(),
		"elapsed", e.now().Sub(start))
	return e.traj.View(), nil
}

func (e *Engine) sampleByIntegrate() ([]dynamo.Sample, error) {
	out := []dynamo.Sample{{T: e.cfg.T0, Y: e.y0}}
	t, y := e.cfg.T0, e.y0
	for t < e.cfg.TEnd {
		next := dynamo.NextTime(e.cfg.T0, t, e.cfg.Dt, e.cfg.TEnd)
		yn, err := e.integ.Integrate(e.dyn, t, next, y)
		if err != nil {
			return out, err
		}
		t, y = next, yn
		out = append(out, dynamo.Sample{T: t, Y: y})
	}
	return out, nil
}

// Advance extends the trajectory by one macro step. On an empty trajectory
// it first records the initial condition. Once the end time is reached it
// does nothing. Either every sample produced by the call is committed or
// none is, and each successful call lasts at least the configured delay.
func (e *Engine) Advance() error {
	start := e.now()

	pending := make([]dynamo.Sample, 0, 2)
	var last dynamo.Sample
	if e.traj.Len() == 0 {
		last = dynamo.Sample{T: e.cfg.T0, Y: e.y0}
		pending = append(pending, last)
	} else {
		last = e.traj.Last()
	}

	if last.T < e.cfg.TEnd {
		next := dynamo.NextTime(e.cfg.T0, last.T, e.cfg.Dt, e.cfg.TEnd)
		step := e.traj.Len() + len(pending) - 1
		if !(next > last.T) {
			return &dynamo.SimulationError{Step: step, Time: last.T, State: last.Y, Wrapped: dynamo.ErrNotIncreasing}
		}
		y, err := e.integ.Integrate(e.dyn, last.T, next, last.Y)
		if err != nil {
			return &dynamo.SimulationError{Step: step, Time: last.T, State: last.Y, Wrapped: err}
		}
		pending = append(pending, dynamo.Sample{T: next, Y: y})
	}

	if err := e.traj.extend(pending); err != nil {
		return &dynamo.SimulationError{Step: e.traj.Len(), Time: last.T, State: last.Y, Wrapped: err}
	}
	for _, s := range pending {
		e.notify(s)
	}

	e.pace(start)
	return nil
}

func (e *Engine) pace(start time.Time) {
	if e.cfg.Delay <= 0 {
		return
	}
	elapsed := e.now().Sub(start)
	wait := PacingSleep(elapsed, e.cfg.Delay)
	if wait == 0 {
		e.logger.Debug("pacing overrun", "elapsed", elapsed, "delay", e.cfg.Delay)
		return
	}
	e.sleep(wait)
}

func (e *Engine) notify(s dynamo.Sample) {
	for _, o := range e.observers {
		o.OnSample(s.T, s.Y)
	}
}

// Reset discards the trajectory. Views handed out earlier stay valid.
func (e *Engine) Reset() {
	e.traj = NewTrajectory()
}

// Done reports whether the trajectory has reached the end time.
func (e *Engine) Done() bool {
	return e.traj.Len() > 0 && e.traj.Last().T >= e.cfg.TEnd
}

func (e *Engine) Trajectory() View { return e.traj.View() }
func (e *Engine) Labels() dynamo.Labels { return e.dyn.Labels() }
func (e *Engine) TEnd() float64 { return e.cfg.TEnd }
func (e *Engine) Config() dynamo.Config { return e.cfg }
func (e *Engine) System() dynamo.System { return e.dyn }
func (e *Engine) Solver() string { return e.integ.Name() }
func (e *Engine) InitialState() dynamo.State { return e.y0 }

// IsNumerical reports whether err is an integration failure rather than a
// configuration problem.
func IsNumerical(err error) bool {
	return errors.Is(err, dynamo.ErrStepBudget) ||
		errors.Is(err, dynamo.ErrStepTooSmall) ||
		errors.Is(err, dynamo.ErrInvalidState)
}
