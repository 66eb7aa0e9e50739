package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/lmittmann/tint"
	"github.com/san-kum/odestream/internal/config"
	"github.com/san-kum/odestream/internal/experiment"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	logLevel   string
	solver     string
	steps      int
	dt         float64
	delayMs    float64

	registry = experiment.NewRegistry()
	logger   = slog.Default()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "odestream",
		Short:         "ode integration with live terminal plots",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(logLevel)
		},
		RunE: runPicker,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (toml, yaml or ini)")
	flags.StringVar(&preset, "preset", "", "use preset configuration")
	flags.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	flags.StringVar(&solver, "solver", "", "override simulation.solver")
	flags.IntVar(&steps, "steps", 0, "override simulation.timesteps")
	flags.Float64Var(&dt, "dt", 0, "override simulation.dt")
	flags.Float64Var(&delayMs, "delay", -1, "override simulation.realtime_delay (ms)")
	rootCmd.MarkFlagsMutuallyExclusive("config", "preset")

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newAnalyzeCmd(),
		newSweepCmd(),
		newCompareCmd(),
		newScenarioCmd(),
		newMonteCarloCmd(),
		newPresetsCmd(),
		newConfigCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func setupLogger(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig resolves settings from, in order: defaults or a preset or a
// config file, environment overrides, the optional model argument and
// command line overrides.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	if preset != "" {
		model := config.DefaultConfig().Simulation.DiffeqProblem
		if len(args) > 0 {
			model = args[0]
		}
		cfg = config.GetPreset(model, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q for %s (available: %v)", preset, model, config.ListPresets(model))
		}
	} else {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	}

	if len(args) > 0 {
		cfg.Simulation.DiffeqProblem = args[0]
	}
	f := cmd.Flags()
	if f.Changed("solver") {
		cfg.Simulation.Solver = solver
	}
	if f.Changed("steps") {
		cfg.Simulation.Timesteps = steps
	}
	if f.Changed("dt") {
		cfg.Simulation.Dt = dt
	}
	if f.Changed("delay") {
		cfg.Simulation.RealtimeDelay = delayMs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("configuration resolved",
		"model", cfg.Simulation.DiffeqProblem,
		"solver", cfg.Simulation.Solver,
		"steps", cfg.Simulation.Timesteps,
		"dt", cfg.Simulation.Dt)
	return cfg, nil
}
