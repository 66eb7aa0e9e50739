package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/odestream/internal/config"
	"github.com/san-kum/odestream/internal/experiment"
	"github.com/san-kum/odestream/internal/sim"
	"github.com/san-kum/odestream/internal/viz"
	"github.com/spf13/cobra"
)

var (
	mode  string
	theme string
)

var modes = map[string]viz.Mode{
	"series": viz.ModeSeries,
	"phase":  viz.ModePhase,
	"return": viz.ModeReturn,
	"3d":     viz.Mode3D,
}

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live [model]",
		Short: "advance the simulation step by step with a live view",
		Long: "Advance the simulation one step per frame, pacing each step by\n" +
			"simulation.realtime_delay. With simulation.show_plot=false the\n" +
			"simulation runs headless and only the summary is printed.",
		Args: cobra.MaximumNArgs(1),
		RunE: runLive,
	}
	cmd.Flags().StringVar(&mode, "mode", "series", "initial view: series, phase, return or 3d")
	cmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, fmt.Sprintf("color theme %v", viz.ThemeNames()))
	return cmd
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(registry, cfg, logger)
	if err != nil {
		return err
	}

	if !cfg.Simulation.ShowPlot {
		return runHeadless(cmd, exp)
	}

	m, err := liveModel(exp)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

func liveModel(exp *experiment.Experiment) (viz.Model, error) {
	initial, ok := modes[mode]
	if !ok {
		return viz.Model{}, fmt.Errorf("unknown mode %q", mode)
	}
	return viz.NewModel(exp.Engine(),
		viz.WithMetrics(exp.Metrics()...),
		viz.WithMode(initial),
		viz.WithTheme(theme)), nil
}

// runHeadless drives Advance to the end time without a terminal UI.
func runHeadless(cmd *cobra.Command, exp *experiment.Experiment) error {
	engine := exp.Engine()
	ctx := cmd.Context()
	for !engine.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := engine.Advance(); err != nil {
			if sim.IsNumerical(err) {
				logger.Error("integration failed", "err", err, "samples", engine.Trajectory().Len())
			}
			return err
		}
	}

	traj := engine.Trajectory()
	last := traj.Last()
	fmt.Printf("model: %s  solver: %s  samples: %d  t: %g\n",
		engine.System().Name(), engine.Solver(), traj.Len(), last.T)
	labels := engine.Labels()
	for _, k := range labels.Slots() {
		fmt.Printf("  %-10s %.6g\n", labels[k], last.Y[k])
	}
	metrics := make(map[string]float64)
	for _, m := range exp.Metrics() {
		metrics[m.Name()] = m.Value()
	}
	printMetrics(metrics)
	return nil
}

// runPicker is the default command: choose a model and preset, then watch it.
func runPicker(cmd *cobra.Command, args []string) error {
	entries := make([]viz.Entry, 0)
	for _, model := range registry.ListModels() {
		for _, p := range config.ListPresets(model) {
			entries = append(entries, viz.Entry{Model: model, Preset: p})
		}
	}

	launch := func(e viz.Entry) (viz.Model, error) {
		cfg := config.GetPreset(e.Model, e.Preset)
		if cfg == nil {
			return viz.Model{}, fmt.Errorf("unknown preset %q for %s", e.Preset, e.Model)
		}
		exp, err := experiment.New(registry, cfg, logger)
		if err != nil {
			return viz.Model{}, err
		}
		return viz.NewModel(exp.Engine(), viz.WithMetrics(exp.Metrics()...)), nil
	}

	_, err := tea.NewProgram(viz.NewPicker(entries, launch), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	return err
}
