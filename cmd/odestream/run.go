package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/odestream/internal/config"
	"github.com/san-kum/odestream/internal/dynamo"
	"github.com/san-kum/odestream/internal/experiment"
	"github.com/san-kum/odestream/internal/export"
	"github.com/spf13/cobra"
)

var (
	format  string
	xSlot   int
	ySlot   int
	plotRow int
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [model]",
		Short: "solve the full interval and print or export the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	cmd.Flags().StringVar(&format, "format", "", "write the trajectory to stdout as json, csv or svg")
	cmd.Flags().IntVar(&xSlot, "x-slot", 0, "svg x axis slot")
	cmd.Flags().IntVar(&ySlot, "y-slot", 1, "svg y axis slot")
	cmd.Flags().IntVar(&plotRow, "height", 15, "plot height in rows")
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	// batch runs are never paced
	cfg.Simulation.RealtimeDelay = 0

	exp, err := experiment.New(registry, cfg, logger)
	if err != nil {
		return err
	}
	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	run := exportRun(cfg, res, exp.Engine().Labels())
	switch format {
	case "json":
		return export.JSON(os.Stdout, run)
	case "csv":
		return export.CSV(os.Stdout, run)
	case "svg":
		return export.SVG(os.Stdout, res.Trajectory, xSlot, ySlot, 800, 600, "#00ff88")
	case "":
	default:
		return fmt.Errorf("unknown format %q (json, csv or svg)", format)
	}

	for _, k := range run.Labels.Slots() {
		fmt.Println(asciigraph.Plot(res.Trajectory.Component(k),
			asciigraph.Height(plotRow),
			asciigraph.Width(80),
			asciigraph.Caption(run.Labels[k])))
		fmt.Println()
	}
	fmt.Printf("model: %s  solver: %s  samples: %d  elapsed: %v\n",
		res.Model, res.Solver, res.Trajectory.Len(), res.Elapsed)
	printMetrics(res.Metrics)
	return nil
}

func exportRun(cfg *config.Config, res *experiment.Result, labels dynamo.Labels) export.Run {
	return export.Run{
		Model:   res.Model,
		Solver:  res.Solver,
		Dt:      cfg.Simulation.Dt,
		TEnd:    cfg.TEnd(),
		Labels:  labels,
		Metrics: res.Metrics,
		Traj:    res.Trajectory,
	}
}


func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-14s %.6g\n", name, metrics[name])
	}
}
