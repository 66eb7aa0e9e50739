package main

import (
	"fmt"

	"github.com/san-kum/odestream/internal/analysis"
	"github.com/san-kum/odestream/internal/experiment"
	"github.com/spf13/cobra"
)

var (
	param     string
	paramFrom float64
	paramTo   float64
	paramN    int
	peakSlot  int
	transient float64
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "bifurcation diagram over one model parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepParam,
	}
	cmd.Flags().StringVar(&param, "param", "rho", fmt.Sprintf("parameter to sweep %v", experiment.SweepParams()))
	cmd.Flags().Float64Var(&paramFrom, "from", 20, "first parameter value")
	cmd.Flags().Float64Var(&paramTo, "to", 180, "last parameter value")
	cmd.Flags().IntVar(&paramN, "n", 60, "number of parameter values")
	cmd.Flags().IntVar(&peakSlot, "slot", 2, "state slot whose peaks are recorded")
	cmd.Flags().Float64Var(&transient, "transient", 20, "time discarded before recording")
	return cmd
}

func sweepParam(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	logger.Info("sweeping", "model", cfg.Simulation.DiffeqProblem, "param", param, "from", paramFrom, "to", paramTo, "n", paramN)
	points, err := experiment.Sweep(registry, cfg, param, analysis.Linspace(paramFrom, paramTo, paramN), peakSlot, transient)
	if err != nil {
		return err
	}

	fmt.Printf("bifurcation diagram: %s, %s in [%g, %g], peaks of slot %d\n\n",
		cfg.Simulation.DiffeqProblem, param, paramFrom, paramTo, peakSlot)
	fmt.Print(analysis.BifurcationToASCII(points, 80, 24))
	return nil
}
