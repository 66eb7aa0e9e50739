package main

import (
	"fmt"
	"slices"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/odestream/internal/analysis"
	"github.com/san-kum/odestream/internal/experiment"
	"github.com/spf13/cobra"
)

var (
	slot         int
	lyapunov     bool
	perturbation float64
	section      float64
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [model]",
		Short: "frequency, return map and chaos analysis of one slot",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}
	cmd.Flags().IntVar(&slot, "slot", 0, "state slot to analyze")
	cmd.Flags().BoolVar(&lyapunov, "lyapunov", false, "also estimate the largest Lyapunov exponent")
	cmd.Flags().Float64Var(&perturbation, "perturbation", 1e-8, "initial separation for the Lyapunov estimate")
	cmd.Flags().Float64Var(&section, "section", 0, "threshold for the Poincaré section through --slot")
	return cmd
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	cfg.Simulation.RealtimeDelay = 0

	exp, err := experiment.New(registry, cfg, logger)
	if err != nil {
		return err
	}
	labels := exp.Engine().Labels()
	slots := labels.Slots()
	pos := slices.Index(slots, slot)
	if pos < 0 {
		return fmt.Errorf("slot %d is not used by %s (%v)", slot, cfg.Simulation.DiffeqProblem, labels.Used())
	}

	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	traj := res.Trajectory

	fmt.Printf("frequency analysis: %s / %s (%s)\n\n", res.Model, res.Solver, labels[slot])
	data := traj.Component(slot)
	ps := analysis.PowerSpectrum(data)
	if len(ps) > 4 {
		fmt.Println(asciigraph.Plot(ps[:len(ps)/4],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+labels[slot]+")")))
		fmt.Println()
	}
	freq, _ := analysis.DominantFrequency(data, cfg.Simulation.Dt)
	fmt.Printf("dominant frequency: %.4f\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.4f\n", 1.0/freq)
	}

	fmt.Println("\nreturn map")
	fmt.Print(analysis.PhasePortraitToASCII(analysis.ReturnMap(traj, slot), 60, 20))

	if len(slots) > 1 {
		x, y := slots[(pos+1)%len(slots)], slots[(pos+2)%len(slots)]
		fmt.Printf("\npoincaré section %s = %g (%s vs %s)\n", labels[slot], section, labels[x], labels[y])
		fmt.Print(analysis.PoincareSectionToASCII(analysis.Section(traj, slot, section, x, y), 60, 20))
		fmt.Println()
	}

	if lyapunov {
		integ, err := registry.GetIntegrator(cfg)
		if err != nil {
			return err
		}
		lambda, err := analysis.LyapunovExponent(exp.Engine().System(), integ,
			exp.Engine().InitialState(), cfg.Simulation.Dt, cfg.TEnd(), perturbation)
		if err != nil {
			return err
		}
		verdict := "regular"
		if lambda > 0.01 {
			verdict = "chaotic"
		}
		fmt.Printf("\nlargest lyapunov exponent: %.4f (%s)\n", lambda, verdict)
	}
	return nil
}
