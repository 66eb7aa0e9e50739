package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/san-kum/odestream/internal/experiment"
	"github.com/san-kum/odestream/internal/integrators"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare [model] [solver_a] [solver_b]",
		Short: "solve with two solvers concurrently and report their deviation",
		Args:  cobra.MaximumNArgs(3),
		RunE:  compareSolvers,
	}
}

func compareSolvers(cmd *cobra.Command, args []string) error {
	solvers := []string{integrators.RK4Name, integrators.Dopri5Name}
	copy(solvers, args[min(1, len(args)):])

	cfg, err := loadConfig(cmd, args[:min(1, len(args))])
	if err != nil {
		return err
	}
	cfg.Simulation.RealtimeDelay = 0

	cmp, err := experiment.Compare(cmd.Context(), registry, cfg, solvers[0], solvers[1])
	if err != nil {
		return err
	}

	dyn, _, err := registry.GetModel(cfg)
	if err != nil {
		return err
	}
	labels := dyn.Labels()

	fmt.Printf("comparing %s vs %s on %s (%d samples)\n\n", solvers[0], solvers[1],
		cfg.Simulation.DiffeqProblem, cmp.Trajectories[0].Len())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "slot\tmax |a-b|\tfinal |a-b|")
	for _, k := range labels.Slots() {
		fmt.Fprintf(w, "%s\t%.3e\t%.3e\n", labels[k], cmp.MaxDeviation[k], cmp.FinalDeviation[k])
	}
	return w.Flush()
}
