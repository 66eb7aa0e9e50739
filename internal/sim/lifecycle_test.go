package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/odestream/internal/dynamo"
	"github.com/san-kum/odestream/internal/integrators"
	"github.com/san-kum/odestream/internal/physics"
	"github.com/san-kum/odestream/internal/sim"
)

var _ = Describe("Engine lifecycle", func() {
	var (
		cfg    dynamo.Config
		engine *sim.Engine
	)

	BeforeEach(func() {
		cfg = dynamo.DefaultConfig()
		cfg.Dt = 0.1
		cfg.TEnd = 1.0
	})

	Context("with a fresh oscillator engine", func() {
		BeforeEach(func() {
			var err error
			o := physics.NewOscillator(1)
			engine, err = sim.New(o, integrators.NewRK4(cfg.Dt), o.InitialState(), cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("starts with an empty trajectory", func() {
			Expect(engine.Trajectory().Len()).To(Equal(0))
			Expect(engine.Done()).To(BeFalse())
		})

		It("exposes the model labels and end time", func() {
			Expect(engine.Labels()).To(Equal(dynamo.Labels{"x (m)", "v (m/s)", "unused", "unused"}))
			Expect(engine.TEnd()).To(Equal(1.0))
		})

		It("seeds and steps on the first advance", func() {
			Expect(engine.Advance()).To(Succeed())
			traj := engine.Trajectory()
			Expect(traj.Len()).To(Equal(2))
			Expect(traj.At(0).T).To(Equal(0.0))
			Expect(traj.At(0).Y).To(Equal(dynamo.State{1, 0, 0, 0}))
			Expect(traj.At(1).T).To(BeNumerically("~", 0.1, 1e-15))
		})

		It("reaches the end time and then stays put", func() {
			for i := 0; i < 50; i++ {
				Expect(engine.Advance()).To(Succeed())
			}
			Expect(engine.Done()).To(BeTrue())
			Expect(engine.Trajectory().Len()).To(Equal(11))
			Expect(engine.Trajectory().Last().T).To(Equal(1.0))
		})

		It("replaces the trajectory on solve", func() {
			Expect(engine.Advance()).To(Succeed())
			traj, err := engine.Solve()
			Expect(err).NotTo(HaveOccurred())
			Expect(traj.Len()).To(Equal(11))
			Expect(engine.Done()).To(BeTrue())

			x := traj.Component(0)
			Expect(x[10]).To(BeNumerically("~", math.Cos(1), 1e-5))
		})
	})

	Context("when the adaptive strategy runs out of budget", func() {
		It("reports a simulation error and commits nothing", func() {
			l := physics.NewLorenz(10, 28, 8.0/3.0)
			integ := integrators.NewDopri5(1e-12, 1e-14).WithMaxSteps(2)
			var err error
			engine, err = sim.New(l, integ, l.InitialState(1, 1, 1), cfg)
			Expect(err).NotTo(HaveOccurred())

			err = engine.Advance()
			Expect(err).To(MatchError(dynamo.ErrStepBudget))
			var simErr *dynamo.SimulationError
			Expect(err).To(BeAssignableToTypeOf(simErr))
			Expect(engine.Trajectory().Len()).To(Equal(0))
		})
	})
})

var _ = Describe("Ensemble", func() {
	It("solves independent engines concurrently", func() {
		cfg := dynamo.DefaultConfig()
		cfg.TEnd = 2 * math.Pi
		cfg.Dt = 0.01
		o := physics.NewOscillator(1)

		rk4, err := sim.New(o, integrators.NewRK4(cfg.Dt), o.InitialState(), cfg)
		Expect(err).NotTo(HaveOccurred())
		dp5, err := sim.New(o, integrators.NewDopri5(1e-9, 1e-12), o.InitialState(), cfg)
		Expect(err).NotTo(HaveOccurred())

		ens, err := sim.NewEnsemble(rk4, dp5)
		Expect(err).NotTo(HaveOccurred())
		views, err := ens.Solve(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(views).To(HaveLen(2))

		for _, v := range views {
			last := v.Last()
			Expect(last.T).To(Equal(cfg.TEnd))
			Expect(last.Y[0]).To(BeNumerically("~", 1, 1e-6))
			Expect(last.Y[1]).To(BeNumerically("~", 0, 1e-6))
		}
	})

	It("rejects a shared engine", func() {
		cfg := dynamo.DefaultConfig()
		o := physics.NewOscillator(1)
		e, err := sim.New(o, integrators.NewRK4(cfg.Dt), o.InitialState(), cfg)
		Expect(err).NotTo(HaveOccurred())

		_, err = sim.NewEnsemble(e, e)
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
	})

	It("returns the first failure", func() {
		cfg := dynamo.DefaultConfig()
		l := physics.NewLorenz(10, 28, 8.0/3.0)
		bad, err := sim.New(l, integrators.NewDopri5(1e-12, 1e-14).WithMaxSteps(1), l.InitialState(1, 1, 1), cfg)
		Expect(err).NotTo(HaveOccurred())
		good, err := sim.New(l, integrators.NewRK4(cfg.Dt), l.InitialState(1, 1, 1), cfg)
		Expect(err).NotTo(HaveOccurred())

		ens, err := sim.NewEnsemble(good, bad)
		Expect(err).NotTo(HaveOccurred())
		_, err = ens.Solve(context.Background())
		Expect(err).To(MatchError(dynamo.ErrStepBudget))
	})
})
