package malthus_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/malthus/internal/malthus"
)

func stagnation() malthus.Parameters {
	return malthus.Parameters{
		Lambda:      0.5,
		G:           0.0,
		Alpha:       0.7,
		Land:        100,
		N0:          50,
		A0:          1,
		Subsistence: 1.0,
	}
}

var _ = Describe("Production", func() {
	It("decreases in population", func() {
		prev := math.Inf(1)
		for _, n := range []float64{1, 10, 50, 100, 500, 5000} {
			y, err := malthus.Production(n, 1, 100, 0.7)
			Expect(err).NotTo(HaveOccurred())
			Expect(y).To(BeNumerically("<", prev))
			prev = y
		}
	})

	It("increases in technology", func() {
		prev := 0.0
		for _, a := range []float64{0.1, 1, 2, 10, 100} {
			y, err := malthus.Production(80, a, 100, 0.3)
			Expect(err).NotTo(HaveOccurred())
			Expect(y).To(BeNumerically(">", prev))
			prev = y
		}
	})
})

var _ = Describe("Simulate", func() {
	It("returns exactly the initial state for a zero horizon", func() {
		p := stagnation()
		x0 := malthus.State{T: 3, Population: 42, Technology: 1.5}

		tr, err := malthus.Simulate(x0, p, 0)
		Expect(err).NotTo(HaveOccurred())

		states, err := tr.States()
		Expect(err).NotTo(HaveOccurred())
		Expect(states).To(Equal([]malthus.State{x0}))
	})

	It("is deterministic", func() {
		p := stagnation()
		p.G = 0.01

		a, err := malthus.Simulate(p.Initial(), p, 200)
		Expect(err).NotTo(HaveOccurred())
		b, err := malthus.Simulate(p.Initial(), p, 200)
		Expect(err).NotTo(HaveOccurred())

		Expect(a).To(Equal(b))
		sa, _ := a.States()
		sb, _ := b.States()
		Expect(sa).To(Equal(sb))
	})
})

var _ = Describe("Equilibrium", func() {
	cfg := malthus.DefaultEquilibriumConfig()

	It("reproduces Malthusian stagnation for the reference economy", func() {
		cfg := cfg
		cfg.MaxIterations = 500

		out, err := malthus.Equilibrium(stagnation(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Regime).To(Equal(malthus.Converged))
		Expect(out.Iterations).To(BeNumerically("<=", 500))
		Expect(out.Income).To(BeNumerically("~", 1.0, 1e-6))
		Expect(out.State.Population).To(BeNumerically("~", 100, 1e-3))
	})

	DescribeTable("converges to subsistence when technology is static",
		func(lambda, alpha, n0 float64) {
			p := stagnation()
			p.Lambda, p.Alpha, p.N0 = lambda, alpha, n0

			out, err := malthus.Equilibrium(p, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Regime).To(Equal(malthus.Converged))
			Expect(out.Income).To(BeNumerically("~", p.Subsistence, 1e-6))
		},
		Entry("slow adjustment, low alpha", 0.1, 0.3, 20.0),
		Entry("slow adjustment, crowded", 0.1, 0.7, 150.0),
		Entry("fast adjustment, sparse", 1.0, 0.3, 20.0),
		Entry("fast adjustment, crowded", 1.0, 0.7, 150.0),
		Entry("reference", 0.5, 0.7, 50.0),
	)

	DescribeTable("takes off when technology outpaces the population ceiling",
		func(lambda, g, alpha float64) {
			p := stagnation()
			p.Lambda, p.G, p.Alpha = lambda, g, alpha

			out, err := malthus.Equilibrium(p, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Regime).To(Equal(malthus.DivergentGrowth))
			Expect(out.Income).To(BeNumerically(">", p.Subsistence))
		},
		Entry("slow adjustment", 0.05, 0.05, 0.7),
		Entry("very slow adjustment", 0.02, 0.1, 0.5),
		Entry("fast technology", 0.5, 0.2, 0.7),
	)

	It("settles at a higher income when technology grows slowly", func() {
		p := stagnation()
		p.G = 0.01

		out, err := malthus.Equilibrium(p, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Regime).To(Equal(malthus.Converged))
		Expect(out.Income).To(BeNumerically(">", p.Subsistence))
	})

	It("reports non-convergence as a distinct error", func() {
		cfg := cfg
		cfg.MaxIterations = 3

		_, err := malthus.Equilibrium(stagnation(), cfg)
		Expect(errors.Is(err, malthus.ErrNonConvergence)).To(BeTrue())
	})
})

var _ = Describe("Sweep", func() {
	values := []float64{0.0, 0.01, 0.05}

	It("keeps the supplied order and keys", func() {
		res, err := malthus.Sweep("g", values, stagnation(), malthus.SimulateFor(200))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Len()).To(Equal(3))
		Expect(res.Values()).To(Equal(values))
		Expect(res.Kind).To(Equal("simulate"))

		for _, v := range values {
			pt, ok := res.Get(v)
			Expect(ok).To(BeTrue())
			Expect(pt.Params.G).To(Equal(v))
			Expect(pt.Trajectory).NotTo(BeNil())
			Expect(pt.Trajectory.Len()).To(Equal(201))
		}
	})

	It("solves equilibria per value", func() {
		res, err := malthus.Sweep("lambda", []float64{0.05, 0.5}, func() malthus.Parameters {
			p := stagnation()
			p.G = 0.05
			return p
		}(), malthus.SolveEquilibrium(malthus.DefaultEquilibriumConfig()))
		Expect(err).NotTo(HaveOccurred())

		slow, _ := res.Get(0.05)
		fast, _ := res.Get(0.5)
		Expect(slow.Outcome.Regime).To(Equal(malthus.DivergentGrowth))
		Expect(fast.Outcome.Regime).To(Equal(malthus.Converged))
	})

	It("matches the parallel sweep", func() {
		grid := []float64{0, 0.005, 0.01, 0.02, 0.03, 0.05, 0.08}
		probe := malthus.SolveEquilibrium(malthus.DefaultEquilibriumConfig())

		serial, err := malthus.Sweep("g", grid, stagnation(), probe)
		Expect(err).NotTo(HaveOccurred())
		parallel, err := malthus.SweepParallel("g", grid, stagnation(), probe, 3)
		Expect(err).NotTo(HaveOccurred())

		Expect(parallel).To(Equal(serial))
	})

	It("rejects duplicate values", func() {
		_, err := malthus.Sweep("g", []float64{0.01, 0.01}, stagnation(), malthus.SimulateFor(10))
		Expect(errors.Is(err, malthus.ErrDuplicateValue)).To(BeTrue())
	})

	It("rejects unknown parameter names", func() {
		_, err := malthus.Sweep("gamma", values, stagnation(), malthus.SimulateFor(10))
		Expect(errors.Is(err, malthus.ErrUnknownParameter)).To(BeTrue())
	})

	It("aborts on the first invalid point", func() {
		_, err := malthus.Sweep("alpha", []float64{0.5, 1.2}, stagnation(), malthus.SimulateFor(10))
		Expect(errors.Is(err, malthus.ErrInvalidParameter)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("alpha=1.2"))
	})
})
