package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/goleak"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/sim"
)

var _ = Describe("Ensemble", func() {
	var baseline goleak.Option
	BeforeEach(func() {
		baseline = goleak.IgnoreCurrent()
	})
	AfterEach(func() {
		Expect(goleak.Find(baseline)).To(Succeed())
	})

	orbit := func() *sim.Simulator {
		return newSim(1.0,
			bodySpec{[]float64{-0.5, 0}, []float64{0, -0.7}, 1},
			bodySpec{[]float64{0.5, 0}, []float64{0, 0.7}, 1},
		)
	}

	It("runs each member with its own config", func() {
		e := sim.NewEnsemble()
		e.SetLimit(2)
		dts := []float64{0.01, 0.005, 0.0025}
		for _, dt := range dts {
			Expect(e.Add(orbit(), sim.Config{Dt: dt, Steps: int(1 / dt)})).To(Succeed())
		}
		Expect(e.Len()).To(Equal(3))

		results, err := e.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for i, res := range results {
			Expect(res.StepsTaken).To(Equal(int(1 / dts[i])))
			Expect(res.Time).To(BeNumerically("~", 1.0, 1e-9))
		}
		Expect(results[0].RunID).NotTo(Equal(results[1].RunID))
	})

	It("rejects members that share a system", func() {
		s := orbit()
		e := sim.NewEnsemble()
		Expect(e.Add(s, sim.DefaultConfig())).To(Succeed())
		twin, err := sim.New(s.System(), s.ForceField())
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Add(twin, sim.DefaultConfig())).To(MatchError(dynamo.ErrInvalidConfig))
		Expect(e.Add(nil, sim.DefaultConfig())).To(MatchError(dynamo.ErrInvalidConfig))
		Expect(e.Add(orbit(), sim.Config{})).To(MatchError(dynamo.ErrInvalidConfig))
	})

	It("cancels the others when one member diverges", func() {
		bad := newSim(1.0,
			bodySpec{[]float64{0, 0}, []float64{0, 0}, 1},
			bodySpec{[]float64{1e-110, 0}, []float64{0, 0}, 1},
		)
		e := sim.NewEnsemble()
		Expect(e.Add(orbit(), sim.Config{Dt: 0.001})).To(Succeed())
		Expect(e.Add(bad, sim.Config{Dt: 0.001, Steps: 10})).To(Succeed())

		results, err := e.Run(context.Background())
		Expect(err).To(MatchError(dynamo.ErrUnstable))
		Expect(results[1].StepsTaken).To(Equal(0))
		Expect(results[0]).NotTo(BeNil())
	})
})
