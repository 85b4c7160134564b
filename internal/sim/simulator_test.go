package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

type bodySpec struct {
	pos, vel []float64
	mass     float64
}

func newSim(g float64, specs ...bodySpec) *sim.Simulator {
	GinkgoHelper()
	bodies := make([]*physics.Body, len(specs))
	for i, s := range specs {
		b, err := physics.NewBody(s.pos, s.vel, s.mass, 1, "white")
		Expect(err).NotTo(HaveOccurred())
		bodies[i] = b
	}
	sys, err := physics.NewSystem(bodies...)
	Expect(err).NotTo(HaveOccurred())
	ff, err := physics.NewForceField(g)
	Expect(err).NotTo(HaveOccurred())
	s, err := sim.New(sys, ff)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func positions(s *sim.Simulator) []dynamo.Vector {
	out := make([]dynamo.Vector, s.System().Len())
	for i, b := range s.System().Bodies() {
		out[i] = b.Position()
	}
	return out
}

type countingMetric struct {
	observed []int
	resets   int
}

func (m *countingMetric) Name() string { return "count" }
func (m *countingMetric) Observe(step int, t float64, sys *physics.System) {
	m.observed = append(m.observed, step)
}
func (m *countingMetric) Value() float64 { return float64(len(m.observed)) }
func (m *countingMetric) Reset()         { m.observed = nil; m.resets++ }

var _ = Describe("Simulator", func() {
	It("requires a system and a force field", func() {
		base := newSim(1.0, bodySpec{[]float64{0, 0}, []float64{0, 0}, 1})

		s, err := sim.New(nil, base.ForceField())
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		Expect(s).To(BeNil())

		s, err = sim.New(base.System(), nil)
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		Expect(s).To(BeNil())
	})

	Describe("Step", func() {
		It("updates velocity before position", func() {
			s := newSim(1.0,
				bodySpec{[]float64{0, 0}, []float64{0.5, -0.25}, 2},
				bodySpec{[]float64{2, 0}, []float64{0, 0}, 8},
			)
			b := s.System().Body(0)
			p, v := b.Position(), b.Velocity()
			forces, err := s.ForceField().Compute([]dynamo.Vector{{0, 0}, {2, 0}}, []float64{2, 8})
			Expect(err).NotTo(HaveOccurred())
			f := forces[0]

			dt := 0.1
			Expect(s.Step(dt)).To(Succeed())

			wantV := dynamo.Vector{v[0] + f[0]/2*dt, v[1] + f[1]/2*dt}
			wantP := dynamo.Vector{p[0] + wantV[0]*dt, p[1] + wantV[1]*dt}
			Expect(b.Velocity().EqualApprox(wantV, 1e-12)).To(BeTrue(), "velocity %v, want %v", b.Velocity(), wantV)
			Expect(b.Position().EqualApprox(wantP, 1e-12)).To(BeTrue(), "position %v, want %v", b.Position(), wantP)
			Expect(b.LastForce().EqualApprox(f, 1e-12)).To(BeTrue())
			Expect(s.Steps()).To(Equal(1))
			Expect(s.Time()).To(BeNumerically("~", dt, 1e-15))
		})

		It("leaves an isolated body at rest", func() {
			s := newSim(6.6743e-11, bodySpec{[]float64{3, -4, 5}, []float64{0, 0, 0}, 1e30})
			for i := 0; i < 10000; i++ {
				Expect(s.Step(1e4)).To(Succeed())
			}
			Expect(s.System().Body(0).Position()).To(Equal(dynamo.Vector{3, -4, 5}))
			Expect(s.System().Body(0).Velocity()).To(Equal(dynamo.Vector{0, 0, 0}))
		})

		It("rejects a non-positive dt", func() {
			s := newSim(1.0, bodySpec{[]float64{0, 0}, []float64{0, 0}, 1})
			Expect(s.Step(0)).To(MatchError(dynamo.ErrInvalidConfig))
			Expect(s.Step(math.NaN())).To(MatchError(dynamo.ErrInvalidConfig))
			Expect(s.Steps()).To(Equal(0))
		})

		It("reports a non-finite force without moving any body", func() {
			s := newSim(1.0,
				bodySpec{[]float64{0, 0}, []float64{1, 0}, 1},
				bodySpec{[]float64{1e-110, 0}, []float64{0, 1}, 1},
			)
			before := positions(s)

			err := s.Step(1)
			Expect(err).To(MatchError(dynamo.ErrUnstable))
			Expect(err).To(MatchError(dynamo.ErrNonFinite))

			var se *dynamo.StabilityError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Body).To(Equal(0))
			Expect(se.Quantity).To(Equal("force"))
			Expect(se.Step).To(Equal(1))

			Expect(positions(s)).To(Equal(before))
			Expect(s.System().Body(0).Velocity()).To(Equal(dynamo.Vector{1, 0}))
			Expect(s.Steps()).To(Equal(0))
		})

		It("reports an overflowing velocity with the body index", func() {
			s := newSim(1.0,
				bodySpec{[]float64{0, 0}, []float64{0, 0}, 1},
				bodySpec{[]float64{1, 0}, []float64{0, 0}, 1e300},
			)
			err := s.Step(1e10)

			var se *dynamo.StabilityError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Body).To(Equal(0))
			Expect(se.Quantity).To(Equal("velocity"))
			Expect(s.System().Body(1).Position()).To(Equal(dynamo.Vector{1, 0}))
		})

		It("notifies observers and metrics after each step", func() {
			s := newSim(1.0,
				bodySpec{[]float64{0, 0}, []float64{0, 0}, 1},
				bodySpec{[]float64{1, 0}, []float64{0, 0}, 1},
			)
			var seen []int
			s.AddObserver(sim.ObserverFunc(func(step int, t float64, sys *physics.System) {
				seen = append(seen, step)
			}))
			m := &countingMetric{}
			s.AddMetric(m)

			for i := 0; i < 3; i++ {
				Expect(s.Step(0.01)).To(Succeed())
			}
			Expect(seen).To(Equal([]int{1, 2, 3}))
			Expect(m.observed).To(Equal([]int{1, 2, 3}))
		})
	})

	Describe("conservation", func() {
		It("keeps the center of mass fixed for a symmetric pair", func() {
			s := newSim(1.0,
				bodySpec{[]float64{-1, 0, 0}, []float64{0, 0.3, 0.1}, 2},
				bodySpec{[]float64{1, 0, 0}, []float64{0, -0.3, -0.1}, 2},
			)
			com0 := s.System().CenterOfMass()
			for i := 0; i < 5000; i++ {
				Expect(s.Step(0.001)).To(Succeed())
			}
			Expect(s.System().CenterOfMass().EqualApprox(com0, 1e-12)).To(BeTrue(),
				"center of mass moved from %v to %v", com0, s.System().CenterOfMass())
		})

		It("keeps a circular orbit bounded", func() {
			v := math.Sqrt(0.5)
			s := newSim(1.0,
				bodySpec{[]float64{-0.5, 0}, []float64{0, -v}, 1},
				bodySpec{[]float64{0.5, 0}, []float64{0, v}, 1},
			)
			lo, hi := math.Inf(1), math.Inf(-1)
			s.AddObserver(sim.ObserverFunc(func(step int, t float64, sys *physics.System) {
				d := sys.Separation(0, 1)
				lo = math.Min(lo, d)
				hi = math.Max(hi, d)
			}))

			res, err := s.Run(context.Background(), sim.Config{Dt: 0.001, Steps: 20000})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.StepsTaken).To(Equal(20000))
			Expect(lo).To(BeNumerically(">", 0.98))
			Expect(hi).To(BeNumerically("<", 1.02))
			Expect(res.EnergyDrift).To(BeNumerically("<", 0.02))
		})
	})

	Describe("Run", func() {
		It("completes the three-body scenario with momentum conserved", func() {
			s := newSim(6.6743e-11,
				bodySpec{[]float64{0, 0, 0}, []float64{0, 0, 0}, 1.0},
				bodySpec{[]float64{5, 0, 0}, []float64{0, 2e-7, 0}, 1.0},
				bodySpec{[]float64{1, 0, 0}, []float64{0, 3e-7, 0}, 0.5},
			)
			p0 := s.System().Momentum()
			scale := s.System().MomentumScale()
			s.AddObserver(sim.ObserverFunc(func(step int, t float64, sys *physics.System) {
				scale = math.Max(scale, sys.MomentumScale())
			}))

			res, err := s.Run(context.Background(), sim.Config{Dt: 1e4, Steps: 100000})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.StepsTaken).To(Equal(100000))
			Expect(res.Time).To(BeNumerically("~", 1e9, 1))

			for i, b := range s.System().Bodies() {
				Expect(b.Position().IsValid()).To(BeTrue(), "body %d position", i)
				Expect(b.Velocity().IsValid()).To(BeTrue(), "body %d velocity", i)
			}
			drift := s.System().Momentum().Sub(p0).Norm()
			Expect(drift).To(BeNumerically("<=", 1e-8*scale))
		})

		It("rejects an invalid config before stepping", func() {
			s := newSim(1.0, bodySpec{[]float64{0, 0}, []float64{1, 0}, 1})
			for _, cfg := range []sim.Config{
				{Dt: 0, Steps: 1},
				{Dt: -1, Steps: 1},
				{Dt: math.Inf(1), Steps: 1},
				{Dt: 0.1, Steps: -1},
				{Dt: 0.1, Steps: 1, CloseEncounter: -1},
			} {
				res, err := s.Run(context.Background(), cfg)
				Expect(err).To(MatchError(dynamo.ErrInvalidConfig), "%+v", cfg)
				Expect(res).To(BeNil())
			}
			Expect(s.Steps()).To(Equal(0))
		})

		It("runs until cancelled when steps is zero", func() {
			s := newSim(1.0,
				bodySpec{[]float64{0, 0}, []float64{0, 0}, 1},
				bodySpec{[]float64{10, 0}, []float64{0, 0}, 1},
			)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			s.AddObserver(sim.ObserverFunc(func(step int, t float64, sys *physics.System) {
				if step == 50 {
					cancel()
				}
			}))

			res, err := s.Run(ctx, sim.Config{Dt: 0.01})
			Expect(err).To(MatchError(context.Canceled))
			Expect(res).NotTo(BeNil())
			Expect(res.StepsTaken).To(Equal(50))
			Expect(res.RunID).NotTo(BeEmpty())
		})

		It("returns the partial result on a stability fault", func() {
			s := newSim(1.0,
				bodySpec{[]float64{0, 0}, []float64{0, 0}, 1},
				bodySpec{[]float64{1e-110, 0}, []float64{0, 0}, 1},
			)
			res, err := s.Run(context.Background(), sim.Config{Dt: 1, Steps: 10})
			Expect(err).To(MatchError(dynamo.ErrUnstable))
			Expect(res.StepsTaken).To(Equal(0))
		})

		It("resets metrics and observes the initial state", func() {
			s := newSim(1.0,
				bodySpec{[]float64{0, 0}, []float64{0, 0}, 1},
				bodySpec{[]float64{1, 0}, []float64{0, 0}, 1},
			)
			m := &countingMetric{}
			s.AddMetric(m)

			res, err := s.Run(context.Background(), sim.Config{Dt: 0.001, Steps: 4})
			Expect(err).NotTo(HaveOccurred())
			Expect(m.resets).To(Equal(1))
			Expect(m.observed).To(Equal([]int{0, 1, 2, 3, 4}))
			Expect(res.Metrics).To(HaveKeyWithValue("count", 5.0))
		})

		It("warns once per close encounter", func() {
			core, logs := observer.New(zap.WarnLevel)
			bodies := []bodySpec{
				{[]float64{-1, 0}, []float64{0, 0}, 1},
				{[]float64{1, 0}, []float64{0, 0}, 1},
			}
			base := newSim(1.0, bodies...)
			s, err := sim.New(base.System(), base.ForceField(), sim.WithLogger(zap.New(core)))
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(context.Background(), sim.Config{Dt: 0.001, Steps: 200, CloseEncounter: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.CloseEncounters).To(Equal(1))
			Expect(logs.FilterMessage("close encounter").Len()).To(Equal(1))

			entry := logs.FilterMessage("close encounter").All()[0]
			Expect(entry.ContextMap()).To(HaveKeyWithValue("body_a", int64(0)))
			Expect(entry.ContextMap()).To(HaveKeyWithValue("body_b", int64(1)))
		})
	})
})
