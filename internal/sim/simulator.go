package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

const tracerName = "github.com/san-kum/gravsim/internal/sim"

// Simulator advances a System with semi-implicit (symplectic) Euler steps.
// It is not safe for concurrent use; run independent instances instead.
type Simulator struct {
	sys       *physics.System
	ff        *physics.ForceField
	metrics   []Metric
	observers []Observer
	log       *zap.Logger
	tracer    trace.Tracer

	step int
	t    float64

	positions  []dynamo.Vector
	velocities []dynamo.Vector
	forces     []dynamo.Vector
	masses     []float64
}

type Option func(*Simulator)

func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.log = l
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Simulator) {
		if t != nil {
			s.tracer = t
		}
	}
}

// New returns a simulator over sys using ff for forces. Both are required.
func New(sys *physics.System, ff *physics.ForceField, opts ...Option) (*Simulator, error) {
	if sys == nil {
		return nil, &dynamo.FieldError{Field: "system", Reason: "system is nil", Err: dynamo.ErrInvalidConfig}
	}
	if ff == nil {
		return nil, &dynamo.FieldError{Field: "force field", Reason: "force field is nil", Err: dynamo.ErrInvalidConfig}
	}
	s := &Simulator{
		sys:       sys,
		ff:        ff,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       zap.NewNop(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.positions, s.masses = sys.NewSnapshot()
	s.velocities, _ = sys.NewSnapshot()
	s.forces, _ = sys.NewSnapshot()
	return s, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) System() *physics.System         { return s.sys }
func (s *Simulator) ForceField() *physics.ForceField { return s.ff }

// Time is the simulated time elapsed over all completed steps.
func (s *Simulator) Time() float64 { return s.t }

// Steps is the number of completed steps.
func (s *Simulator) Steps() int { return s.step }

// Step advances every body by dt from a single pre-step snapshot. Either all
// bodies advance or, on a *dynamo.StabilityError, none do.
func (s *Simulator) Step(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: dt must be positive and finite, got %g", dynamo.ErrInvalidConfig, dt)
	}

	s.sys.Snapshot(s.positions, s.masses)
	s.sys.SnapshotVelocities(s.velocities)

	if err := s.ff.ComputeInto(s.forces, s.positions, s.masses); err != nil {
		return err
	}
	for i, f := range s.forces {
		if !f.IsValid() {
			return s.fault(i, "force")
		}
	}

	// The snapshot buffers become the proposed state in place.
	for i := range s.positions {
		symplecticEuler(s.velocities[i], s.positions[i], s.forces[i], s.masses[i], dt)
		if !s.velocities[i].IsValid() {
			return s.fault(i, "velocity")
		}
		if !s.positions[i].IsValid() {
			return s.fault(i, "position")
		}
	}

	for i, b := range s.sys.Bodies() {
		if err := b.Update(s.velocities[i], s.positions[i], s.forces[i]); err != nil {
			return err
		}
	}

	s.step++
	s.t += dt

	for _, m := range s.metrics {
		m.Observe(s.step, s.t, s.sys)
	}
	for _, obs := range s.observers {
		obs.OnStep(s.step, s.t, s.sys)
	}
	return nil
}

// symplecticEuler updates velocity from force first, then position from the
// updated velocity.
func symplecticEuler(v, x, force dynamo.Vector, mass, dt float64) {
	v.AddScaled(dt/mass, force)
	x.AddScaled(dt, v)
}

func (s *Simulator) fault(body int, quantity string) error {
	err := &dynamo.StabilityError{
		Step:     s.step + 1,
		Body:     body,
		Quantity: quantity,
		Err:      dynamo.ErrNonFinite,
	}
	s.log.Warn("simulation diverged",
		zap.Int("step", err.Step),
		zap.Int("body", body),
		zap.String("quantity", quantity))
	return err
}

// Run takes cfg.Steps steps, or steps until ctx is done when cfg.Steps is 0.
// The context is checked between steps only. The partial result is returned
// alongside any error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "sim.Run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("bodies", s.sys.Len()),
		attribute.Int("dim", s.sys.Dim()),
		attribute.Float64("dt", cfg.Dt),
		attribute.Int("steps", cfg.Steps),
	))
	defer span.End()

	log := s.log.With(zap.String("run_id", runID))
	result := &Result{
		RunID:   runID,
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
		m.Observe(s.step, s.t, s.sys)
	}

	g := s.ff.G()
	initialEnergy := s.sys.Energy(g)
	inEncounter := false

	log.Debug("run started",
		zap.Int("bodies", s.sys.Len()),
		zap.Float64("dt", cfg.Dt),
		zap.Int("steps", cfg.Steps))

	var runErr error
	for cfg.Steps == 0 || result.StepsTaken < cfg.Steps {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := s.Step(cfg.Dt); err != nil {
			runErr = err
			break
		}
		result.StepsTaken++

		if cfg.CloseEncounter > 0 {
			d, i, j := s.sys.MinSeparation()
			if d < cfg.CloseEncounter {
				if !inEncounter {
					result.CloseEncounters++
					log.Warn("close encounter",
						zap.Int("step", s.step),
						zap.Int("body_a", i),
						zap.Int("body_b", j),
						zap.Float64("separation", d))
				}
				inEncounter = true
			} else {
				inEncounter = false
			}
		}
	}

	result.Time = s.t
	finalEnergy := s.sys.Energy(g)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	span.SetAttributes(attribute.Int("steps.taken", result.StepsTaken))
	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
		log.Debug("run stopped", zap.Int("steps_taken", result.StepsTaken), zap.Error(runErr))
		return result, runErr
	}

	log.Debug("run finished",
		zap.Int("steps_taken", result.StepsTaken),
		zap.Float64("energy_drift", result.EnergyDrift))
	return result, nil
}
