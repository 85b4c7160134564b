package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// Observer is the post-step hook. It runs after every completed step and
// must treat the system as read-only.
type Observer interface {
	OnStep(step int, t float64, sys *physics.System)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(step int, t float64, sys *physics.System)

func (f ObserverFunc) OnStep(step int, t float64, sys *physics.System) { f(step, t, sys) }

// Metric accumulates a scalar over a run. Observe sees the initial state at
// step 0 and then every completed step.
type Metric interface {
	Name() string
	Observe(step int, t float64, sys *physics.System)
	Value() float64
	Reset()
}

type Config struct {
	Dt float64
	// Steps is the number of steps to take; 0 runs until the context is done.
	Steps int
	// CloseEncounter is the separation below which a pair is reported as a
	// close encounter; 0 disables the check.
	CloseEncounter float64
}

func DefaultConfig() Config {
	return Config{
		Dt:    0.01,
		Steps: 1000,
	}
}

func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive and finite, got %g", dynamo.ErrInvalidConfig, c.Dt)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", dynamo.ErrInvalidConfig, c.Steps)
	}
	if c.CloseEncounter < 0 {
		return fmt.Errorf("%w: close encounter distance must be non-negative, got %g", dynamo.ErrInvalidConfig, c.CloseEncounter)
	}
	return nil
}

type Result struct {
	RunID           string
	StepsTaken      int
	Time            float64
	Metrics         map[string]float64
	EnergyDrift     float64
	CloseEncounters int
}
