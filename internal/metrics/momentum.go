package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// MomentumDrift reports the largest |P - P0| seen, relative to the largest
// momentum scale (sum of m|v|) seen. Zero while nothing moves.
type MomentumDrift struct {
	name     string
	initial  dynamo.Vector
	maxDiff  float64
	maxScale float64
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(step int, t float64, sys *physics.System) {
	p := sys.Momentum()
	if m.initial == nil {
		m.initial = p
	}
	m.maxDiff = math.Max(m.maxDiff, p.Sub(m.initial).Norm())
	m.maxScale = math.Max(m.maxScale, sys.MomentumScale())
}

func (m *MomentumDrift) Value() float64 {
	if m.maxScale == 0 {
		return 0
	}
	return m.maxDiff / m.maxScale
}

func (m *MomentumDrift) Reset() {
	m.initial = nil
	m.maxDiff = 0
	m.maxScale = 0
}
