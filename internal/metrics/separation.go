package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/physics"
)

// SeparationRange tracks the distance between two bodies and reports
// (max - min) / initial, a boundedness check for orbits.
type SeparationRange struct {
	name    string
	i, j    int
	initial float64
	min     float64
	max     float64
	samples int
}

func NewSeparationRange(i, j int) *SeparationRange {
	return &SeparationRange{
		name: fmt.Sprintf("separation_range_%d_%d", i, j),
		i:    i,
		j:    j,
	}
}

func (s *SeparationRange) Name() string { return s.name }

func (s *SeparationRange) Observe(step int, t float64, sys *physics.System) {
	if s.i < 0 || s.j < 0 || s.i >= sys.Len() || s.j >= sys.Len() {
		return
	}
	d := sys.Separation(s.i, s.j)
	if s.samples == 0 {
		s.initial, s.min, s.max = d, d, d
	}
	s.min = math.Min(s.min, d)
	s.max = math.Max(s.max, d)
	s.samples++
}

func (s *SeparationRange) Value() float64 {
	if s.samples == 0 || s.initial == 0 {
		return 0
	}
	return (s.max - s.min) / s.initial
}

func (s *SeparationRange) Min() float64 { return s.min }
func (s *SeparationRange) Max() float64 { return s.max }

func (s *SeparationRange) Reset() {
	s.initial, s.min, s.max = 0, 0, 0
	s.samples = 0
}
