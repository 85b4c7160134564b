package physics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/gravsim/internal/dynamo"
)

func (s *System) KineticEnergy() float64 {
	ke := 0.0
	for _, b := range s.bodies {
		ke += 0.5 * b.mass * floats.Dot(b.velocity, b.velocity)
	}
	return ke
}

// PotentialEnergy sums -G mi mj / r over distinct pairs. Coincident pairs
// contribute nothing, matching the force tie-break.
func (s *System) PotentialEnergy(g float64) float64 {
	pe := 0.0
	for i := 0; i < len(s.bodies); i++ {
		for j := i + 1; j < len(s.bodies); j++ {
			r := floats.Distance(s.bodies[i].position, s.bodies[j].position, 2)
			if r == 0 {
				continue
			}
			pe -= g * s.bodies[i].mass * s.bodies[j].mass / r
		}
	}
	return pe
}

func (s *System) Energy(g float64) float64 {
	return s.KineticEnergy() + s.PotentialEnergy(g)
}

// Momentum returns total linear momentum.
func (s *System) Momentum() dynamo.Vector {
	p := dynamo.NewVector(s.dim)
	for _, b := range s.bodies {
		p.AddScaled(b.mass, b.velocity)
	}
	return p
}

// MomentumScale is the sum of |m v| over bodies, the natural yardstick for
// rounding error in Momentum.
func (s *System) MomentumScale() float64 {
	sum := 0.0
	for _, b := range s.bodies {
		sum += b.mass * b.velocity.Norm()
	}
	return sum
}

func (s *System) TotalMass() float64 {
	m := 0.0
	for _, b := range s.bodies {
		m += b.mass
	}
	return m
}

func (s *System) CenterOfMass() dynamo.Vector {
	c := dynamo.NewVector(s.dim)
	for _, b := range s.bodies {
		c.AddScaled(b.mass, b.position)
	}
	floats.Scale(1/s.TotalMass(), c)
	return c
}

// MinSeparation returns the smallest pairwise distance and the pair that
// attains it. With fewer than two bodies it returns +Inf and -1, -1.
func (s *System) MinSeparation() (float64, int, int) {
	best, bi, bj := math.Inf(1), -1, -1
	for i := 0; i < len(s.bodies); i++ {
		for j := i + 1; j < len(s.bodies); j++ {
			r := floats.Distance(s.bodies[i].position, s.bodies[j].position, 2)
			if r < best {
				best, bi, bj = r, i, j
			}
		}
	}
	return best, bi, bj
}

// Separation returns the distance between bodies i and j.
func (s *System) Separation(i, j int) float64 {
	return floats.Distance(s.bodies[i].position, s.bodies[j].position, 2)
}
