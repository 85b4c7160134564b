package physics

import (
	"fmt"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// System is a fixed, ordered set of bodies sharing one dimensionality. Body i
// in construction order maps to force result i.
type System struct {
	bodies []*Body
	dim    int
}

func NewSystem(bodies ...*Body) (*System, error) {
	if len(bodies) == 0 {
		return nil, &dynamo.FieldError{
			Field:  "bodies",
			Reason: "at least one body is required",
			Err:    dynamo.ErrInvalidDimension,
		}
	}

	dim := 0
	for i, b := range bodies {
		if b == nil {
			return nil, &dynamo.FieldError{
				Field:  fmt.Sprintf("bodies[%d]", i),
				Reason: "body is nil",
				Err:    dynamo.ErrInvalidDimension,
			}
		}
		if i == 0 {
			dim = b.Dim()
			continue
		}
		if b.Dim() != dim {
			return nil, &dynamo.FieldError{
				Field:  fmt.Sprintf("bodies[%d]", i),
				Reason: fmt.Sprintf("is %d dimensional, system is %d dimensional", b.Dim(), dim),
				Err:    dynamo.ErrInvalidDimension,
			}
		}
	}

	owned := make([]*Body, len(bodies))
	copy(owned, bodies)
	return &System{bodies: owned, dim: dim}, nil
}

func (s *System) Len() int { return len(s.bodies) }
func (s *System) Dim() int { return s.dim }

func (s *System) Body(i int) *Body { return s.bodies[i] }

// Bodies returns the bodies in index order. The slice is a copy; the bodies
// are not.
func (s *System) Bodies() []*Body {
	out := make([]*Body, len(s.bodies))
	copy(out, s.bodies)
	return out
}

// Snapshot copies every position and mass into the caller's buffers, which
// must have length Len() and positions of length Dim().
func (s *System) Snapshot(positions []dynamo.Vector, masses []float64) {
	for i, b := range s.bodies {
		copy(positions[i], b.position)
		masses[i] = b.mass
	}
}

// SnapshotVelocities copies every velocity into dst in index order.
func (s *System) SnapshotVelocities(dst []dynamo.Vector) {
	for i, b := range s.bodies {
		copy(dst[i], b.velocity)
	}
}

// NewSnapshot allocates buffers sized for Snapshot.
func (s *System) NewSnapshot() ([]dynamo.Vector, []float64) {
	positions := make([]dynamo.Vector, len(s.bodies))
	for i := range positions {
		positions[i] = dynamo.NewVector(s.dim)
	}
	return positions, make([]float64, len(s.bodies))
}
