package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Body is a point mass with the kinematic state advanced by the simulator.
// Position and velocity share a dimensionality fixed at construction.
type Body struct {
	position  dynamo.Vector
	velocity  dynamo.Vector
	lastForce dynamo.Vector
	mass      float64
	radius    float64
	color     string
	dim       int
}

// NewBody validates and copies its inputs. Mass and radius must be positive
// and finite; position and velocity must both be 2- or 3-dimensional with
// finite components.
func NewBody(position, velocity []float64, mass, radius float64, color string) (*Body, error) {
	dim := len(position)
	if dim < 2 || dim > 3 {
		return nil, &dynamo.FieldError{
			Field:  "position",
			Reason: fmt.Sprintf("must be 2 or 3 dimensional, got %d", dim),
			Err:    dynamo.ErrInvalidDimension,
		}
	}
	if err := validateVector("position", position, dim); err != nil {
		return nil, err
	}
	if err := validateVector("velocity", velocity, dim); err != nil {
		return nil, err
	}
	if err := validatePositive("mass", mass); err != nil {
		return nil, err
	}
	if err := validatePositive("radius", radius); err != nil {
		return nil, err
	}

	return &Body{
		position:  dynamo.Vector(position).Clone(),
		velocity:  dynamo.Vector(velocity).Clone(),
		lastForce: dynamo.NewVector(dim),
		mass:      mass,
		radius:    radius,
		color:     color,
		dim:       dim,
	}, nil
}

func (b *Body) Dim() int        { return b.dim }
func (b *Body) Mass() float64   { return b.mass }
func (b *Body) Radius() float64 { return b.radius }
func (b *Body) Color() string   { return b.color }

func (b *Body) Position() dynamo.Vector  { return b.position.Clone() }
func (b *Body) Velocity() dynamo.Vector  { return b.velocity.Clone() }
func (b *Body) LastForce() dynamo.Vector { return b.lastForce.Clone() }

// SetPosition replaces the position after revalidating it.
func (b *Body) SetPosition(p []float64) error {
	if err := validateVector("position", p, b.dim); err != nil {
		return err
	}
	copy(b.position, p)
	return nil
}

// SetVelocity replaces the velocity after revalidating it.
func (b *Body) SetVelocity(v []float64) error {
	if err := validateVector("velocity", v, b.dim); err != nil {
		return err
	}
	copy(b.velocity, v)
	return nil
}

// Update replaces the whole kinematic state in one call. Nothing is written
// unless all three vectors pass validation.
func (b *Body) Update(velocity, position, force []float64) error {
	if err := validateVector("velocity", velocity, b.dim); err != nil {
		return err
	}
	if err := validateVector("position", position, b.dim); err != nil {
		return err
	}
	if err := validateVector("force", force, b.dim); err != nil {
		return err
	}
	copy(b.velocity, velocity)
	copy(b.position, position)
	copy(b.lastForce, force)
	return nil
}

func (b *Body) String() string {
	return fmt.Sprintf("Body{pos=%v vel=%v mass=%g radius=%g color=%q}",
		[]float64(b.position), []float64(b.velocity), b.mass, b.radius, b.color)
}

func validateVector(field string, v []float64, dim int) error {
	if len(v) != dim {
		return &dynamo.FieldError{
			Field:  field,
			Reason: fmt.Sprintf("must be %d dimensional, got %d", dim, len(v)),
			Err:    dynamo.ErrInvalidDimension,
		}
	}
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return &dynamo.FieldError{
				Field:  fmt.Sprintf("%s[%d]", field, i),
				Reason: fmt.Sprintf("must be finite, got %v", x),
				Err:    dynamo.ErrNonFinite,
			}
		}
	}
	return nil
}

func validatePositive(field string, x float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return &dynamo.FieldError{
			Field:  field,
			Reason: fmt.Sprintf("must be finite, got %v", x),
			Err:    dynamo.ErrNonFinite,
		}
	}
	if x <= 0 {
		return &dynamo.FieldError{
			Field:  field,
			Reason: fmt.Sprintf("must be larger than 0, got %g", x),
			Err:    dynamo.ErrInvalidMagnitude,
		}
	}
	return nil
}
