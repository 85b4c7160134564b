package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Vector is a position, velocity or force in 2 or 3 dimensions.
type Vector []float64

func NewVector(dim int) Vector {
	return make(Vector, dim)
}

func (v Vector) Dim() int { return len(v) }

func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

// IsValid reports whether every component is finite.
func (v Vector) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (v Vector) Norm() float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v, 2)
}

func (v Vector) Add(other Vector) Vector {
	result := v.Clone()
	floats.Add(result, other)
	return result
}

func (v Vector) Sub(other Vector) Vector {
	result := v.Clone()
	floats.Sub(result, other)
	return result
}

func (v Vector) Scale(factor float64) Vector {
	result := v.Clone()
	floats.Scale(factor, result)
	return result
}

// AddScaled adds alpha*other to v in place.
func (v Vector) AddScaled(alpha float64, other Vector) {
	floats.AddScaled(v, alpha, other)
}

// Zero sets every component to zero in place.
func (v Vector) Zero() {
	for i := range v {
		v[i] = 0
	}
}

// EqualApprox reports whether v and other have the same dimension and agree
// component-wise within tol.
func (v Vector) EqualApprox(other Vector, tol float64) bool {
	if len(v) != len(other) {
		return false
	}
	return floats.EqualApprox(v, other, tol)
}
