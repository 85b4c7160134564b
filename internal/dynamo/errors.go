package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for construction and stepping.
var (
	// ErrInvalidDimension indicates a vector that is not 2- or 3-dimensional,
	// or dimensions that disagree within a body or across a system.
	ErrInvalidDimension = errors.New("dynamo: invalid dimension")

	// ErrInvalidMagnitude indicates a non-positive mass, radius or constant.
	ErrInvalidMagnitude = errors.New("dynamo: invalid magnitude")

	// ErrNonFinite indicates a NaN or Inf component.
	ErrNonFinite = errors.New("dynamo: non-finite value (NaN or Inf detected)")

	// ErrUnstable indicates the simulation diverged during a step.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrInvalidConfig indicates run parameters outside their valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid run configuration")
)

// FieldError reports which constructor input was rejected and why.
type FieldError struct {
	Field  string
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// StabilityError wraps a step-time fault with the offending body and quantity.
type StabilityError struct {
	Step     int
	Body     int
	Quantity string
	Err      error
}

func (e *StabilityError) Error() string {
	return fmt.Sprintf("step %d: body %d: %s became non-finite", e.Step, e.Body, e.Quantity)
}

// Unwrap exposes both the numeric cause and ErrUnstable.
func (e *StabilityError) Unwrap() []error {
	return []error{e.Err, ErrUnstable}
}
