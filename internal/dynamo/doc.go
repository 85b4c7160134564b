// Package dynamo provides the numeric primitives shared by the gravity engine.
//
// The package defines:
//
//   - [Vector]: a 2- or 3-component position, velocity or force
//   - the error taxonomy: [ErrInvalidDimension], [ErrInvalidMagnitude],
//     [ErrNonFinite] and [ErrUnstable], with [FieldError] for construction
//     failures and [StabilityError] for step-time faults
//   - [ParallelFor]: chunked data-parallel loops over a body range
//
// # Errors
//
// Construction errors name the rejected field:
//
//	_, err := physics.NewBody(pos, vel, -1, 1, "red")
//	var fe *dynamo.FieldError
//	if errors.As(err, &fe) {
//	    fmt.Println(fe.Field) // "mass"
//	}
//
// Step-time faults match both [ErrNonFinite] and [ErrUnstable] under errors.Is.
package dynamo
