// Package errors provides structured error types for the atom codec.
//
// Errors are categorized by Phase (which half of the codec raised the
// error) and Kind (error category). The Error type carries the buffer
// offset the error refers to and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRead, errors.KindMalformedContainer).
//		Offset(24).
//		Detail("vector body size %d is not 8 + %d*n", size, childSize).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfSpace(need, have)
//	err := errors.Truncated(errors.PhaseRead, off, 8, remaining)
//
// All errors implement the standard error interface and support
// errors.Is/As; Is matches on (Phase, Kind).
package errors
