// Package apperrors defines structured application error types, allowing a
// clear distinction between error classes (validation, transport, unmet
// precondition, configuration) while carrying the underlying cause.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// Every type that carries a cause implements Unwrap() to support errors.Is()
// and errors.As().
package apperrors
