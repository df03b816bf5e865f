package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess         = 0   // Indicates successful execution.
	ExitErrorGeneric    = 1   // Indicates a generic error.
	ExitErrorTransport  = 2   // Indicates a remote operation failed.
	ExitErrorValidation = 3   // Indicates rejected input (bad file, missing facility).
	ExitErrorConfig     = 4   // Indicates a configuration error.
	ExitErrorCanceled   = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ValidationError represents client-detected bad input. It never reaches the
// network: the triggering action is blocked and the message shown inline.
type ValidationError struct {
	// Field is the name of the input that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// TransportError is a non-success outcome of a remote operation. StatusCode is
// zero when the request never produced an HTTP response.
type TransportError struct {
	// Operation names the remote operation (upload, extract, search, compare, ...).
	Operation string
	// StatusCode is the HTTP status, or 0 for network-level failures.
	StatusCode int
	// Message is the server-provided detail or the transport error text.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns a formatted message describing the transport failure.
func (e TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed (HTTP %d): %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying cause.
func (e TransportError) Unwrap() error { return e.Cause }

// PreconditionError reports an operation invoked without its required state,
// e.g. a comparison with no facility selected.
type PreconditionError struct {
	Operation   string
	Requirement string
}

// Error returns a formatted message describing the unmet precondition.
func (e PreconditionError) Error() string {
	return fmt.Sprintf("cannot %s: %s", e.Operation, e.Requirement)
}

// UploadError wraps a failure of one of the two upload stages.
type UploadError struct {
	// Stage is "uploading" or "extracting".
	Stage string
	Cause error
}

// Error returns the stage and the cause message.
func (e UploadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Cause)
}

// Unwrap returns the underlying cause.
func (e UploadError) Unwrap() error { return e.Cause }

// ComparisonError wraps a failed comparison request. It is surfaced at the
// hospital step and never transitions the workflow to results.
type ComparisonError struct {
	Cause error
}

// Error returns the comparison failure message.
func (e ComparisonError) Error() string {
	return fmt.Sprintf("comparison failed: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e ComparisonError) Unwrap() error { return e.Cause }

// SearchError wraps a failed facility search. The previous list is kept.
type SearchError struct {
	Query string
	Cause error
}

// Error returns the search failure message.
func (e SearchError) Error() string {
	return fmt.Sprintf("search failed for %q: %v", e.Query, e.Cause)
}

// Unwrap returns the underlying cause.
func (e SearchError) Unwrap() error { return e.Cause }

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps an error to the process exit code reported by the
// non-interactive surfaces.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, context.Canceled) {
		return ExitErrorCanceled
	}

	var cfgErr ConfigError
	var valErr ValidationError
	var preErr PreconditionError
	var trErr TransportError
	switch {
	case errors.As(err, &cfgErr):
		return ExitErrorConfig
	case errors.As(err, &valErr), errors.As(err, &preErr):
		return ExitErrorValidation
	case errors.As(err, &trErr), errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTransport
	}
	return ExitErrorGeneric
}
