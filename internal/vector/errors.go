package vector

import "fmt"

// InactiveFeatureError is returned when a vector read or write is attempted
// while the activation gate is closed. It is fatal to the call and must never
// be retried internally — activation is an explicit operator decision.
type InactiveFeatureError struct {
	// Message is the fixed explanatory text describing why the call was blocked.
	Message string
}

// Error returns the fixed gate message.
func (e *InactiveFeatureError) Error() string { return e.Message }

// ValidationError reports a missing or malformed required field on a core
// operation. The caller must fix the input; the call is never retried.
type ValidationError struct {
	// Op is the operation that rejected the input (e.g. "EmbedContext").
	Op string
	// Field is the name of the missing or invalid field.
	Field string
	// Reason describes what was wrong (e.g. "is required", "must not be nil").
	Reason string
}

// Error formats the validation failure as "op: field reason".
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Op, e.Field, e.Reason)
}

// InvalidInputError reports an embedding-provider-level input problem
// (nil or empty text). Same treatment as ValidationError: caller fixes input.
type InvalidInputError struct {
	// Message describes the input problem.
	Message string
}

// Error returns the input problem description.
func (e *InvalidInputError) Error() string { return e.Message }

// PersistenceError reports a failed boundary call to the context store.
// The underlying cause is wrapped verbatim; the caller decides on retry.
type PersistenceError struct {
	// Op is the store operation that failed ("insert" or "query").
	Op string
	// Err is the underlying store error, preserved unmodified.
	Err error
}

// Error formats the failure as "op failed - cause".
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed - %v", e.Op, e.Err)
}

// Unwrap exposes the underlying store error for errors.Is/As chains.
func (e *PersistenceError) Unwrap() error { return e.Err }
