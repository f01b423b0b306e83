package domain

import "errors"

// Sentinel errors shared across the leadgen packages, following the
// one-errors-file-per-package convention used throughout this codebase.
var (
	ErrNotFound     = errors.New("domain: not found")
	ErrInvalidInput = errors.New("domain: invalid input")
)

// ValidationError reports a single field-level validation failure. It is
// deliberately a value the caller can inspect (Field, Message) rather than
// a formatted string, so handlers can report which field failed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "validation failed for " + e.Field + ": " + e.Message
}
