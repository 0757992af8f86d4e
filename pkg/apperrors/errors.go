// Package apperrors defines sentinel errors shared across the engine.
package apperrors

import "errors"

var (
	// ErrNotFound signals a referenced entity or configuration entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation signals malformed input, rejected before any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrVersionConflict signals an optimistic concurrency check failed on save.
	// Safe to retry after a fresh load.
	ErrVersionConflict = errors.New("version conflict")
)

// VersionConflict wraps ErrVersionConflict so pkg/retry treats it as transient.
type VersionConflict struct {
	Entity string
}

func (e *VersionConflict) Error() string {
	return "version conflict on " + e.Entity
}

func (e *VersionConflict) Unwrap() error { return ErrVersionConflict }

// IsRetryable implements retry.RetryableError.
func (e *VersionConflict) IsRetryable() bool { return true }
