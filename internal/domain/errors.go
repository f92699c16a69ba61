package domain

import (
	"errors"
	"fmt"
	"time"
)

// AppError represents a domain-specific error with structured information
type AppError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   any       `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation,omitempty"`
	Cause     error     `json:"-"` // Original error, not serialized
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error wrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithOperation records which operation produced the error
func (e *AppError) WithOperation(operation string) *AppError {
	e.Operation = operation
	return e
}

// Error codes for different error categories
const (
	ErrInvalidInput        = "INVALID_INPUT"        // Malformed config or manifest content
	ErrValidationFailed    = "VALIDATION_FAILED"    // Schema or structural violation
	ErrNotFound            = "NOT_FOUND"            // Upstream object does not exist
	ErrUpstreamUnavailable = "UPSTREAM_UNAVAILABLE" // Hosting API or probe target unreachable
	ErrRateLimited         = "RATE_LIMITED"         // Hosting API refused because of rate limits
	ErrResourceMissing     = "RESOURCE_MISSING"     // Local file (manifest, schema, plugins dir) missing
	ErrInternal            = "INTERNAL_ERROR"
)

// NewAppError creates a new AppError with the specified parameters
func NewAppError(code, message string, details any) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// NewAppErrorWithCause creates a new AppError with underlying cause
func NewAppErrorWithCause(code, message string, cause error, details any) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

// HasCode reports whether any AppError in err's chain carries code
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return HasCode(err, ErrNotFound)
}

// IsRateLimited checks if the error was caused by upstream rate limiting
func IsRateLimited(err error) bool {
	return HasCode(err, ErrRateLimited)
}

// IsResourceMissing checks if the error is a missing local resource
func IsResourceMissing(err error) bool {
	return HasCode(err, ErrResourceMissing)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return HasCode(err, ErrValidationFailed)
}
