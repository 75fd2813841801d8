package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Invalid input
	ErrCatGeneration ErrorCategory = "generation" // Generation call failure
	ErrCatNotFound   ErrorCategory = "not_found"  // Resource not found
	ErrCatCancelled  ErrorCategory = "cancelled"  // Run cancelled by caller
	ErrCatState      ErrorCategory = "state"      // Persistence failure
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// DomainError represents a structured error from the domain layer.
type DomainError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{Category: ErrCatValidation, Code: code, Message: message}
}

// ErrGeneration creates a generation failure error.
func ErrGeneration(message string) *DomainError {
	return &DomainError{Category: ErrCatGeneration, Code: CodeGenerationFailed, Message: message}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) *DomainError {
	return &DomainError{
		Category: ErrCatNotFound,
		Code:     "NOT_FOUND",
		Message:  fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrVersionNotFound creates a not found error for a prompt version.
func ErrVersionNotFound(id string) *DomainError {
	return &DomainError{
		Category: ErrCatNotFound,
		Code:     CodeVersionNotFound,
		Message:  fmt.Sprintf("prompt version not found: %s", id),
	}
}

// ErrModelNotFound creates a not found error for a model configuration.
func ErrModelNotFound(id string) *DomainError {
	return &DomainError{
		Category: ErrCatNotFound,
		Code:     CodeModelNotFound,
		Message:  fmt.Sprintf("model config not found: %s", id),
	}
}

// ErrRunNotFound creates a not found error for a persisted run.
func ErrRunNotFound(id string) *DomainError {
	return &DomainError{
		Category: ErrCatNotFound,
		Code:     CodeRunNotFound,
		Message:  fmt.Sprintf("run not found: %s", id),
	}
}

// ErrCancelled creates a cancellation error.
func ErrCancelled(message string) *DomainError {
	return &DomainError{Category: ErrCatCancelled, Code: "CANCELLED", Message: message}
}

// ErrState creates a persistence error.
func ErrState(code, message string) *DomainError {
	return &DomainError{Category: ErrCatState, Code: code, Message: message}
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// Predefined error codes
const (
	CodeGenerationFailed = "GENERATION_FAILED"
	CodeVersionNotFound  = "VERSION_NOT_FOUND"
	CodeModelNotFound    = "MODEL_NOT_FOUND"
	CodeRunNotFound      = "RUN_NOT_FOUND"
)
