package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates the resource is busy with another request
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeGone indicates the resource was closed and can no longer be used
	ErrorTypeGone ErrorType = "GONE"

	// ErrorTypeConfig indicates malformed static configuration, detected at load time
	ErrorTypeConfig ErrorType = "CONFIG"

	// ErrorTypeAnalysisUnavailable indicates the risk-scoring collaborator
	// could not produce a usable result
	ErrorTypeAnalysisUnavailable ErrorType = "ANALYSIS_UNAVAILABLE"

	// ErrorTypePersistence indicates the record store rejected a write
	ErrorTypePersistence ErrorType = "PERSISTENCE"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from external service
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewGoneError creates a new gone error
func NewGoneError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeGone,
		Message: message,
	}
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
	}
}

// NewAnalysisUnavailableError creates a new analysis unavailable error.
// The message carries the upstream reason when one is known.
func NewAnalysisUnavailableError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeAnalysisUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewPersistenceError creates a new persistence error
func NewPersistenceError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypePersistence,
		Message: message,
		Err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}

// IsType reports whether err (or any error it wraps) is an AppError of type t
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal when err is not an AppError
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}
