package models

import (
	"errors"
	"fmt"
)

// Error codes carried by AppError.
const (
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeNotFound         = "NOT_FOUND"
	CodeRequestFailed    = "REQUEST_FAILED"
	CodeTransportFailure = "TRANSPORT_FAILURE"
	CodeValidation       = "VALIDATION_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
)

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	// Status is the HTTP status for REQUEST_FAILED errors, zero otherwise.
	Status int
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
	}
}

func NewRequestFailedError(status int, message string) *AppError {
	return &AppError{
		Code:    CodeRequestFailed,
		Message: message,
		Status:  status,
	}
}

func NewTransportError(err error) *AppError {
	return &AppError{
		Code:    CodeTransportFailure,
		Message: "request transport failure",
		Err:     err,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}

// code extracts the AppError code from err, or "".
func code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsUnauthorized reports whether err is an UNAUTHORIZED AppError.
func IsUnauthorized(err error) bool { return code(err) == CodeUnauthorized }

// IsNotFound reports whether err is a NOT_FOUND AppError.
func IsNotFound(err error) bool { return code(err) == CodeNotFound }

// IsValidation reports whether err is a VALIDATION_ERROR AppError.
func IsValidation(err error) bool { return code(err) == CodeValidation }
