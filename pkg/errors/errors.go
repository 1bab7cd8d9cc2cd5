package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrInvalidInput
	ErrDuplicateIdentifier
	ErrBusinessRule
	ErrInvalidTransition
	ErrAllocationConflict
	ErrDependencyFailure
	ErrUnauthorized
	ErrForbidden
	ErrInternal
)

// Business-rule reasons, so callers can tell apart failures sharing a code.
const (
	ReasonTaxIDRequiredByAge    = "TAX_ID_REQUIRED_BY_AGE"
	ReasonJustificationRequired = "JUSTIFICATION_REQUIRED"
	ReasonSocialNameRequired    = "SOCIAL_NAME_REQUIRED"
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Reason  string    `json:"reason,omitempty"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// StatusCode maps the error code to an HTTP status. Handlers rely on this
// being stable per code.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrInvalidInput:
		return http.StatusBadRequest
	case ErrDuplicateIdentifier, ErrInvalidTransition, ErrAllocationConflict:
		return http.StatusConflict
	case ErrBusinessRule:
		return http.StatusUnprocessableEntity
	case ErrDependencyFailure:
		return http.StatusBadGateway
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidInput,
		Message: message,
	}
}

func Duplicate(message string, err error) *AppError {
	return &AppError{
		Code:    ErrDuplicateIdentifier,
		Message: message,
		Err:     err,
	}
}

func BusinessRule(reason, message string) *AppError {
	return &AppError{
		Code:    ErrBusinessRule,
		Reason:  reason,
		Message: message,
	}
}

func InvalidTransition(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: message,
	}
}

func AllocationConflict(err error) *AppError {
	return &AppError{
		Code:    ErrAllocationConflict,
		Message: "document number allocation exceeded retry budget",
		Err:     err,
	}
}

func Dependency(message string, err error) *AppError {
	return &AppError{
		Code:    ErrDependencyFailure,
		Message: message,
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// As unwraps err to an AppError.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf extracts the ErrorCode from err, ErrInternal if err is not an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// ReasonOf extracts the business-rule reason, if any.
func ReasonOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}
