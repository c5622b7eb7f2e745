package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error types
var (
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("resource conflict")
	ErrInternal     = errors.New("internal server error")
	ErrValidation   = errors.New("validation error")
	ErrUnavailable  = errors.New("feature not available")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError represents an application error with a machine-readable code.
// The Code field is what API clients switch on; Message is human-readable.
type AppError struct {
	Err        error             `json:"-"`
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	StatusCode int               `json:"status_code"`
	Details    map[string]string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code string, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, code string, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// Common error constructors

func NotFound(resource string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

// NotFoundCode creates a not-found error with a resource-specific code,
// e.g. EMPLOYEE_NOT_FOUND or ROLE_NOT_FOUND.
func NotFoundCode(code, resource string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       code,
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Err:        ErrForbidden,
		Code:       "ACCESS_DENIED",
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:        ErrUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:        ErrConflict,
		Code:       "CONFLICT",
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func Internal(message string) *AppError {
	return &AppError{
		Err:        ErrInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func Validation(details map[string]string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Code:       "VALIDATION_ERROR",
		Message:    "validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// Unavailable signals that a feature's backing tables are not present yet
// (workspace mid-migration). Callers usually degrade instead of surfacing it.
func Unavailable(code, message string) *AppError {
	return &AppError{
		Err:        ErrUnavailable,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
	}
}

// Domain error constructors

func EmployeeNotFound() *AppError {
	return NotFoundCode("EMPLOYEE_NOT_FOUND", "employee")
}

func RoleNotFound() *AppError {
	return NotFoundCode("ROLE_NOT_FOUND", "role profile")
}

func TrackNotFound() *AppError {
	return NotFoundCode("TRACK_NOT_FOUND", "track")
}

func RiskCasesNotAvailable() *AppError {
	return Unavailable("RISK_CASES_NOT_AVAILABLE", "risk cases are not available in this workspace")
}

func CannotRemoveLastOwner() *AppError {
	return &AppError{
		Err:        ErrConflict,
		Code:       "CANNOT_REMOVE_LAST_OWNER",
		Message:    "a workspace must keep at least one owner",
		StatusCode: http.StatusConflict,
	}
}

// Is checks if the error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target any) bool {
	return errors.As(err, target)
}
