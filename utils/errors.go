package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Contention sentinels. These are expected outcomes of racing claims and
// drive retry control flow; they are never surfaced as user-facing errors.
var (
	ErrAlreadyClaimed    = errors.New("ambulance already claimed")
	ErrNoBedsAvailable   = errors.New("no beds available")
	ErrInsufficientUnits = errors.New("insufficient blood units")
)

// ErrInvalidTransition signals a milestone called out of order or against a
// terminal emergency. Mapped to a 409 at the HTTP boundary.
var ErrInvalidTransition = errors.New("invalid status transition")

// ServiceError represents a service-level error with context
type ServiceError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
	Details    string `json:"details,omitempty"`
	Cause      error  `json:"-"` // Original error, not exposed in JSON
}

func (e ServiceError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e ServiceError) Unwrap() error {
	return e.Cause
}

// NewServiceError creates a new service error
func NewServiceError(code, message string) error {
	return ServiceError{
		Code:       code,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewServiceErrorWithCause creates a service error that wraps another error
func NewServiceErrorWithCause(code, message string, cause error) error {
	return ServiceError{
		Code:       code,
		Message:    message,
		Cause:      cause,
		StatusCode: http.StatusInternalServerError,
	}
}

// GetServiceError extracts a ServiceError from an error
func GetServiceError(err error) (ServiceError, bool) {
	var serviceErr ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}
	return ServiceError{}, false
}

func NewNotFoundError(resource string) error {
	return ServiceError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func NewBadRequestError(message string) error {
	return ServiceError{
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewConflictError(message string) error {
	return ServiceError{
		Code:       "CONFLICT",
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewForbiddenError(message string) error {
	return ServiceError{
		Code:       "FORBIDDEN",
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewUnauthorizedError(message string) error {
	return ServiceError{
		Code:       "UNAUTHORIZED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewDatabaseError(operation string, cause error) error {
	return ServiceError{
		Code:       "DATABASE_ERROR",
		Message:    fmt.Sprintf("Database operation failed: %s", operation),
		Cause:      cause,
		StatusCode: http.StatusInternalServerError,
	}
}

// Domain-specific constructors
func NewEmergencyNotFoundError() error {
	return NewNotFoundError("Emergency")
}

func NewAmbulanceNotFoundError() error {
	return NewNotFoundError("Ambulance")
}

func NewHospitalNotFoundError() error {
	return NewNotFoundError("Hospital")
}

func NewBloodBankNotFoundError() error {
	return NewNotFoundError("Blood bank")
}

func NewBloodRequestNotFoundError() error {
	return NewNotFoundError("Blood request")
}

func NewInvalidTransitionError(from, to string) error {
	return ServiceError{
		Code:       "INVALID_TRANSITION",
		Message:    fmt.Sprintf("Cannot transition from %s to %s", from, to),
		Cause:      ErrInvalidTransition,
		StatusCode: http.StatusConflict,
	}
}

// IsNotFound reports whether the error maps to a 404.
func IsNotFound(err error) bool {
	serviceErr, ok := GetServiceError(err)
	return ok && serviceErr.StatusCode == http.StatusNotFound
}

// Error code constants
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeConflict   = "CONFLICT"
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeDatabase   = "DATABASE_ERROR"
	ErrCodeRateLimit  = "RATE_LIMIT_EXCEEDED"
)
