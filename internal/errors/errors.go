package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode defines the error code type
type ErrorCode int

// System error codes
const (
	// Validation errors (1000-1099)
	ErrValidation ErrorCode = 1000

	// Not-found errors (1100-1199)
	ErrNotFound ErrorCode = 1100

	// Upstream/dependency errors (1200-1299)
	ErrExternalUnavailable ErrorCode = 1200
	ErrUnsupportedMedia    ErrorCode = 1201

	// Throttling errors (1300-1399)
	ErrRateLimited ErrorCode = 1300

	// Timeout errors (1400-1499)
	ErrTimeoutInternal ErrorCode = 1400
	ErrTimeoutExternal ErrorCode = 1401

	// Catch-all (1900-1999)
	ErrInternalServer ErrorCode = 1900
)

// AppError defines the application error structure
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPCode   int            `json:"-"`
	RetryAfter int            `json:"-"` // seconds; only meaningful for ErrRateLimited
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("error code: %d, error message: %s", e.Code, e.Message)
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// NewValidationError creates a 400 error for a malformed or out-of-range request
func NewValidationError(message string) *AppError {
	return &AppError{Code: ErrValidation, Message: message, HTTPCode: http.StatusBadRequest}
}

// NewNotFoundError creates a 404 error for a missing entity (office, category, listing)
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: ErrNotFound, Message: message, HTTPCode: http.StatusNotFound}
}

// NewExternalUnavailableError creates a 503 error for a dependency that is
// reachable but currently failing (LLM provider, speech provider, store).
func NewExternalUnavailableError(message string) *AppError {
	return &AppError{Code: ErrExternalUnavailable, Message: message, HTTPCode: http.StatusServiceUnavailable}
}

// NewUnsupportedMediaError creates a 415-shaped error for voice uploads that
// fail extension/size validation before ever reaching the speech provider.
func NewUnsupportedMediaError(message string) *AppError {
	return &AppError{Code: ErrUnsupportedMedia, Message: message, HTTPCode: http.StatusUnsupportedMediaType}
}

// NewRateLimitedError creates a 429 error carrying a Retry-After hint
func NewRateLimitedError(message string, retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       ErrRateLimited,
		Message:    message,
		HTTPCode:   http.StatusTooManyRequests,
		RetryAfter: retryAfterSeconds,
	}
}

// NewTimeoutError creates a 504; external selects the external-timeout code
// instead of the internal one. The message is used as given.
func NewTimeoutError(message string, external bool) *AppError {
	code := ErrTimeoutInternal
	if external {
		code = ErrTimeoutExternal
	}
	return &AppError{Code: code, Message: message, HTTPCode: http.StatusGatewayTimeout}
}

// NewInternalServerError creates a catch-all 500
func NewInternalServerError(message string) *AppError {
	if message == "" {
		message = "internal server error"
	}
	return &AppError{Code: ErrInternalServer, Message: message, HTTPCode: http.StatusInternalServerError}
}

// IsAppError checks if the error is an AppError type
func IsAppError(err error) (*AppError, bool) {
	appErr, ok := err.(*AppError)
	return appErr, ok
}
