package apperrors

import (
	"net/http"
)

// AppError carries the HTTP status a failure maps to. The global error
// middleware turns it into the JSON envelope; handlers never build status
// codes by hand.
type AppError struct {
	Code    int
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode builds an AppError with an explicit status code.
func WithCode(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// InvalidRequestError wraps a normalizer or binding rejection (400).
func InvalidRequestError(message string) *AppError {
	return WithCode(http.StatusBadRequest, message)
}

// InvalidRequestErrorDefault is the generic 400.
func InvalidRequestErrorDefault() *AppError {
	return WithCode(http.StatusBadRequest, "Parameter verification failed")
}

// NotFoundError covers missing codes on resolve and stats lookups (404).
func NotFoundError(message string) *AppError {
	return WithCode(http.StatusNotFound, message)
}

// SystemError covers storage failures and allocation exhaustion (500).
func SystemError(message string) *AppError {
	return WithCode(http.StatusInternalServerError, message)
}

// SystemErrorDefault is the generic 500.
func SystemErrorDefault() *AppError {
	return WithCode(http.StatusInternalServerError, "System error")
}
