package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError carries the HTTP status a route handler should answer with,
// so the controller boundary can translate business failures uniformly.
type ServiceError struct {
	Code    int
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewValidationError flags missing or malformed input (400)
func NewValidationError(message string) *ServiceError {
	return &ServiceError{Code: http.StatusBadRequest, Message: message}
}

// NewBusinessError flags a business-rule violation (400)
func NewBusinessError(message string) *ServiceError {
	return &ServiceError{Code: http.StatusBadRequest, Message: message}
}

// NewAuthError flags missing or invalid credentials (401)
func NewAuthError(message string) *ServiceError {
	return &ServiceError{Code: http.StatusUnauthorized, Message: message}
}

// NewForbiddenError flags a role or ownership mismatch (403)
func NewForbiddenError(message string) *ServiceError {
	return &ServiceError{Code: http.StatusForbidden, Message: message}
}

// NewNotFoundError flags an absent entity (404)
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{Code: http.StatusNotFound, Message: message}
}

// NewInternalError wraps an unexpected failure (500)
func NewInternalError(message string, err error) *ServiceError {
	return &ServiceError{Code: http.StatusInternalServerError, Message: message, Err: err}
}

// StatusOf extracts the HTTP status for err, defaulting to 500
func StatusOf(err error) int {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return http.StatusInternalServerError
}

// MessageOf extracts the user-facing message for err
func MessageOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Message
	}
	return "Internal server error"
}
