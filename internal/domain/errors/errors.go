package errors

import (
	"errors"
	"fmt"
)

var (
	// Upstream errors
	ErrNetworkFailure   = errors.New("upstream request failed")
	ErrEmployeeNotFound = errors.New("employee not found")

	// Store errors
	ErrConcurrentFetchRejected = errors.New("fetch rejected: store is already loading")

	// View errors
	ErrInvalidSelection = errors.New("invalid employee selection")
	ErrFilterActive     = errors.New("view more is unavailable while an employee filter is active")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidInput     = errors.New("invalid input")
)

// DomainError wraps errors with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// UpstreamError describes a failed call to one of the upstream endpoints.
// It always matches ErrNetworkFailure via errors.Is.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream %s: status %d", e.Endpoint, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("upstream %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("upstream %s failed", e.Endpoint)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNetworkFailure}
	}
	return []error{ErrNetworkFailure, e.Err}
}

// NewUpstreamError creates a new upstream error
func NewUpstreamError(endpoint string, status int, err error) *UpstreamError {
	return &UpstreamError{Endpoint: endpoint, StatusCode: status, Err: err}
}
