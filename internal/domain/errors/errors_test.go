package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name: "with wrapped error",
			err: &DomainError{
				Code:    "lookup_failed",
				Message: "employee lookup failed",
				Err:     errors.New("upstream timeout"),
			},
			expected: "employee lookup failed: upstream timeout",
		},
		{
			name: "without wrapped error",
			err: &DomainError{
				Code:    "invalid_state",
				Message: "cannot load more transactions",
				Err:     nil,
			},
			expected: "cannot load more transactions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	domainErr := NewDomainError("test", "test message", ErrFilterActive)

	assert.True(t, errors.Is(domainErr, ErrFilterActive))
	assert.Equal(t, ErrFilterActive, domainErr.Unwrap())
}

func TestValidationError_Error(t *testing.T) {
	err := NewValidationError("employee_id", "must not contain spaces")

	assert.Equal(t, "validation failed for field employee_id: must not contain spaces", err.Error())
}

func TestUpstreamError_MatchesNetworkFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      *UpstreamError
		expected string
	}{
		{"status code", NewUpstreamError("transactions", 503, nil), "upstream transactions: status 503"},
		{"transport error", NewUpstreamError("employees", 0, context.DeadlineExceeded), "upstream employees: context deadline exceeded"},
		{"bare", NewUpstreamError("employees", 0, nil), "upstream employees failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("fetch page: %w", tt.err)

			assert.True(t, errors.Is(wrapped, ErrNetworkFailure))
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestUpstreamError_KeepsCause(t *testing.T) {
	err := NewUpstreamError("employee_transactions", 404, ErrEmployeeNotFound)

	assert.True(t, errors.Is(err, ErrEmployeeNotFound))
	assert.True(t, errors.Is(err, ErrNetworkFailure))

	var upstream *UpstreamError
	assert.True(t, errors.As(fmt.Errorf("lookup: %w", err), &upstream))
	assert.Equal(t, 404, upstream.StatusCode)
}
