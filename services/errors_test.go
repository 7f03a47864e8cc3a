package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeNotFound,
				Message: "user not found",
				Err:     errors.New("db error"),
			},
			wantMsg: "not_found: user not found (db error)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same error type",
			err:    NewDomainError(ErrorTypeNotFound, "not found", nil),
			target: ErrNoteNotFound,
			want:   true,
		},
		{
			name:   "different error type",
			err:    NewDomainError(ErrorTypeValidation, "validation", nil),
			target: ErrNoteNotFound,
			want:   false,
		},
		{
			name:   "not a domain error",
			err:    NewDomainError(ErrorTypeNotFound, "not found", nil),
			target: errors.New("regular error"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil)

	err.WithDetail("field", "email").WithDetail("value", "invalid-email")

	assert.Equal(t, "email", err.Details["field"])
	assert.Equal(t, "invalid-email", err.Details["value"])
}

func TestTypeCheckers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
		want    bool
	}{
		{"folder not found", ErrFolderNotFound, IsNotFoundError, true},
		{"wrapped note not found", fmt.Errorf("wrapped: %w", ErrNoteNotFound), IsNotFoundError, true},
		{"validation is not not-found", NewValidation("Folder name required"), IsNotFoundError, false},
		{"nil is not not-found", nil, IsNotFoundError, false},
		{"new validation", NewValidation("Text is too short or empty."), IsValidationError, true},
		{"regular error is not validation", errors.New("regular"), IsValidationError, false},
		{"missing token", ErrUnauthorized, IsUnauthorizedError, true},
		{"invalid credentials", ErrInvalidCredentials, IsUnauthorizedError, true},
		{"rate limit", ErrRateLimitExceeded, IsRateLimitError, true},
		{"duplicate user", ErrDuplicateUser, IsConflictError, true},
		{"wrapped database error", WrapInternal("Failed to create note", errors.New("conn reset")), IsInternalError, true},
		{"chain exhausted", WrapExternal("AI Service is currently busy.", errors.New("exhausted")), IsExternalError, true},
		{"internal is not external", WrapInternal("Failed to list folders", nil), IsExternalError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.checker(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"not found", ErrNoteNotFound, ErrorTypeNotFound},
		{"validation", NewValidation("Text is too short or empty."), ErrorTypeValidation},
		{"rate limit", ErrRateLimitExceeded, ErrorTypeRateLimit},
		{"conflict", ErrDuplicateUser, ErrorTypeConflict},
		{"regular error", errors.New("regular"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorType(tt.err))
		})
	}
}

func TestGetErrorMessage(t *testing.T) {
	err := WrapExternal("AI Service is currently busy.", errors.New("https://provider.example/v1 returned 503"))

	assert.Equal(t, "AI Service is currently busy.", GetErrorMessage(err))
	assert.Equal(t, "AI Service is currently busy.", GetErrorMessage(fmt.Errorf("ctx: %w", err)))
	assert.Empty(t, GetErrorMessage(errors.New("plain")))
}

func TestGetErrorDetails(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil)
	err.WithDetail("field", "email").WithDetail("reason", "invalid format")

	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "email", details["field"])
	assert.Equal(t, "invalid format", details["reason"])

	assert.Nil(t, GetErrorDetails(errors.New("regular error")))
}

func TestWrapInternal(t *testing.T) {
	baseErr := errors.New("database connection failed")
	wrapped := WrapInternal("failed to connect", baseErr)

	assert.True(t, IsInternalError(wrapped))
	assert.Equal(t, baseErr, errors.Unwrap(wrapped))
}

func TestWrapExternal(t *testing.T) {
	baseErr := errors.New("chain exhausted")
	wrapped := WrapExternal("provider request failed", baseErr)

	assert.True(t, IsExternalError(wrapped))
	assert.Equal(t, baseErr, errors.Unwrap(wrapped))
}
