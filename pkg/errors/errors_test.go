package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrDuplicateEmail,
		ErrInvalidCredentials, ErrUnauthenticated, ErrTooManyAttempts,
		ErrUpload, ErrInternal,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("db connection lost")
	appErr := Internal(inner)
	assert.Contains(t, appErr.Error(), CodeInternal)
	assert.Contains(t, appErr.Error(), "db connection lost")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "X", Message: "y"}
	assert.Equal(t, "X: y", appErr.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	assert.True(t, errors.Is(Validation("bad"), ErrInvalidInput))
	assert.True(t, errors.Is(DuplicateEmail(), ErrDuplicateEmail))
	assert.True(t, errors.Is(InvalidCredentials(), ErrInvalidCredentials))
	assert.True(t, errors.Is(Unauthenticated(), ErrUnauthenticated))
}

// --- Constructors ---

func TestConstructors_StatusAndMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     *AppError
		status  int
		code    string
		message string
	}{
		{"validation", Validation("Please fill all fields"), http.StatusBadRequest, CodeValidation, "Please fill all fields"},
		{"duplicate email", DuplicateEmail(), http.StatusBadRequest, CodeDuplicateEmail, "Email already exists"},
		{"invalid credentials", InvalidCredentials(), http.StatusBadRequest, CodeInvalidCredentials, "Invalid credentials"},
		{"unauthenticated", Unauthenticated(), http.StatusUnauthorized, CodeUnauthenticated, "Unauthorized"},
		{"too many attempts", TooManyAttempts(), http.StatusTooManyRequests, CodeTooManyAttempts, "Too many login attempts, try again later"},
		{"rate limited", RateLimited(), http.StatusTooManyRequests, CodeRateLimited, "Too many requests, try again later"},
		{"internal", Internal(fmt.Errorf("boom")), http.StatusInternalServerError, CodeInternal, "Internal server error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, tc.err.Status)
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.message, tc.err.Message)
		})
	}
}

func TestUpload_ClientCausedIsBadRequest(t *testing.T) {
	err := Upload(fmt.Errorf("host said 400"), true)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrUpload))
}

func TestUpload_ServerCausedIsInternal(t *testing.T) {
	inner := fmt.Errorf("dial tcp: connection refused")
	err := Upload(inner, false)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.True(t, errors.Is(err, ErrUpload))
	assert.True(t, errors.Is(err, inner))
	assert.NotContains(t, err.Message, "connection refused")
}

// --- HTTPStatus ---

func TestWrap(t *testing.T) {
	err := Wrap(ErrNotFound, "get user")
	assert.Equal(t, "get user: resource not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
}
