package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared by the store adapters and the auth service.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrRateLimited        = errors.New("rate limited")
	ErrUpload             = errors.New("upload failed")
	ErrInternal           = errors.New("internal error")
)

// Error codes rendered in the JSON error envelope.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthenticated    = "UNAUTHORIZED"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS"
	CodeRateLimited        = "RATE_LIMITED"
	CodeUpload             = "UPLOAD_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation creates a 400 error for missing or malformed input. The message
// is shown to the user as-is.
func Validation(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// DuplicateEmail creates the 400 error returned when signup reuses an email.
func DuplicateEmail() *AppError {
	return &AppError{
		Code:    CodeDuplicateEmail,
		Message: "Email already exists",
		Status:  http.StatusBadRequest,
		Err:     ErrDuplicateEmail,
	}
}

// InvalidCredentials creates the 400 login failure. It is identical for an
// unknown email and a wrong password.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:    CodeInvalidCredentials,
		Message: "Invalid credentials",
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidCredentials,
	}
}

// Unauthenticated creates the 401 error. The message never says why the
// session was rejected.
func Unauthenticated() *AppError {
	return &AppError{
		Code:    CodeUnauthenticated,
		Message: "Unauthorized",
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthenticated,
	}
}

// TooManyAttempts creates a 429 error for throttled logins.
func TooManyAttempts() *AppError {
	return &AppError{
		Code:    CodeTooManyAttempts,
		Message: "Too many login attempts, try again later",
		Status:  http.StatusTooManyRequests,
		Err:     ErrTooManyAttempts,
	}
}

// RateLimited creates the 429 returned when one client sends too many
// requests, whichever account they target.
func RateLimited() *AppError {
	return &AppError{
		Code:    CodeRateLimited,
		Message: "Too many requests, try again later",
		Status:  http.StatusTooManyRequests,
		Err:     ErrRateLimited,
	}
}

// Upload wraps a failure from the image host. Client-caused failures (the
// host rejected the image) become 400; everything else is a 500 with a
// generic message.
func Upload(err error, clientCaused bool) *AppError {
	if clientCaused {
		return &AppError{
			Code:    CodeUpload,
			Message: "Invalid profile picture",
			Status:  http.StatusBadRequest,
			Err:     errors.Join(ErrUpload, err),
		}
	}
	return &AppError{
		Code:    CodeUpload,
		Message: "Failed to upload profile picture",
		Status:  http.StatusInternalServerError,
		Err:     errors.Join(ErrUpload, err),
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}
