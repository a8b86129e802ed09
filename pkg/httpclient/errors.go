package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/Apie237/mern-chatapp/pkg/errors"
)

// errorEnvelope mirrors httputil.Response for the error half of the envelope.
type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// returns an *apperrors.AppError. A body in the standard error envelope keeps
// its code, message and status so callers can show the server's message.
// Anything else becomes a generic error carrying the status.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &apperrors.AppError{
			Code:    apperrors.CodeInternal,
			Message: fmt.Sprintf("%s returned status %d", serviceName, resp.StatusCode),
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("read error body: %w", err),
		}
	}

	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil && env.Error.Message != "" {
		return &apperrors.AppError{
			Code:    env.Error.Code,
			Message: env.Error.Message,
			Status:  resp.StatusCode,
			Err:     sentinelFor(env.Error.Code),
		}
	}

	return &apperrors.AppError{
		Code:    apperrors.CodeInternal,
		Message: fmt.Sprintf("%s returned status %d", serviceName, resp.StatusCode),
		Status:  resp.StatusCode,
		Err:     fmt.Errorf("unstructured error body: %q", truncate(body, 256)),
	}
}

// sentinelFor restores the sentinel behind a known error code so callers can
// use errors.Is on decoded errors.
func sentinelFor(code string) error {
	switch code {
	case apperrors.CodeValidation:
		return apperrors.ErrInvalidInput
	case apperrors.CodeDuplicateEmail:
		return apperrors.ErrDuplicateEmail
	case apperrors.CodeInvalidCredentials:
		return apperrors.ErrInvalidCredentials
	case apperrors.CodeUnauthenticated:
		return apperrors.ErrUnauthenticated
	case apperrors.CodeTooManyAttempts:
		return apperrors.ErrTooManyAttempts
	case apperrors.CodeRateLimited:
		return apperrors.ErrRateLimited
	case apperrors.CodeUpload:
		return apperrors.ErrUpload
	default:
		return apperrors.ErrInternal
	}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
