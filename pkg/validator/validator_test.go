package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupBody struct {
	FullName string `json:"fullName" validate:"max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Password string `json:"password" validate:"max=72"`
}

func TestValidate_Success(t *testing.T) {
	err := Validate(signupBody{FullName: "Ana", Email: "a@x.com", Password: "secret1"})
	assert.NoError(t, err)
}

func TestValidate_EmptyEmailSkipsFormatCheck(t *testing.T) {
	assert.NoError(t, Validate(signupBody{}))
}

func TestValidate_InvalidEmail_UsesJSONFieldName(t *testing.T) {
	err := Validate(signupBody{Email: "not-an-email"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be a valid email address", valErr.Fields()["email"])
	assert.Contains(t, valErr.Error(), "email must be a valid email address")
}

func TestValidate_TooLong(t *testing.T) {
	err := Validate(signupBody{Password: strings.Repeat("x", 73)})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be at most 72 characters", valErr.Fields()["password"])
}

func TestDecodeAndValidate_Success(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"fullName":"Ana","email":"a@x.com","password":"secret1"}`))
	rec := httptest.NewRecorder()

	var body signupBody
	require.NoError(t, DecodeAndValidate(rec, req, &body))
	assert.Equal(t, "Ana", body.FullName)
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"fullName":`))
	rec := httptest.NewRecorder()

	var body signupBody
	err := DecodeAndValidate(rec, req, &body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
