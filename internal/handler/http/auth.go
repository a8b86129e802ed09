package http

import (
	"log/slog"
	"net/http"

	"github.com/Apie237/mern-chatapp/internal/auth"
	"github.com/Apie237/mern-chatapp/internal/service"
	apperrors "github.com/Apie237/mern-chatapp/pkg/errors"
	"github.com/Apie237/mern-chatapp/pkg/httputil"
	"github.com/Apie237/mern-chatapp/pkg/validator"
)

// AuthHandler handles HTTP requests for the auth endpoints.
type AuthHandler struct {
	service      *service.AuthService
	secureCookie bool
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler. secureCookie marks the
// session cookie Secure and should be false only in development.
func NewAuthHandler(svc *service.AuthService, secureCookie bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, secureCookie: secureCookie, logger: logger}
}

// --- Request DTOs ---

// Presence and password length are checked by the service so its messages
// reach the client unchanged; tags here only bound the shape.

// SignupRequest is the JSON request body for signup.
type SignupRequest struct {
	FullName   string `json:"fullName" validate:"max=100"`
	Email      string `json:"email" validate:"omitempty,email,max=254"`
	Password   string `json:"password"`
	ProfilePic string `json:"profilePic" validate:"omitempty,max=2048"`
}

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"max=254"`
	Password string `json:"password" validate:"max=1024"`
}

// UpdateProfileRequest is the JSON request body for a profile picture change.
type UpdateProfileRequest struct {
	ProfilePic string `json:"profilePic"`
}

// --- Handlers ---

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	summary, token, err := h.service.Signup(r.Context(), service.SignupInput{
		FullName:   req.FullName,
		Email:      req.Email,
		Password:   req.Password,
		ProfilePic: req.ProfilePic,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	auth.SetSessionCookie(w, token, h.service.SessionTTL(), h.secureCookie)
	httputil.WriteData(w, http.StatusCreated, summary)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	summary, token, err := h.service.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	auth.SetSessionCookie(w, token, h.service.SessionTTL(), h.secureCookie)
	httputil.WriteData(w, http.StatusOK, summary)
}

// Logout handles POST /api/auth/logout. It needs no session and always
// clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	auth.ClearSessionCookie(w, h.secureCookie)
	httputil.WriteData(w, http.StatusOK, httputil.MessageResponse{Message: service.MsgLoggedOut})
}

// UpdateProfile handles PUT /api/auth/update-profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthenticated(), h.logger)
		return
	}

	var req UpdateProfileRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	update, err := h.service.UpdateProfile(r.Context(), user, req.ProfilePic)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, update)
}

// CheckAuth handles GET /api/auth/check
func (h *AuthHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthenticated(), h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, h.service.CheckAuth(r.Context(), user))
}
