package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apie237/mern-chatapp/internal/auth"
	"github.com/Apie237/mern-chatapp/internal/domain"
	"github.com/Apie237/mern-chatapp/internal/imagehost"
	"github.com/Apie237/mern-chatapp/internal/password"
	"github.com/Apie237/mern-chatapp/internal/repository"
	apperrors "github.com/Apie237/mern-chatapp/pkg/errors"
)

// User-facing messages.
const (
	MsgFillAllFields     = "Please fill all fields"
	MsgPasswordTooShort  = "Password must be at least 6 characters"
	MsgPasswordTooLong   = "Password must be at most 72 bytes"
	MsgProvideProfilePic = "Please provide a profile picture"
	MsgLoggedOut         = "Logged out successfully"
)

// Default timeouts applied when Config leaves them zero.
const (
	DefaultStoreTimeout  = 5 * time.Second
	DefaultUploadTimeout = 20 * time.Second
)

// EventPublisher publishes auth domain events.
type EventPublisher interface {
	PublishUserSignedUp(ctx context.Context, user *domain.User) error
	PublishProfileUpdated(ctx context.Context, update *domain.ProfileUpdate) error
}

// ImageUploader stores a profile picture with the image host.
type ImageUploader interface {
	Upload(ctx context.Context, data string) (*imagehost.UploadResult, error)
}

// LoginThrottle limits failed logins per email.
type LoginThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// Config holds the service's time bounds.
type Config struct {
	StoreTimeout  time.Duration
	UploadTimeout time.Duration
}

// SignupInput holds the parameters for creating an account.
type SignupInput struct {
	FullName   string
	Email      string
	Password   string
	ProfilePic string
}

// LoginInput holds the parameters for logging in.
type LoginInput struct {
	Email    string
	Password string
}

// AuthService implements signup, login, logout, profile update and session
// checks.
type AuthService struct {
	users    repository.UserRepository
	hasher   *password.Hasher
	tokens   *auth.TokenIssuer
	uploader ImageUploader
	events   EventPublisher
	throttle LoginThrottle
	cfg      Config
	logger   *slog.Logger

	// dummyHash is compared against when the email is unknown so both
	// failure paths pay for one bcrypt comparison.
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new auth service. events and throttle may be nil.
func NewAuthService(
	users repository.UserRepository,
	hasher *password.Hasher,
	tokens *auth.TokenIssuer,
	uploader ImageUploader,
	events EventPublisher,
	throttle LoginThrottle,
	cfg Config,
	logger *slog.Logger,
) *AuthService {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = DefaultStoreTimeout
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = DefaultUploadTimeout
	}
	if events == nil {
		events = nopEvents{}
	}
	if throttle == nil {
		throttle = nopThrottle{}
	}
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		uploader: uploader,
		events:   events,
		throttle: throttle,
		cfg:      cfg,
		logger:   logger,
	}
}

// SessionTTL is the lifetime of issued session tokens.
func (s *AuthService) SessionTTL() time.Duration {
	return s.tokens.TTL()
}

// Signup creates an account and returns its summary and a session token.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (_ *domain.IdentitySummary, _ string, err error) {
	defer func() { observe("signup", err) }()

	if input.FullName == "" || input.Email == "" || input.Password == "" {
		return nil, "", apperrors.Validation(MsgFillAllFields)
	}
	switch password.ValidatePlaintext(input.Password) {
	case password.ErrTooShort:
		return nil, "", apperrors.Validation(MsgPasswordTooShort)
	case password.ErrTooLong:
		return nil, "", apperrors.Validation(MsgPasswordTooLong)
	}

	if _, err := s.findByEmail(ctx, input.Email); err == nil {
		return nil, "", apperrors.DuplicateEmail()
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", apperrors.Internal(fmt.Errorf("lookup user by email: %w", err))
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, "", apperrors.Internal(err)
	}

	profilePic := input.ProfilePic
	if profilePic == "" {
		profilePic = domain.DefaultProfilePic
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: hash,
		ProfilePic:   profilePic,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	err = s.users.Create(storeCtx, user)
	cancel()
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, "", apperrors.DuplicateEmail()
		}
		return nil, "", apperrors.Internal(fmt.Errorf("create user: %w", err))
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", apperrors.Internal(err)
	}

	if err := s.events.PublishUserSignedUp(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user_signed_up event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user signed up", slog.String("user_id", user.ID))
	return user.Summary(), token, nil
}

// Login verifies credentials and returns the user's summary and a session
// token. Unknown emails and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (_ *domain.IdentitySummary, _ string, err error) {
	defer func() { observe("login", err) }()

	if input.Email == "" || input.Password == "" {
		return nil, "", apperrors.Validation(MsgFillAllFields)
	}

	allowed, err := s.throttle.Allow(ctx, input.Email)
	if err != nil {
		s.logger.WarnContext(ctx, "login throttle unavailable", slog.String("error", err.Error()))
		allowed = true
	}
	if !allowed {
		return nil, "", apperrors.TooManyAttempts()
	}

	if password.TooShort(input.Password) {
		return nil, "", s.loginFailed(ctx, input.Email)
	}

	user, err := s.findByEmail(ctx, input.Email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", apperrors.Internal(fmt.Errorf("lookup user by email: %w", err))
		}
		s.hasher.Verify(input.Password, s.unknownUserHash())
		return nil, "", s.loginFailed(ctx, input.Email)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, "", s.loginFailed(ctx, input.Email)
	}

	if err := s.throttle.Reset(ctx, input.Email); err != nil {
		s.logger.WarnContext(ctx, "failed to reset login throttle", slog.String("error", err.Error()))
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", apperrors.Internal(err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))
	return user.Summary(), token, nil
}

func (s *AuthService) loginFailed(ctx context.Context, email string) error {
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.logger.WarnContext(ctx, "failed to record login failure", slog.String("error", err.Error()))
	}
	return apperrors.InvalidCredentials()
}

func (s *AuthService) unknownUserHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

// Logout ends the caller's session. Tokens are not revoked server-side; the
// handler clears the cookie.
func (s *AuthService) Logout(ctx context.Context) error {
	observe("logout", nil)
	s.logger.InfoContext(ctx, "user logged out")
	return nil
}

// UpdateProfile uploads profilePic to the image host and stores its URL on user.
func (s *AuthService) UpdateProfile(ctx context.Context, user *domain.User, profilePic string) (_ *domain.ProfileUpdate, err error) {
	defer func() { observe("update_profile", err) }()

	if profilePic == "" {
		return nil, apperrors.Validation(MsgProvideProfilePic)
	}

	uploadCtx, cancel := context.WithTimeout(ctx, s.cfg.UploadTimeout)
	result, err := s.uploader.Upload(uploadCtx, profilePic)
	cancel()
	if err != nil {
		return nil, apperrors.Upload(err, imagehost.IsClientCaused(err))
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	updated, err := s.users.UpdateProfilePic(storeCtx, user.ID, result.SecureURL)
	cancel()
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthenticated()
		}
		return nil, apperrors.Internal(fmt.Errorf("update profile pic: %w", err))
	}

	update := &domain.ProfileUpdate{UserID: updated.ID, ProfilePic: updated.ProfilePic}
	if err := s.events.PublishProfileUpdated(ctx, update); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish profile_updated event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "profile picture updated", slog.String("user_id", user.ID))
	return update, nil
}

// CheckAuth returns the summary of an already verified user.
func (s *AuthService) CheckAuth(_ context.Context, user *domain.User) *domain.IdentitySummary {
	observe("check_auth", nil)
	return user.Summary()
}

// Authenticate resolves a session token to its user. Invalid tokens and
// deleted users yield Unauthenticated; store failures yield Internal.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, apperrors.Unauthenticated()
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.Unauthenticated()
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	user, err := s.users.GetByID(storeCtx, claims.UserID())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthenticated()
		}
		return nil, apperrors.Internal(fmt.Errorf("lookup session user: %w", err))
	}
	return user, nil
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.users.GetByEmail(ctx, email)
}

type nopEvents struct{}

func (nopEvents) PublishUserSignedUp(context.Context, *domain.User) error { return nil }

func (nopEvents) PublishProfileUpdated(context.Context, *domain.ProfileUpdate) error { return nil }

type nopThrottle struct{}

func (nopThrottle) Allow(context.Context, string) (bool, error) { return true, nil }

func (nopThrottle) RecordFailure(context.Context, string) error { return nil }

func (nopThrottle) Reset(context.Context, string) error { return nil }
