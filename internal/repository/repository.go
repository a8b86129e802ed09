package repository

import (
	"context"

	"github.com/Apie237/mern-chatapp/internal/domain"
)

// UserRepository is the credential store. Implementations return
// apperrors.ErrNotFound for missing users and apperrors.ErrAlreadyExists when
// the store's uniqueness constraint on email rejects a create.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by id.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by exact email match.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateProfilePic replaces the user's picture and returns the updated user.
	UpdateProfilePic(ctx context.Context, id, profilePic string) (*domain.User, error)
}
