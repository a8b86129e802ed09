package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Apie237/mern-chatapp/internal/domain"
	"github.com/Apie237/mern-chatapp/pkg/database"
	apperrors "github.com/Apie237/mern-chatapp/pkg/errors"
)

const uniqueViolation = "23505"

const userColumns = `id, full_name, email, password_hash, profile_pic, created_at, updated_at`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A duplicate email is reported as
// apperrors.ErrAlreadyExists by the users_email_key index.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (err error) {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	ctx, end := database.TraceQuery(ctx, "CreateUser", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		u.ID,
		u.FullName,
		u.Email,
		u.PasswordHash,
		u.ProfilePic,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrAlreadyExists, "insert user")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.queryUser(ctx, "GetUserByID", query, id)
}

// GetByEmail retrieves a user by exact email match.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.queryUser(ctx, "GetUserByEmail", query, email)
}

// UpdateProfilePic sets profile_pic and bumps updated_at in one statement.
func (r *UserRepository) UpdateProfilePic(ctx context.Context, id, profilePic string) (*domain.User, error) {
	query := `
		UPDATE users
		SET profile_pic = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + userColumns
	return r.queryUser(ctx, "UpdateUserProfilePic", query, profilePic, id)
}

func (r *UserRepository) queryUser(ctx context.Context, op, query string, args ...any) (_ *domain.User, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	var u domain.User
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.PasswordHash,
		&u.ProfilePic,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
