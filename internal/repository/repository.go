package repository

import (
	"context"

	"github.com/emmanuelnwankwo/api-template/internal/domain"
)

// UserRepository defines the persistence contract for user records.
// Implementations report absent records with apperrors.ErrNotFound and
// email-uniqueness violations with apperrors.ErrAlreadyExists.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// UpdatePasswordByEmail replaces the password hash for the account with
	// the given email, returning the number of rows affected (0 or 1).
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) (int64, error)

	// Delete removes a user by their identifier, returning the number of
	// rows affected (0 or 1).
	Delete(ctx context.Context, id string) (int64, error)
}
