package repository

import (
	"context"
	"errors"

	"github.com/medli/medli-api/internal/domain/entity"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already taken")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// Create inserts u and fills ID and timestamps. It returns ErrEmailTaken on a unique violation.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// EmailTakenByOther reports whether email belongs to a user other than exceptID.
	EmailTakenByOther(ctx context.Context, email, exceptID string) (bool, error)
	// Update persists name and email and refreshes UpdatedAt.
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	// DeleteCascade removes the user's health record and then the user in one transaction.
	DeleteCascade(ctx context.Context, id string) error
}
