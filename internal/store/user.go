package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskroster-api/internal/domain"
)

// UserStore defines the interface for account persistence.
type UserStore interface {
	// Create saves a new account.
	// Returns ErrUsernameExists or ErrPhoneExists when a unique field is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves an account by its unique ID.
	// Returns ErrUserNotFound if the account does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves an account by its username.
	// Returns ErrUserNotFound if the account does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// SetActive activates or deactivates a standard account.
	// Returns ErrUserNotFound if no standard account has that ID.
	SetActive(ctx context.Context, id uuid.UUID, active bool, at time.Time) error

	// ListStandardWithStats returns non-admin accounts with their task counts,
	// oldest first.
	ListStandardWithStats(ctx context.Context, page Page) ([]domain.UserWithStats, error)
}
