package ports

import (
	"context"

	"github.com/videotube/account-service/internal/core/domain"
)

// UserRepository is the credential store. Every method may also fail with a
// wrapped persistence error.
type UserRepository interface {
	// FindByUsernameOrEmail returns the user whose username or email equals
	// either argument. Empty arguments never match.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create inserts the user and returns it with ID and timestamps set.
	// Returns domain.ErrUserExists on a unique index violation.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// UpdateFields applies the update in one atomic write and returns the
	// resulting document.
	UpdateFields(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error)
}
