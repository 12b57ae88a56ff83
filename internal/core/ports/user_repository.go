package ports

import (
	"context"

	"github.com/teamtask/tasktracker/internal/core/domain"
)

// UserRepository defines persistence operations for identities.
type UserRepository interface {
	// Create assigns the numeric ID and stores the user. Returns
	// domain.ErrUserExists when the username or email is taken.
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
	// ListCreatedBy returns the identities whose creator is creatorID.
	ListCreatedBy(ctx context.Context, creatorID int64) ([]*domain.User, error)
	CountCreatedBy(ctx context.Context, creatorID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}
