package identity

import (
	"context"

	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/google/uuid"
)

// UserFilter carries listing parameters for users.
type UserFilter struct {
	shared.Filter
	Role   *Role
	Status *UserStatus
	Region string
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	SaveWithLock(ctx context.Context, user *User, expectedVersion int) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter UserFilter) (*shared.Paginated[*User], error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
