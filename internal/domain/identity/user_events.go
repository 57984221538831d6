package identity

import "github.com/chedfms/liqtrack/internal/domain/shared"

// Event types for the identity domain
const (
	EventTypeUserCreated     = "identity.user.created"
	EventTypeUserRoleChanged = "identity.user.role_changed"
)

// UserCreatedEvent is raised when a new user account is created.
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, user.ID),
		Username:        user.Username,
		Role:            user.Role,
	}
}

// UserRoleChangedEvent is raised when a user's role changes.
type UserRoleChangedEvent struct {
	shared.BaseDomainEvent
	OldRole Role `json:"old_role"`
	NewRole Role `json:"new_role"`
}

func NewUserRoleChangedEvent(user *User, oldRole, newRole Role) *UserRoleChangedEvent {
	return &UserRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRoleChanged, user.ID),
		OldRole:         oldRole,
		NewRole:         newRole,
	}
}
