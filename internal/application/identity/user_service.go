package identity

import (
	"context"

	"github.com/chedfms/liqtrack/internal/domain/identity"
	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles user management operations. All operations are
// admin-gated at the interface layer; the service enforces the role
// rules that go beyond simple capability checks.
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Create creates a new user account
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserInfo, error) {
	s.logger.Info("Creating new user",
		zap.String("username", req.Username),
		zap.String("role", req.Role))

	role, err := identity.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		s.logger.Error("Failed to check username existence", zap.Error(err))
		return nil, shared.NewDomainError(shared.ErrCodeInternal, "Failed to check username availability")
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrCodeDuplicateUsername, "Username already exists")
	}

	user, err := identity.NewUser(req.Username, req.Password, role)
	if err != nil {
		return nil, err
	}

	if req.Email != "" {
		if err := user.SetEmail(req.Email); err != nil {
			return nil, err
		}
	}
	if req.DisplayName != "" {
		if err := user.SetDisplayName(req.DisplayName); err != nil {
			return nil, err
		}
	}
	if req.InstitutionUII != "" || req.Region != "" {
		if err := user.SetInstitution(req.InstitutionUII, req.Region); err != nil {
			return nil, err
		}
	}

	// An HEI account must be bound to an institution or every record
	// lookup would come back empty for it.
	if role == identity.RoleHEI && user.InstitutionUII == "" {
		return nil, shared.NewValidationError("HEI accounts require an institution UII")
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	info := ToUserInfo(user)
	return &info, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, shared.NewNotFoundError("User not found")
	}

	info := ToUserInfo(user)
	return &info, nil
}

// Update modifies a user's profile fields
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, shared.NewNotFoundError("User not found")
	}
	expectedVersion := user.Version

	if req.Email != nil {
		if err := user.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.DisplayName != nil {
		if err := user.SetDisplayName(*req.DisplayName); err != nil {
			return nil, err
		}
	}
	if req.InstitutionUII != nil || req.Region != nil {
		uii := user.InstitutionUII
		region := user.Region
		if req.InstitutionUII != nil {
			uii = *req.InstitutionUII
		}
		if req.Region != nil {
			region = *req.Region
		}
		if err := user.SetInstitution(uii, region); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.SaveWithLock(ctx, user, expectedVersion); err != nil {
		return nil, err
	}

	info := ToUserInfo(user)
	return &info, nil
}

// ChangeRole assigns a new role to a user
func (s *UserService) ChangeRole(ctx context.Context, id uuid.UUID, req ChangeRoleRequest) (*UserInfo, error) {
	role, err := identity.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, shared.NewNotFoundError("User not found")
	}
	expectedVersion := user.Version

	if err := user.ChangeRole(role); err != nil {
		return nil, err
	}

	if err := s.userRepo.SaveWithLock(ctx, user, expectedVersion); err != nil {
		return nil, err
	}

	s.logger.Info("User role changed",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(role)))

	info := ToUserInfo(user)
	return &info, nil
}

// ResetPassword sets a new password without requiring the old one
func (s *UserService) ResetPassword(ctx context.Context, id uuid.UUID, req ResetPasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return shared.NewNotFoundError("User not found")
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to reset password", zap.Error(err))
		return err
	}

	s.logger.Info("User password reset", zap.String("user_id", user.ID.String()))

	return nil
}

// Activate re-enables a deactivated or locked account
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, shared.NewNotFoundError("User not found")
	}

	if err := user.Activate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	info := ToUserInfo(user)
	return &info, nil
}

// Deactivate disables an account
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, shared.NewNotFoundError("User not found")
	}

	if err := user.Deactivate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User deactivated", zap.String("user_id", user.ID.String()))

	info := ToUserInfo(user)
	return &info, nil
}

// List returns a paginated list of users
func (s *UserService) List(ctx context.Context, filter ListUsersFilter) (*UserListResult, error) {
	domainFilter := identity.UserFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			Search:   filter.Search,
		},
		Region: filter.Region,
	}
	domainFilter.Normalize()

	if filter.Role != "" {
		role, err := identity.ParseRole(filter.Role)
		if err != nil {
			return nil, err
		}
		domainFilter.Role = &role
	}
	if filter.Status != "" {
		status := identity.UserStatus(filter.Status)
		domainFilter.Status = &status
	}

	page, err := s.userRepo.List(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]UserInfo, len(page.Items))
	for i, u := range page.Items {
		items[i] = ToUserInfo(u)
	}

	return &UserListResult{
		Items:    items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}
