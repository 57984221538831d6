package identity

import (
	"context"
	"testing"

	"github.com/chedfms/liqtrack/internal/domain/identity"
	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestUserService(repo *MockUserRepository) *UserService {
	return NewUserService(repo, zap.NewNop())
}

func TestUserService_Create(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestUserService(repo)

	repo.On("ExistsByUsername", mock.Anything, "rc.ncr").Return(false, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

	info, err := svc.Create(context.Background(), CreateUserRequest{
		Username:    "rc.ncr",
		Password:    "Password1",
		Email:       "rc@example.gov.ph",
		DisplayName: "NCR Coordinator",
		Role:        "regional_coordinator",
		Region:      "NCR",
	})

	require.NoError(t, err)
	assert.Equal(t, "rc.ncr", info.Username)
	assert.Equal(t, "regional_coordinator", info.Role)
	assert.Equal(t, "NCR", info.Region)
	assert.Contains(t, info.Capabilities, "liquidation:endorse_to_accounting")
	repo.AssertExpectations(t)
}

func TestUserService_Create_DuplicateUsername(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestUserService(repo)

	repo.On("ExistsByUsername", mock.Anything, "rc.ncr").Return(true, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "rc.ncr",
		Password: "Password1",
		Role:     "regional_coordinator",
	})

	assertErrCode(t, err, shared.ErrCodeDuplicateUsername)
}

func TestUserService_Create_UnknownRole(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestUserService(repo)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "someone",
		Password: "Password1",
		Role:     "auditor",
	})

	assertErrCode(t, err, shared.ErrCodeValidation)
}

func TestUserService_Create_HEIRequiresInstitution(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestUserService(repo)

	repo.On("ExistsByUsername", mock.Anything, "hei.ceu").Return(false, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "hei.ceu",
		Password: "Password1",
		Role:     "hei",
	})

	assertErrCode(t, err, shared.ErrCodeValidation)
}

func TestUserService_ChangeRole(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestUserService(repo)
	user := newActiveUser(t, identity.RoleHEI)
	originalVersion := user.Version

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("SaveWithLock", mock.Anything, user, originalVersion).Return(nil)

	info, err := svc.ChangeRole(context.Background(), user.ID, ChangeRoleRequest{Role: "accountant"})

	require.NoError(t, err)
	assert.Equal(t, "accountant", info.Role)
	assert.Contains(t, info.Capabilities, "liquidation:endorse_to_coa")
	repo.AssertExpectations(t)
}

func TestUserService_ChangeRole_ConcurrencyConflict(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestUserService(repo)
	user := newActiveUser(t, identity.RoleHEI)

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("SaveWithLock", mock.Anything, user, mock.Anything).
		Return(shared.NewConcurrencyConflictError("User was modified by another request"))

	_, err := svc.ChangeRole(context.Background(), user.ID, ChangeRoleRequest{Role: "accountant"})

	assertErrCode(t, err, shared.ErrCodeConcurrencyConflict)
}

func TestUserService_DeactivateAndActivate(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestUserService(repo)
	user := newActiveUser(t, identity.RoleHEI)

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	info, err := svc.Deactivate(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "deactivated", info.Status)

	info, err = svc.Activate(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", info.Status)
}

func TestUserService_ResetPassword(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestUserService(repo)
	user := newActiveUser(t, identity.RoleHEI)

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	err := svc.ResetPassword(context.Background(), user.ID, ResetPasswordRequest{NewPassword: "Password9"})

	require.NoError(t, err)
	assert.True(t, user.VerifyPassword("Password9"))
}

func TestUserService_List(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestUserService(repo)
	user := newActiveUser(t, identity.RoleHEI)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f identity.UserFilter) bool {
		return f.Role != nil && *f.Role == identity.RoleHEI && f.Page == 1
	})).Return(&shared.Paginated[*identity.User]{
		Items:    []*identity.User{user},
		Total:    1,
		Page:     1,
		PageSize: 20,
	}, nil)

	result, err := svc.List(context.Background(), ListUsersFilter{Role: "hei"})

	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, int64(1), result.Total)
}
