package identity

import (
	"context"
	"testing"
	"time"

	"github.com/chedfms/liqtrack/internal/domain/identity"
	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/chedfms/liqtrack/internal/infrastructure/auth"
	"github.com/chedfms/liqtrack/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SaveWithLock(ctx context.Context, user *identity.User, expectedVersion int) error {
	args := m.Called(ctx, user, expectedVersion)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter identity.UserFilter) (*shared.Paginated[*identity.User], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*identity.User]), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestAuthService(repo *MockUserRepository) *AuthService {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test",
		MaxRefreshCount:        10,
	})
	return NewAuthService(repo, jwtService, DefaultAuthServiceConfig(), zap.NewNop())
}

func newActiveUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()
	user, err := identity.NewUser("hei.ceu", "Password1", role)
	require.NoError(t, err)
	require.NoError(t, user.SetInstitution("08123", "NCR"))
	return user
}

func assertErrCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	domainErr, ok := shared.IsDomainError(err)
	require.True(t, ok, "expected a domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := newActiveUser(t, identity.RoleHEI)

	repo.On("FindByUsername", mock.Anything, "hei.ceu").Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	result, err := svc.Login(context.Background(), LoginInput{Username: "hei.ceu", Password: "Password1"})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, "hei.ceu", result.User.Username)
	assert.Equal(t, "hei", result.User.Role)
	assert.Equal(t, "08123", result.User.InstitutionUII)
	repo.AssertExpectations(t)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)

	repo.On("FindByUsername", mock.Anything, "nobody").Return(nil, shared.ErrNotFound)

	_, err := svc.Login(context.Background(), LoginInput{Username: "nobody", Password: "whatever"})

	assertErrCode(t, err, shared.ErrCodeInvalidCredentials)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := newActiveUser(t, identity.RoleHEI)

	repo.On("FindByUsername", mock.Anything, "hei.ceu").Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	_, err := svc.Login(context.Background(), LoginInput{Username: "hei.ceu", Password: "wrong"})

	assertErrCode(t, err, shared.ErrCodeInvalidCredentials)
	assert.Equal(t, 1, user.FailedAttempts)
}

func TestAuthService_Login_LocksAfterMaxAttempts(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := newActiveUser(t, identity.RoleHEI)

	repo.On("FindByUsername", mock.Anything, "hei.ceu").Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	var err error
	for i := 0; i < 5; i++ {
		_, err = svc.Login(context.Background(), LoginInput{Username: "hei.ceu", Password: "wrong"})
	}

	assertErrCode(t, err, shared.ErrCodeAccountLocked)
	assert.True(t, user.IsLocked())

	// Even the right password is rejected while the lock holds.
	_, err = svc.Login(context.Background(), LoginInput{Username: "hei.ceu", Password: "Password1"})
	assertErrCode(t, err, shared.ErrCodeAccountLocked)
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := newActiveUser(t, identity.RoleAccountant)
	require.NoError(t, user.Deactivate())

	repo.On("FindByUsername", mock.Anything, "hei.ceu").Return(user, nil)

	_, err := svc.Login(context.Background(), LoginInput{Username: "hei.ceu", Password: "Password1"})

	assertErrCode(t, err, shared.ErrCodeAccountDeactivated)
}

func TestAuthService_RefreshToken_Success(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := newActiveUser(t, identity.RoleRegionalCoordinator)

	repo.On("FindByUsername", mock.Anything, "hei.ceu").Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)
	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	login, err := svc.Login(context.Background(), LoginInput{Username: "hei.ceu", Password: "Password1"})
	require.NoError(t, err)

	result, err := svc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: login.RefreshToken})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEqual(t, login.RefreshToken, result.RefreshToken)
}

func TestAuthService_RefreshToken_Invalid(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)

	_, err := svc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: "garbage"})

	assertErrCode(t, err, shared.ErrCodeTokenInvalid)
}

func TestAuthService_RefreshToken_DeactivatedUser(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := newActiveUser(t, identity.RoleHEI)

	repo.On("FindByUsername", mock.Anything, "hei.ceu").Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)
	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	login, err := svc.Login(context.Background(), LoginInput{Username: "hei.ceu", Password: "Password1"})
	require.NoError(t, err)

	require.NoError(t, user.Deactivate())

	_, err = svc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: login.RefreshToken})

	assertErrCode(t, err, shared.ErrCodeAccountDeactivated)
}

func TestAuthService_ChangePassword(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := newActiveUser(t, identity.RoleHEI)

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	err := svc.ChangePassword(context.Background(), ChangePasswordInput{
		UserID:      user.ID,
		OldPassword: "Password1",
		NewPassword: "Password2",
	})

	require.NoError(t, err)
	assert.True(t, user.VerifyPassword("Password2"))
}

func TestAuthService_ChangePassword_WrongOldPassword(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := newActiveUser(t, identity.RoleHEI)

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	err := svc.ChangePassword(context.Background(), ChangePasswordInput{
		UserID:      user.ID,
		OldPassword: "wrong",
		NewPassword: "Password2",
	})

	require.Error(t, err)
	assert.True(t, user.VerifyPassword("Password1"))
}
