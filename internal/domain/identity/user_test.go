package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestUser(t *testing.T, role Role) *User {
	user, err := NewUser("testuser", "password123", role)
	require.NoError(t, err)
	return user
}

func TestNewUser(t *testing.T) {
	t.Run("creates active user", func(t *testing.T) {
		user, err := NewUser("Focal.Person", "password123", RoleHEI)
		require.NoError(t, err)

		assert.Equal(t, "focal.person", user.Username)
		assert.Equal(t, RoleHEI, user.Role)
		assert.Equal(t, UserStatusActive, user.Status)
		assert.True(t, user.VerifyPassword("password123"))
		assert.False(t, user.VerifyPassword("wrong"))
		assert.Len(t, user.GetDomainEvents(), 1)
	})

	t.Run("rejects short username", func(t *testing.T) {
		_, err := NewUser("ab", "password123", RoleHEI)
		assert.Error(t, err)
	})

	t.Run("rejects weak password", func(t *testing.T) {
		_, err := NewUser("testuser", "short1", RoleHEI)
		assert.Error(t, err)

		_, err = NewUser("testuser", "passwordonly", RoleHEI)
		assert.Error(t, err)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("testuser", "password123", Role("auditor"))
		assert.Error(t, err)
	})
}

func TestUser_ChangeRole(t *testing.T) {
	user := createTestUser(t, RoleHEI)

	require.NoError(t, user.ChangeRole(RoleRegionalCoordinator))
	assert.Equal(t, RoleRegionalCoordinator, user.Role)
	assert.True(t, user.Can(CapEndorseToAccounting))

	assert.Error(t, user.ChangeRole(Role("bogus")))
	assert.Equal(t, RoleRegionalCoordinator, user.Role)
}

func TestUser_ChangePassword(t *testing.T) {
	user := createTestUser(t, RoleHEI)

	err := user.ChangePassword("wrongpass1", "newpassword1")
	assert.Error(t, err)

	err = user.ChangePassword("password123", "newpassword1")
	require.NoError(t, err)
	assert.True(t, user.VerifyPassword("newpassword1"))
}

func TestUser_SetInstitution(t *testing.T) {
	user := createTestUser(t, RoleHEI)

	require.NoError(t, user.SetInstitution("08001", "Region VIII"))
	assert.Equal(t, "08001", user.InstitutionUII)
	assert.Equal(t, "Region VIII", user.Region)
}

func TestUser_LoginLockout(t *testing.T) {
	user := createTestUser(t, RoleHEI)

	assert.False(t, user.RecordLoginFailure(3, time.Hour))
	assert.False(t, user.RecordLoginFailure(3, time.Hour))
	assert.True(t, user.CanLogin())

	assert.True(t, user.RecordLoginFailure(3, time.Hour))
	assert.True(t, user.IsLocked())
	assert.False(t, user.CanLogin())

	require.NoError(t, user.Activate())
	assert.True(t, user.CanLogin())
	assert.Equal(t, 0, user.FailedAttempts)
}

func TestUser_LockExpiry(t *testing.T) {
	user := createTestUser(t, RoleHEI)
	user.RecordLoginFailure(1, -time.Minute)

	assert.False(t, user.IsLocked(), "expired lock no longer blocks login")
	assert.True(t, user.CanLogin())
}

func TestUser_Deactivate(t *testing.T) {
	user := createTestUser(t, RoleAccountant)

	require.NoError(t, user.Deactivate())
	assert.False(t, user.CanLogin())
	assert.Error(t, user.Deactivate())

	require.NoError(t, user.Activate())
	assert.True(t, user.CanLogin())
}

func TestUser_RecordLoginSuccess(t *testing.T) {
	user := createTestUser(t, RoleHEI)
	user.FailedAttempts = 2

	user.RecordLoginSuccess()
	assert.Equal(t, 0, user.FailedAttempts)
	require.NotNil(t, user.LastLoginAt)
}
