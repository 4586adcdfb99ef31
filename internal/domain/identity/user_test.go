package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates active user", func(t *testing.T) {
		u, err := NewUser("Jane.Doe", "JANE@nia.example.com", "s3cretpass", RoleSalesRep)

		require.NoError(t, err)
		assert.Equal(t, "jane.doe", u.Username)
		assert.Equal(t, "jane@nia.example.com", u.Email)
		assert.Equal(t, UserStatusActive, u.Status)
		assert.NotEqual(t, "s3cretpass", u.PasswordHash)
		assert.True(t, u.VerifyPassword("s3cretpass"))
		assert.False(t, u.VerifyPassword("wrong"))
	})

	t.Run("rejects short username", func(t *testing.T) {
		_, err := NewUser("ab", "a@b.co", "s3cretpass", RoleSalesRep)
		assert.Error(t, err)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewUser("jane", "nope", "s3cretpass", RoleSalesRep)
		assert.Error(t, err)
	})

	t.Run("rejects weak password", func(t *testing.T) {
		_, err := NewUser("jane", "a@b.co", "short", RoleSalesRep)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least 8")
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("jane", "a@b.co", "s3cretpass", Role("superuser"))
		assert.Error(t, err)
	})
}

func TestUser_Lockout(t *testing.T) {
	u, err := NewUser("jane", "a@b.co", "s3cretpass", RoleSalesRep)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		u.RecordFailedLogin()
		assert.True(t, u.CanLogin())
	}

	u.RecordFailedLogin() // fifth failure locks
	assert.Equal(t, UserStatusLocked, u.Status)
	assert.False(t, u.CanLogin())

	// lockout expires
	past := time.Now().Add(-time.Minute)
	u.LockedUntil = &past
	assert.True(t, u.CanLogin())

	u.RecordLogin()
	assert.Equal(t, UserStatusActive, u.Status)
	assert.Equal(t, 0, u.FailedAttempts)
	assert.NotNil(t, u.LastLoginAt)
}

func TestUser_ChangePassword(t *testing.T) {
	u, err := NewUser("jane", "a@b.co", "s3cretpass", RoleSalesRep)
	require.NoError(t, err)

	require.NoError(t, u.ChangePassword("an0therpass"))
	assert.True(t, u.VerifyPassword("an0therpass"))
	assert.False(t, u.VerifyPassword("s3cretpass"))

	assert.Error(t, u.ChangePassword("short"))
}

func TestUser_RoleAndStatus(t *testing.T) {
	u, err := NewUser("jane", "a@b.co", "s3cretpass", RoleSalesRep)
	require.NoError(t, err)

	assert.False(t, u.IsAdmin())
	require.NoError(t, u.SetRole(RoleAdmin))
	assert.True(t, u.IsAdmin())

	u.Deactivate()
	assert.False(t, u.CanLogin())
	u.Activate()
	assert.True(t, u.CanLogin())
}
