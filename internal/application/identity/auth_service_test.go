package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nia/backend/internal/domain/identity"
	"github.com/nia/backend/internal/domain/shared"
	"github.com/nia/backend/internal/infrastructure/auth"
	"github.com/nia/backend/internal/infrastructure/config"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
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

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, u *identity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-unit-tests",
		RefreshSecret:          "test-refresh-secret-for-unit-tests",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "nia-test",
		MaxRefreshCount:        10,
	})
}

func newTestAuthService(repo identity.UserRepository) *AuthService {
	return NewAuthService(repo, newTestJWTService(), auth.NewInMemoryTokenBlacklist(), zap.NewNop())
}

func createTestUser(t *testing.T) *identity.User {
	t.Helper()
	user, err := identity.NewUser("testuser", "test@example.com", "Password123", identity.RoleSalesRep)
	require.NoError(t, err)
	return user
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := createTestUser(t)

	repo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	repo.On("Save", mock.Anything, user).Return(nil)

	result, err := svc.Login(context.Background(), LoginInput{
		Username: "testuser",
		Password: "Password123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, "testuser", result.User.Username)
	assert.NotNil(t, user.LastLoginAt)
	repo.AssertExpectations(t)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)

	repo.On("FindByUsername", mock.Anything, "nobody").Return(nil, errors.New("not found"))

	_, err := svc.Login(context.Background(), LoginInput{Username: "nobody", Password: "whatever1"})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := createTestUser(t)

	repo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	repo.On("Save", mock.Anything, user).Return(nil)

	_, err := svc.Login(context.Background(), LoginInput{
		Username: "testuser",
		Password: "WrongPassword",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	assert.Equal(t, 1, user.FailedAttempts)
}

func TestAuthService_Login_LocksAfterRepeatedFailures(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := createTestUser(t)

	repo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	repo.On("Save", mock.Anything, user).Return(nil)

	var lastErr error
	for i := 0; i < 5; i++ {
		_, lastErr = svc.Login(context.Background(), LoginInput{
			Username: "testuser",
			Password: "WrongPassword",
		})
	}

	require.Error(t, lastErr)
	var domainErr *shared.DomainError
	require.ErrorAs(t, lastErr, &domainErr)
	assert.Equal(t, "ACCOUNT_LOCKED", domainErr.Code)
	assert.Equal(t, identity.UserStatusLocked, user.Status)
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := createTestUser(t)
	user.Deactivate()

	repo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)

	_, err := svc.Login(context.Background(), LoginInput{
		Username: "testuser",
		Password: "Password123",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ACCOUNT_DEACTIVATED", domainErr.Code)
}

func TestAuthService_RefreshToken_Success(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := createTestUser(t)

	repo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("Save", mock.Anything, user).Return(nil)

	login, err := svc.Login(context.Background(), LoginInput{
		Username: "testuser",
		Password: "Password123",
	})
	require.NoError(t, err)

	result, err := svc.RefreshToken(context.Background(), RefreshTokenInput{
		RefreshToken: login.RefreshToken,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
}

func TestAuthService_RefreshToken_SingleUse(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := createTestUser(t)

	repo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("Save", mock.Anything, user).Return(nil)

	login, err := svc.Login(context.Background(), LoginInput{
		Username: "testuser",
		Password: "Password123",
	})
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), RefreshTokenInput{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)

	// Replaying the consumed token must be rejected
	_, err = svc.RefreshToken(context.Background(), RefreshTokenInput{
		RefreshToken: login.RefreshToken,
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "TOKEN_INVALID", domainErr.Code)
}

func TestAuthService_RefreshToken_Garbage(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)

	_, err := svc.RefreshToken(context.Background(), RefreshTokenInput{
		RefreshToken: "not-a-token",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "TOKEN_INVALID", domainErr.Code)
}

func TestAuthService_Logout_Everywhere_BlocksRefresh(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := createTestUser(t)

	repo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("Save", mock.Anything, user).Return(nil)

	login, err := svc.Login(context.Background(), LoginInput{
		Username: "testuser",
		Password: "Password123",
	})
	require.NoError(t, err)

	err = svc.Logout(context.Background(), LogoutInput{
		UserID:     user.ID,
		Everywhere: true,
	})
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), RefreshTokenInput{
		RefreshToken: login.RefreshToken,
	})
	require.Error(t, err)
}

func TestAuthService_ChangePassword(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := createTestUser(t)

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("Save", mock.Anything, user).Return(nil)

	err := svc.ChangePassword(context.Background(), ChangePasswordInput{
		UserID:      user.ID,
		OldPassword: "Password123",
		NewPassword: "NewPassword456",
	})

	require.NoError(t, err)
	assert.True(t, user.VerifyPassword("NewPassword456"))
	assert.False(t, user.VerifyPassword("Password123"))
}

func TestAuthService_ChangePassword_WrongOld(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := createTestUser(t)

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	err := svc.ChangePassword(context.Background(), ChangePasswordInput{
		UserID:      user.ID,
		OldPassword: "WrongOld",
		NewPassword: "NewPassword456",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
}
