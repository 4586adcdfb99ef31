// Package integration provides integration testing for the NIA backend API.
// This file covers authentication, token lifecycle and role enforcement.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	identityapp "github.com/nia/backend/internal/application/identity"
	"github.com/nia/backend/internal/domain/identity"
	"github.com/nia/backend/internal/infrastructure/auth"
	"github.com/nia/backend/internal/infrastructure/config"
	"github.com/nia/backend/internal/infrastructure/persistence"
	"github.com/nia/backend/internal/interfaces/http/handler"
	"github.com/nia/backend/internal/interfaces/http/middleware"
)

// AuthTestServer wraps the test database and HTTP server for auth API testing
type AuthTestServer struct {
	DB          *TestDB
	Engine      *gin.Engine
	UserRepo    *persistence.GormUserRepository
	AuthService *identityapp.AuthService
	JWTService  *auth.JWTService
	Blacklist   auth.TokenBlacklist
}

// NewAuthTestServer creates a new test server with auth infrastructure
func NewAuthTestServer(t *testing.T) *AuthTestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	testDB := NewTestDB(t)

	userRepo := persistence.NewGormUserRepository(testDB.DB)

	jwtConfig := config.JWTConfig{
		Secret:                 "test-secret-key-for-auth-testing-1234567890",
		RefreshSecret:          "test-refresh-secret-key-for-auth-testing",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "nia-test",
		MaxRefreshCount:        10,
	}
	jwtService := auth.NewJWTService(jwtConfig)
	blacklist := auth.NewInMemoryTokenBlacklist()

	logger := zap.NewNop()
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, logger)

	authHandler := handler.NewAuthHandler(authService)

	engine := gin.New()
	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
	}))

	authHandler.RegisterRoutes(api)

	// Admin-only probe route for role enforcement tests
	admin := api.Group("/admin-only", middleware.RequireAdmin())
	admin.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	return &AuthTestServer{
		DB:          testDB,
		Engine:      engine,
		UserRepo:    userRepo,
		AuthService: authService,
		JWTService:  jwtService,
		Blacklist:   blacklist,
	}
}

// Request makes an HTTP request to the test server
func (ts *AuthTestServer) Request(method, path string, body interface{}, token ...string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	if len(token) > 0 && token[0] != "" {
		req.Header.Set("Authorization", "Bearer "+token[0])
	}

	w := httptest.NewRecorder()
	ts.Engine.ServeHTTP(w, req)
	return w
}

// CreateAccount persists an active user with the given credentials and role
func (ts *AuthTestServer) CreateAccount(t *testing.T, username, password string, role identity.Role) *identity.User {
	t.Helper()

	email := fmt.Sprintf("%s_%s@test.local", username, uuid.New().String()[:8])
	user, err := identity.NewUser(username, email, password, role)
	require.NoError(t, err)

	err = ts.UserRepo.Save(context.Background(), user)
	require.NoError(t, err)

	return user
}

// Login performs a login and returns the access and refresh tokens
func (ts *AuthTestServer) Login(t *testing.T, username, password string) (string, string) {
	t.Helper()

	w := ts.Request(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, "login should succeed: %s", w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token := resp["data"].(map[string]interface{})["token"].(map[string]interface{})
	return token["access_token"].(string), token["refresh_token"].(string)
}

func TestAuth_LoginFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewAuthTestServer(t)

	testPassword := "TestPass123"
	user := ts.CreateAccount(t, "testrep", testPassword, identity.RoleSalesRep)

	t.Run("successful_login_returns_tokens_and_user_info", func(t *testing.T) {
		w := ts.Request(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
			"username": "testrep",
			"password": testPassword,
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.True(t, resp["success"].(bool))

		data := resp["data"].(map[string]interface{})

		token := data["token"].(map[string]interface{})
		assert.NotEmpty(t, token["access_token"])
		assert.NotEmpty(t, token["refresh_token"])
		assert.NotEmpty(t, token["access_token_expires_at"])
		assert.NotEmpty(t, token["refresh_token_expires_at"])
		assert.Equal(t, "Bearer", token["token_type"])

		userInfo := data["user"].(map[string]interface{})
		assert.Equal(t, user.ID.String(), userInfo["id"])
		assert.Equal(t, "testrep", userInfo["username"])
		assert.Equal(t, "sales_rep", userInfo["role"])
	})

	t.Run("invalid_username_returns_401", func(t *testing.T) {
		w := ts.Request(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
			"username": "nonexistent",
			"password": testPassword,
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var resp map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.False(t, resp["success"].(bool))
	})

	t.Run("invalid_password_returns_401", func(t *testing.T) {
		w := ts.Request(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
			"username": "testrep",
			"password": "WrongPassword123",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated_user_cannot_login", func(t *testing.T) {
		deactivated := ts.CreateAccount(t, "deactivated_rep", testPassword, identity.RoleSalesRep)
		deactivated.Deactivate()
		require.NoError(t, ts.UserRepo.Save(context.Background(), deactivated))

		w := ts.Request(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
			"username": "deactivated_rep",
			"password": testPassword,
		})

		assert.Equal(t, http.StatusForbidden, w.Code)

		var resp map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		errorInfo := resp["error"].(map[string]interface{})
		assert.Equal(t, "ERR_FORBIDDEN", errorInfo["code"])
	})

	t.Run("account_locks_after_max_failed_attempts", func(t *testing.T) {
		lockUser := ts.CreateAccount(t, "lock_test_rep", testPassword, identity.RoleSalesRep)

		// The fifth failure crosses the lockout threshold
		for i := 0; i < 5; i++ {
			w := ts.Request(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
				"username": "lock_test_rep",
				"password": "WrongPassword",
			})
			if i < 4 {
				assert.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d should return 401", i+1)
			} else {
				assert.Equal(t, http.StatusForbidden, w.Code, "attempt %d should lock the account", i+1)
			}
		}

		locked, err := ts.UserRepo.FindByID(context.Background(), lockUser.ID)
		require.NoError(t, err)
		assert.Equal(t, identity.UserStatusLocked, locked.Status)
		assert.False(t, locked.CanLogin())

		// Correct password is rejected while the lock holds
		w := ts.Request(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
			"username": "lock_test_rep",
			"password": testPassword,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)

		var resp map[string]interface{}
		err = json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		errorInfo := resp["error"].(map[string]interface{})
		assert.Equal(t, "ERR_FORBIDDEN", errorInfo["code"])
	})

	t.Run("login_records_last_login_time", func(t *testing.T) {
		before, err := ts.UserRepo.FindByID(context.Background(), user.ID)
		require.NoError(t, err)

		w := ts.Request(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
			"username": "testrep",
			"password": testPassword,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		after, err := ts.UserRepo.FindByID(context.Background(), user.ID)
		require.NoError(t, err)

		if before.LastLoginAt != nil {
			assert.True(t, !after.LastLoginAt.Before(*before.LastLoginAt))
		} else {
			assert.NotNil(t, after.LastLoginAt)
		}
	})
}

func TestAuth_RoleEnforcement(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewAuthTestServer(t)

	testPassword := "TestPass123"
	ts.CreateAccount(t, "admin_user", testPassword, identity.RoleAdmin)
	ts.CreateAccount(t, "rep_user", testPassword, identity.RoleSalesRep)

	t.Run("request_without_token_gets_401", func(t *testing.T) {
		w := ts.Request(http.MethodGet, "/api/v1/admin-only", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("admin_can_access_admin_routes", func(t *testing.T) {
		access, _ := ts.Login(t, "admin_user", testPassword)
		w := ts.Request(http.MethodGet, "/api/v1/admin-only", nil, access)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("sales_rep_gets_403_on_admin_routes", func(t *testing.T) {
		access, _ := ts.Login(t, "rep_user", testPassword)
		w := ts.Request(http.MethodGet, "/api/v1/admin-only", nil, access)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("sales_rep_can_access_own_profile", func(t *testing.T) {
		access, _ := ts.Login(t, "rep_user", testPassword)
		w := ts.Request(http.MethodGet, "/api/v1/auth/me", nil, access)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp["data"].(map[string]interface{})
		assert.Equal(t, "rep_user", data["username"])
		assert.Equal(t, "sales_rep", data["role"])
	})

	t.Run("invalid_bearer_format_returns_401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", "InvalidFormat token123")
		w := httptest.NewRecorder()
		ts.Engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("empty_bearer_token_returns_401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer ")
		w := httptest.NewRecorder()
		ts.Engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuth_TokenRefresh(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewAuthTestServer(t)

	testPassword := "TestPass123"
	ts.CreateAccount(t, "refresh_user", testPassword, identity.RoleSalesRep)

	initialAccess, initialRefresh := ts.Login(t, "refresh_user", testPassword)

	t.Run("valid_refresh_token_returns_new_tokens", func(t *testing.T) {
		w := ts.Request(http.MethodPost, "/api/v1/auth/refresh", map[string]interface{}{
			"refresh_token": initialRefresh,
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.True(t, resp["success"].(bool))

		token := resp["data"].(map[string]interface{})["token"].(map[string]interface{})
		assert.NotEmpty(t, token["access_token"])
		assert.NotEmpty(t, token["refresh_token"])
		assert.NotEqual(t, initialAccess, token["access_token"])
	})

	t.Run("replayed_refresh_token_is_rejected", func(t *testing.T) {
		// The token was consumed by the previous exchange
		w := ts.Request(http.MethodPost, "/api/v1/auth/refresh", map[string]interface{}{
			"refresh_token": initialRefresh,
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var resp map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.False(t, resp["success"].(bool))
	})

	t.Run("refresh_with_invalid_token_returns_401", func(t *testing.T) {
		w := ts.Request(http.MethodPost, "/api/v1/auth/refresh", map[string]interface{}{
			"refresh_token": "invalid.token.here",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var resp map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.False(t, resp["success"].(bool))
	})

	t.Run("refresh_with_access_token_fails", func(t *testing.T) {
		w := ts.Request(http.MethodPost, "/api/v1/auth/refresh", map[string]interface{}{
			"refresh_token": initialAccess,
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh_for_deactivated_user_fails", func(t *testing.T) {
		deactivateUser := ts.CreateAccount(t, "deactivate_refresh_user", testPassword, identity.RoleSalesRep)

		_, refreshToken := ts.Login(t, "deactivate_refresh_user", testPassword)

		deactivateUser.Deactivate()
		require.NoError(t, ts.UserRepo.Save(context.Background(), deactivateUser))

		w := ts.Request(http.MethodPost, "/api/v1/auth/refresh", map[string]interface{}{
			"refresh_token": refreshToken,
		})

		assert.Equal(t, http.StatusForbidden, w.Code)

		var resp map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		errorInfo := resp["error"].(map[string]interface{})
		assert.Equal(t, "ERR_FORBIDDEN", errorInfo["code"])
	})
}

func TestAuth_LogoutAndPasswordChange(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewAuthTestServer(t)

	testPassword := "TestPass123"
	ts.CreateAccount(t, "me_user", testPassword, identity.RoleSalesRep)

	accessToken, _ := ts.Login(t, "me_user", testPassword)

	t.Run("get_current_user_without_token_returns_401", func(t *testing.T) {
		w := ts.Request(http.MethodGet, "/api/v1/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("change_password_with_correct_old_password_succeeds", func(t *testing.T) {
		newPassword := "NewPass456"
		w := ts.Request(http.MethodPut, "/api/v1/auth/password", map[string]interface{}{
			"old_password": testPassword,
			"new_password": newPassword,
		}, accessToken)

		assert.Equal(t, http.StatusOK, w.Code)

		// New password works, old one is rejected
		loginResp := ts.Request(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
			"username": "me_user",
			"password": newPassword,
		})
		assert.Equal(t, http.StatusOK, loginResp.Code)

		loginResp = ts.Request(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
			"username": "me_user",
			"password": testPassword,
		})
		assert.Equal(t, http.StatusUnauthorized, loginResp.Code)
	})

	t.Run("change_password_invalidates_existing_tokens", func(t *testing.T) {
		// Token issued before the change is now blacklisted
		w := ts.Request(http.MethodGet, "/api/v1/auth/me", nil, accessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("change_password_with_wrong_old_password_fails", func(t *testing.T) {
		access, _ := ts.Login(t, "me_user", "NewPass456")
		w := ts.Request(http.MethodPut, "/api/v1/auth/password", map[string]interface{}{
			"old_password": "WrongOldPass123",
			"new_password": "NewPass789",
		}, access)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("logout_everywhere_revokes_tokens", func(t *testing.T) {
		// iat has second precision; the new token must postdate the
		// invalidation recorded by the earlier password change
		time.Sleep(1100 * time.Millisecond)
		access, refresh := ts.Login(t, "me_user", "NewPass456")

		w := ts.Request(http.MethodPost, "/api/v1/auth/logout", map[string]interface{}{
			"everywhere": true,
		}, access)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.True(t, resp["success"].(bool))

		// Refresh is rejected once the user's tokens are invalidated
		w = ts.Request(http.MethodPost, "/api/v1/auth/refresh", map[string]interface{}{
			"refresh_token": refresh,
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuth_TokenSecurity(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewAuthTestServer(t)

	testPassword := "TestPass123"
	ts.CreateAccount(t, "security_user", testPassword, identity.RoleSalesRep)

	validToken, _ := ts.Login(t, "security_user", testPassword)

	t.Run("token_with_wrong_signature_is_rejected", func(t *testing.T) {
		parts := strings.Split(validToken, ".")
		require.Len(t, parts, 3)
		tamperedToken := parts[0] + "." + parts[1] + ".tampered_signature"

		w := ts.Request(http.MethodGet, "/api/v1/auth/me", nil, tamperedToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("completely_invalid_token_is_rejected", func(t *testing.T) {
		w := ts.Request(http.MethodGet, "/api/v1/auth/me", nil, "not.a.valid.jwt.token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("empty_authorization_header_returns_401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", "")
		w := httptest.NewRecorder()
		ts.Engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
