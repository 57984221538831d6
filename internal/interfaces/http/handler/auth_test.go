package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	identityapp "github.com/chedfms/liqtrack/internal/application/identity"
	"github.com/chedfms/liqtrack/internal/domain/identity"
	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/chedfms/liqtrack/internal/infrastructure/auth"
	"github.com/chedfms/liqtrack/internal/infrastructure/config"
	"github.com/chedfms/liqtrack/internal/interfaces/http/middleware"
)

// fakeUserRepo is an in-memory identity.UserRepository for handler tests.
type fakeUserRepo struct {
	byID       map[uuid.UUID]*identity.User
	byUsername map[string]*identity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:       make(map[uuid.UUID]*identity.User),
		byUsername: make(map[string]*identity.User),
	}
}

func (r *fakeUserRepo) Save(ctx context.Context, user *identity.User) error {
	r.byID[user.ID] = user
	r.byUsername[user.Username] = user
	return nil
}

func (r *fakeUserRepo) SaveWithLock(ctx context.Context, user *identity.User, expectedVersion int) error {
	return r.Save(ctx, user)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *identity.User) error {
	return r.Save(ctx, user)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, shared.NewNotFoundError("User not found")
	}
	return user, nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	user, ok := r.byUsername[username]
	if !ok {
		return nil, shared.NewNotFoundError("User not found")
	}
	return user, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	return nil, shared.NewNotFoundError("User not found")
}

func (r *fakeUserRepo) List(ctx context.Context, filter identity.UserFilter) (*shared.Paginated[*identity.User], error) {
	return &shared.Paginated[*identity.User]{Page: 1, PageSize: 20}, nil
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, ok := r.byUsername[username]
	return ok, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type authTestEnv struct {
	engine *gin.Engine
	repo   *fakeUserRepo
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	})

	repo := newFakeUserRepo()
	authService := identityapp.NewAuthService(repo, jwtService, identityapp.DefaultAuthServiceConfig(), zap.NewNop())
	h := NewAuthHandler(authService)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	h.RegisterPublicRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.JWTAuthMiddleware(jwtService))
	h.RegisterRoutes(protected)

	return &authTestEnv{engine: engine, repo: repo}
}

func (env *authTestEnv) seedUser(t *testing.T, username, password string, role identity.Role) *identity.User {
	t.Helper()
	user, err := identity.NewUser(username, password, role)
	require.NoError(t, err)
	require.NoError(t, env.repo.Save(context.Background(), user))
	return user
}

func (env *authTestEnv) postJSON(t *testing.T, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func TestLoginSuccess(t *testing.T) {
	env := newAuthTestEnv(t)
	env.seedUser(t, "rc.region9", "Password1", identity.RoleRegionalCoordinator)

	w := env.postJSON(t, "/api/v1/auth/login", gin.H{
		"username": "rc.region9",
		"password": "Password1",
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
	assert.Contains(t, w.Body.String(), "refresh_token")
	assert.Contains(t, w.Body.String(), "regional_coordinator")
}

func TestLoginWrongPassword(t *testing.T) {
	env := newAuthTestEnv(t)
	env.seedUser(t, "rc.region9", "Password1", identity.RoleRegionalCoordinator)

	w := env.postJSON(t, "/api/v1/auth/login", gin.H{
		"username": "rc.region9",
		"password": "WrongPassword1",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestLoginUnknownUser(t *testing.T) {
	env := newAuthTestEnv(t)

	w := env.postJSON(t, "/api/v1/auth/login", gin.H{
		"username": "ghost",
		"password": "Password1",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestLoginLocksAfterRepeatedFailures(t *testing.T) {
	env := newAuthTestEnv(t)
	env.seedUser(t, "rc.region9", "Password1", identity.RoleRegionalCoordinator)

	var w *httptest.ResponseRecorder
	for i := 0; i < 5; i++ {
		w = env.postJSON(t, "/api/v1/auth/login", gin.H{
			"username": "rc.region9",
			"password": "WrongPassword1",
		}, nil)
	}
	assert.Equal(t, http.StatusLocked, w.Code)
	assert.Contains(t, w.Body.String(), "ACCOUNT_LOCKED")

	// the right password no longer helps while locked
	w = env.postJSON(t, "/api/v1/auth/login", gin.H{
		"username": "rc.region9",
		"password": "Password1",
	}, nil)
	assert.Equal(t, http.StatusLocked, w.Code)
}

func TestRefreshTokenFlow(t *testing.T) {
	env := newAuthTestEnv(t)
	env.seedUser(t, "rc.region9", "Password1", identity.RoleRegionalCoordinator)

	login := env.postJSON(t, "/api/v1/auth/login", gin.H{
		"username": "rc.region9",
		"password": "Password1",
	}, nil)
	require.Equal(t, http.StatusOK, login.Code)

	var envelope struct {
		Data struct {
			RefreshToken string `json:"refresh_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.RefreshToken)

	w := env.postJSON(t, "/api/v1/auth/refresh", gin.H{
		"refresh_token": envelope.Data.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
}

func TestGetCurrentUser(t *testing.T) {
	env := newAuthTestEnv(t)
	env.seedUser(t, "rc.region9", "Password1", identity.RoleRegionalCoordinator)

	login := env.postJSON(t, "/api/v1/auth/login", gin.H{
		"username": "rc.region9",
		"password": "Password1",
	}, nil)
	require.Equal(t, http.StatusOK, login.Code)

	var envelope struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &envelope))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+envelope.Data.AccessToken)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rc.region9")
	assert.Contains(t, w.Body.String(), "capabilities")
}

func TestGetCurrentUserWithoutToken(t *testing.T) {
	env := newAuthTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
