package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"meetingtracker-be/config"
	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/repository"
	"meetingtracker-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeUsers struct {
	users map[string]*models.User
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: map[string]*models.User{}}
	for _, u := range users {
		f.users[u.ID.Hex()] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.PersonID = utils.NewPersonID()
	f.users[user.ID.Hex()] = user
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUsers) List(_ context.Context, zones []string) ([]*models.User, error) {
	out := []*models.User{}
	for _, u := range f.users {
		if zones == nil {
			out = append(out, u)
			continue
		}
		for _, z := range u.Zones {
			if contains(zones, z) {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, user *models.User) error {
	f.users[user.ID.Hex()] = user
	return nil
}

func (f *fakeUsers) UpdateRefreshToken(_ context.Context, userID, refreshToken string) error {
	u, ok := f.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.RefreshToken = refreshToken
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	u, ok := f.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.Password = passwordHash
	u.RefreshToken = ""
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(f.users, id)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:            "test-secret",
		JWTAccessExpiration:  time.Minute,
		JWTRefreshExpiration: time.Hour,
		RequestTimeout:       time.Second,
	}
}

func testUser(t *testing.T, active bool) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	return &models.User{
		ID:       primitive.NewObjectID(),
		Email:    "asha@example.com",
		Password: hash,
		Name:     "Asha",
		Role:     "zone_leader",
		Zones:    []string{"Z1"},
		Active:   active,
	}
}

func authRouter(cfg *config.Config, users UserStore) *gin.Engine {
	h := NewAuthHandler(cfg, users)
	r := newRouter(nil)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.RefreshToken)
	return r
}

func TestLogin(t *testing.T) {
	cfg := testConfig()
	user := testUser(t, true)
	users := newFakeUsers(user)
	r := authRouter(cfg, users)

	w := perform(r, http.MethodPost, "/auth/login", models.LoginRequest{Email: user.Email, Password: "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.AuthResponse
	decode(t, w, &resp)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, resp.RefreshToken, user.RefreshToken)

	claims, err := utils.ValidateToken(resp.AccessToken, cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "zone_leader", claims.Role)
	assert.Equal(t, []string{"Z1"}, claims.Zones)
	assert.NotContains(t, w.Body.String(), "secret123")
}

func TestLoginFailures(t *testing.T) {
	cfg := testConfig()
	disabled := testUser(t, false)
	disabled.Email = "off@example.com"
	r := authRouter(cfg, newFakeUsers(testUser(t, true), disabled))

	w := perform(r, http.MethodPost, "/auth/login", models.LoginRequest{Email: "asha@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodPost, "/auth/login", models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodPost, "/auth/login", models.LoginRequest{Email: "off@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = perform(r, http.MethodPost, "/auth/login", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshRotates(t *testing.T) {
	cfg := testConfig()
	user := testUser(t, true)
	r := authRouter(cfg, newFakeUsers(user))

	w := perform(r, http.MethodPost, "/auth/login", models.LoginRequest{Email: user.Email, Password: "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	var first models.AuthResponse
	decode(t, w, &first)

	w = perform(r, http.MethodPost, "/auth/refresh", models.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	var second models.AuthResponse
	decode(t, w, &second)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// the first refresh token was replaced
	w = perform(r, http.MethodPost, "/auth/refresh", models.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// an access token is not a refresh token
	w = perform(r, http.MethodPost, "/auth/refresh", models.RefreshTokenRequest{RefreshToken: second.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserListScopedToZones(t *testing.T) {
	u1 := &models.User{ID: primitive.NewObjectID(), Email: "a@example.com", Zones: []string{"Z1"}}
	u2 := &models.User{ID: primitive.NewObjectID(), Email: "b@example.com", Zones: []string{"Z2"}}
	h := NewUserHandler(newFakeUsers(u1, u2), time.Second)
	r := newRouter(zoneLeader("Z1"))
	r.GET("/users", h.List)

	w := perform(r, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Users []models.User `json:"users"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "a@example.com", resp.Users[0].Email)
}

func TestCreateUserAssignsPersonID(t *testing.T) {
	users := newFakeUsers()
	h := NewUserHandler(users, time.Second)
	r := newRouter(admin())
	r.POST("/users", h.Create)

	w := perform(r, http.MethodPost, "/users", models.CreateUserRequest{
		Email: "Ravi@Example.com", Password: "secret123", Name: " Ravi ", Role: "member", Zones: []string{"Z1", "Z1", ""},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.User
	decode(t, w, &created)
	assert.Equal(t, "ravi@example.com", created.Email)
	assert.Equal(t, "Ravi", created.Name)
	assert.Equal(t, []string{"Z1"}, created.Zones)
	assert.NotEmpty(t, created.PersonID)

	w = perform(r, http.MethodPost, "/users", models.CreateUserRequest{
		Email: "ravi@example.com", Password: "secret123", Name: "Ravi", Role: "member",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}
