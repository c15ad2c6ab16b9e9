package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	app, store := newTestApp(t)

	token, userID := register(t, app, "ada", "ada@example.com")
	assert.NotEmpty(t, token)

	stored, err := store.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, userID, stored.ID)
	assert.Equal(t, "ada", stored.Username)
	assert.NotEqual(t, "secret1", stored.PasswordHash, "password must be stored hashed")

	// the token must work on a protected route
	resp, env := doRequest(t, app, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", env.Status)
}

func TestRegisterValidation(t *testing.T) {
	app, _ := newTestApp(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing username", map[string]string{"email": "a@b.c", "password": "x"}},
		{"missing email", map[string]string{"username": "a", "password": "x"}},
		{"missing password", map[string]string{"username": "a", "email": "a@b.c"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, env := doRequest(t, app, http.MethodPost, "/api/auth/register", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "fail", env.Status)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app, _ := newTestApp(t)
	register(t, app, "ada", "ada@example.com")

	resp, env := doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "other",
		"email":    "ada@example.com",
		"password": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already registered", env.Message)
}

func TestLogin(t *testing.T) {
	app, _ := newTestApp(t)
	register(t, app, "ada", "ada@example.com")

	resp, env := doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", env.Status)
	assert.NotEmpty(t, env.Token)
}

func TestLoginBadCredentials(t *testing.T) {
	app, _ := newTestApp(t)
	register(t, app, "ada", "ada@example.com")

	cases := []struct {
		name string
		body map[string]string
	}{
		{"unknown email", map[string]string{"email": "nobody@example.com", "password": "secret1"}},
		{"wrong password", map[string]string{"email": "ada@example.com", "password": "nope"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, env := doRequest(t, app, http.MethodPost, "/api/auth/login", "", tc.body)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			// both failure modes must be indistinguishable
			assert.Equal(t, "Incorrect email or password", env.Message)
		})
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	app, _ := newTestApp(t)

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/users/me"},
		{http.MethodGet, "/api/notes"},
		{http.MethodPost, "/api/notes"},
		{http.MethodGet, "/api/folders"},
		{http.MethodGet, "/api/tags"},
	}
	for _, p := range paths {
		resp, env := doRequest(t, app, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", p.method, p.path)
		assert.Equal(t, "fail", env.Status)
	}
}

func TestGarbageToken(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doRequest(t, app, http.MethodGet, "/api/notes", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)

	resp, env := doRequest(t, app, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "Server is running", env.Message)
}
