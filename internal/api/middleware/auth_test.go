package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Agora/internal/api/handlers"
	"Agora/internal/auth"
)

var testSecret = []byte("middleware-test-secret")

func newTestMiddleware(t *testing.T) *AuthMiddleware {
	t.Helper()
	verifier, err := auth.NewHMACVerifier(testSecret)
	require.NoError(t, err)
	return NewAuthMiddleware(verifier)
}

func createTestToken(t *testing.T, subject string, ttl time.Duration) string {
	t.Helper()
	token, err := auth.IssueToken(testSecret, subject, "", ttl)
	require.NoError(t, err)
	return token
}

func decodeErrorMsg(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body handlers.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Errors, 1)
	return body.Errors[0].Msg
}

func TestRequireAuth_ValidToken(t *testing.T) {
	m := newTestMiddleware(t)

	var gotUserID string
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r)
		assert.NotNil(t, GetJWTClaims(r))
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+createTestToken(t, "User-1", time.Hour))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", gotUserID)
}

func TestRequireAuth_Rejections(t *testing.T) {
	m := newTestMiddleware(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "Missing header", header: ""},
		{name: "Wrong scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "Empty bearer", header: "Bearer "},
		{name: "Garbage token", header: "Bearer not-a-jwt"},
		{name: "Expired token", header: "Bearer " + createTestToken(t, "u1", -time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.NotEmpty(t, decodeErrorMsg(t, w))
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	m := newTestMiddleware(t)

	var gotUserID string
	handler := m.OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("Anonymous passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, gotUserID)
	})

	t.Run("Invalid token passes through anonymously", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer broken")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, gotUserID)
	})

	t.Run("Valid token sets identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+createTestToken(t, "u2", time.Hour))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, "u2", gotUserID)
	})
}

func TestRequireAuth_ReusesOptionalAuth(t *testing.T) {
	m := newTestMiddleware(t)

	called := false
	handler := m.OptionalAuth(m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, "u3", GetUserID(r))
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+createTestToken(t, "u3", time.Hour))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)
}

func TestSetTestUserID(t *testing.T) {
	ctx := SetTestUserID(context.Background(), "tester")
	assert.Equal(t, "tester", GetAuthenticatedUserID(ctx))
}
