package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"p9e.in/saf/config"
	"p9e.in/saf/pkg/sessionstore"
	"p9e.in/saf/utils"
)

func withSecret(t *testing.T, secret string) {
	t.Helper()
	prev := config.App
	config.App.JWTSecret = secret
	t.Cleanup(func() { config.App = prev })
}

func withTokenStore(t *testing.T) *sessionstore.Memory {
	t.Helper()
	prev := TokenStore
	store := sessionstore.NewMemory()
	TokenStore = store
	t.Cleanup(func() { TokenStore = prev })
	return store
}

func echoClaims() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccess(w, http.StatusOK, "", GetClaims(r))
	})
}

func TestGenerateAndParseToken(t *testing.T) {
	withSecret(t, "test-secret")

	token, err := GenerateToken("u-1", "ULB TC", "Asha", "9999999901")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "ULB TC", claims.Role)
	assert.NotEmpty(t, claims.ID)

	config.App.JWTSecret = "other-secret"
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	withSecret(t, "test-secret")
	withTokenStore(t)

	token, err := GenerateToken("u-1", "Agency TC", "Ravi", "9999999902")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/menu", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			JWTMiddleware(echoClaims()).ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			var env utils.Envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, tt.code == http.StatusOK, env.Status)
		})
	}
}

func TestRevokedTokenIsRejected(t *testing.T) {
	withSecret(t, "test-secret")
	withTokenStore(t)

	token, err := GenerateToken("u-1", "Agency TC", "Ravi", "9999999902")
	require.NoError(t, err)
	claims, err := ParseToken(token)
	require.NoError(t, err)

	require.NoError(t, RevokeToken(context.Background(), claims))

	req := httptest.NewRequest(http.MethodGet, "/api/menu", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	JWTMiddleware(echoClaims()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRevokeWithoutStore(t *testing.T) {
	prev := TokenStore
	TokenStore = nil
	t.Cleanup(func() { TokenStore = prev })

	assert.NoError(t, RevokeToken(context.Background(), &Claims{}))
}

func TestClaimsHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, GetClaims(req))
	assert.Empty(t, GetUserID(req))
	assert.Empty(t, GetRole(req))

	req = req.WithContext(WithClaims(req.Context(), &Claims{UserID: "u-9", Role: "ULB TC"}))
	assert.Equal(t, "u-9", GetUserID(req))
	assert.Equal(t, "ULB TC", GetRole(req))
}
