package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"p9e.in/saf/config"
	"p9e.in/saf/models"
	"p9e.in/saf/pkg/sessionstore"
	"p9e.in/saf/utils"
)

// TokenTTL is how long an issued token is valid
const TokenTTL = 24 * time.Hour

// TokenStore records revoked token ids. Nil disables revocation.
var TokenStore sessionstore.Store

// Claims are the custom payload in the JWT
type Claims struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// unexported type prevents collisions in context
type ctxKey int

const (
	userClaimsKey ctxKey = iota
)

func jwtKey() []byte {
	return []byte(config.App.JWTSecret)
}

// GenerateToken creates a signed HS256 token valid for TokenTTL
func GenerateToken(userID, role, name, phone string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Name:   name,
		Phone:  phone,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey())
}

// ParseToken validates a signed token and returns its claims
func ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return jwtKey(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// RevokeToken blocks the token until it would have expired anyway
func RevokeToken(ctx context.Context, c *Claims) error {
	if TokenStore == nil || c == nil || c.ID == "" {
		return nil
	}
	ttl := TokenTTL
	if c.ExpiresAt != nil {
		ttl = time.Until(c.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return TokenStore.Put(ctx, sessionstore.Key("revoked", c.ID), true, ttl)
}

func isRevoked(ctx context.Context, c *Claims) bool {
	if TokenStore == nil || c.ID == "" {
		return false
	}
	var revoked bool
	err := TokenStore.Get(ctx, sessionstore.Key("revoked", c.ID), &revoked)
	if err != nil && !errors.Is(err, sessionstore.ErrNotFound) {
		log.Printf("[AUTH] revocation lookup failed: %v", err)
	}
	return err == nil && revoked
}

// JWTMiddleware validates the bearer token and stashes the Claims in ctx
func JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			utils.WriteError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.WriteError(w, http.StatusUnauthorized, "invalid auth header")
			return
		}

		claims, err := ParseToken(parts[1])
		if err != nil {
			utils.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if isRevoked(r.Context(), claims) {
			utils.WriteError(w, http.StatusUnauthorized, "token has been revoked")
			return
		}

		ctx := context.WithValue(r.Context(), userClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithClaims returns a copy of ctx carrying c
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, userClaimsKey, c)
}

// GetClaims pulls the *Claims out of the request context (or nil)
func GetClaims(r *http.Request) *Claims {
	if c, ok := r.Context().Value(userClaimsKey).(*Claims); ok {
		return c
	}
	return nil
}

func GetUserID(r *http.Request) string {
	if c := GetClaims(r); c != nil {
		return c.UserID
	}
	return ""
}

func GetRole(r *http.Request) string {
	if c := GetClaims(r); c != nil {
		return c.Role
	}
	return ""
}

// GetUser loads the authenticated user with role and permissions. Falls
// back to the claims when the row cannot be read.
func GetUser(r *http.Request) models.User {
	c := GetClaims(r)
	if c == nil {
		return models.User{}
	}
	var user models.User
	if err := config.DB.Preload("RoleModel.Permissions").First(&user, "id = ?", c.UserID).Error; err == nil {
		return user
	}
	return models.User{Name: c.Name, Phone: c.Phone}
}
