package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/kkcos-go/apperror"
	"github.com/user/kkcos-go/config"
)

// ContextKey is a private key type for request context values, preventing
// collisions with keys set by other packages.
type ContextKey string

const (
	// UserIDKey is the context key under which the authenticated user's id is stored.
	UserIDKey ContextKey = "userID"
)

// Claims is the JWT payload expected by the middleware.
type Claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTMiddleware verifies the Bearer token from the Authorization header and
// places the authenticated user's id into the request context.
func JWTMiddleware(cfg *config.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("Authorization header is missing", nil))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				WriteError(w, r, apperror.NewAuthError("Authorization header format must be Bearer {token}", nil))
				return
			}

			tokenString := parts[1]
			claims := &Claims{}

			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil {
				if errors.Is(err, jwt.ErrSignatureInvalid) {
					WriteError(w, r, apperror.NewAuthError("Invalid token signature", nil))
					return
				}
				WriteError(w, r, apperror.NewAuthError(fmt.Sprintf("Invalid token: %v", err), err))
				return
			}

			if !token.Valid {
				WriteError(w, r, apperror.NewAuthError("Invalid token", nil))
				return
			}

			if claims.UserID == 0 {
				WriteError(w, r, apperror.NewAuthError("Invalid token: user_id claim is missing or invalid", nil))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext retrieves the userID placed by JWTMiddleware.
// Returns 0 and false when no authenticated user is present.
func GetUserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}
