package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ymmiz/berrifyApp/constants"
	"github.com/ymmiz/berrifyApp/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

// Auth validates the Bearer JWT and stores its claims in the request context
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.RespondError(w, http.StatusUnauthorized, "Missing authentication token")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.RespondError(w, http.StatusUnauthorized, "Invalid token format")
				return
			}

			tokenString := parts[1]

			claims, err := utils.ValidateToken(tokenString, jwtSecret)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, constants.ErrInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext returns the authenticated caller's claims, or nil
func GetUserFromContext(ctx context.Context) *utils.Claims {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	if !ok {
		return nil
	}
	return claims
}
