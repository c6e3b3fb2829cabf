package middleware

import (
	"net/http"
	"strings"

	"github.com/ymmiz/berrifyApp/utils"
)

// Guest rejects callers that are already authenticated. Used on register
// and login so a valid session cannot re-authenticate.
func Guest(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")

			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := parts[1]

			if _, err := utils.ValidateToken(tokenString, jwtSecret); err == nil {
				utils.RespondError(w, http.StatusForbidden, "You are already signed in")
				return
			}

			// Invalid or expired token is fine here, the caller is
			// effectively signed out.
			next.ServeHTTP(w, r)
		})
	}
}
