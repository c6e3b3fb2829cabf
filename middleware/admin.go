package middleware

import (
	"log"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ymmiz/berrifyApp/constants"
	"github.com/ymmiz/berrifyApp/database"
	"github.com/ymmiz/berrifyApp/utils"
)

// RequireAdmin restricts a route to administrators
func RequireAdmin(db *mongo.Database) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
				return
			}

			userRepo := database.NewUserRepository(db)
			user, err := userRepo.FindByHexID(claims.UserID)
			if err != nil || user == nil {
				log.Printf("User not found: %v", err)
				utils.RespondError(w, http.StatusUnauthorized, constants.ErrUserNotFound)
				return
			}

			if user.Admin != 1 {
				log.Printf("⚠️  Admin access denied for: %s (admin=%d)", user.Email, user.Admin)
				utils.RespondError(w, http.StatusForbidden, constants.ErrAdminOnly)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoot restricts a route to superadmins. Promote/demote lives behind
// this: the caller must hold both the admin and superadmin claims.
func RequireRoot(db *mongo.Database) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
				return
			}

			userRepo := database.NewUserRepository(db)
			user, err := userRepo.FindByHexID(claims.UserID)
			if err != nil || user == nil {
				log.Printf("User not found: %v", err)
				utils.RespondError(w, http.StatusUnauthorized, constants.ErrUserNotFound)
				return
			}

			if user.Admin != 1 || user.Superadmin != 1 {
				log.Printf("⚠️  Superadmin access denied for: %s (admin=%d, superadmin=%d)", user.Email, user.Admin, user.Superadmin)
				utils.RespondError(w, http.StatusForbidden, constants.ErrRootOnly)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
