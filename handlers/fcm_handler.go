package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ymmiz/berrifyApp/constants"
	"github.com/ymmiz/berrifyApp/database"
	"github.com/ymmiz/berrifyApp/middleware"
	"github.com/ymmiz/berrifyApp/utils"
)

// FCMHandler handles device token registration
type FCMHandler struct {
	userRepo *database.UserRepository
	vapidKey string
}

// NewFCMHandler creates a new FCMHandler. vapidKey is the public web-push
// key the Firebase JS SDK needs to subscribe a browser.
func NewFCMHandler(db *mongo.Database, vapidKey string) *FCMHandler {
	return &FCMHandler{
		userRepo: database.NewUserRepository(db),
		vapidKey: vapidKey,
	}
}

type tokenRequest struct {
	Token string `json:"token"`
}

// RegisterToken adds a device token to the caller's token list. Adding is
// a set insert so re-registering the same token is a no-op.
func (h *FCMHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		utils.RespondError(w, http.StatusBadRequest, "Token is required")
		return
	}

	user, err := h.userRepo.FindByHexID(claims.UserID)
	if err != nil {
		log.Printf("Error finding user: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if user == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrUserNotFound)
		return
	}

	if err := h.userRepo.AddToken(user.ID, token); err != nil {
		log.Printf("Error registering token: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	// The singular legacy field is retired the first time a client
	// registers through the list-based flow.
	if user.FCMToken != "" {
		if err := h.userRepo.ClearLegacyToken(user.ID); err != nil {
			log.Printf("⚠️  Error clearing legacy token: %v", err)
		}
	}

	log.Printf("✓ Device token registered for %s", user.Email)
	utils.RespondSuccess(w, "Token registered", nil)
}

// UnregisterToken removes a device token from the caller's token list
func (h *FCMHandler) UnregisterToken(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		utils.RespondError(w, http.StatusBadRequest, "Token is required")
		return
	}

	if err := h.userRepo.RemoveToken(claims.UserID, token); err != nil {
		log.Printf("Error unregistering token: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	log.Printf("✓ Device token unregistered for %s", claims.UserID)
	utils.RespondSuccess(w, "Token unregistered", nil)
}

// GetVAPIDKey returns the public key the web client subscribes with
func (h *FCMHandler) GetVAPIDKey(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"vapidKey": h.vapidKey,
	})
}
