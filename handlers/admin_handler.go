package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ymmiz/berrifyApp/constants"
	"github.com/ymmiz/berrifyApp/database"
	"github.com/ymmiz/berrifyApp/middleware"
	"github.com/ymmiz/berrifyApp/models"
	"github.com/ymmiz/berrifyApp/utils"
)

// Store surfaces the admin panel depends on, narrowed so the handler can
// be exercised without a live database.
type adminUserStore interface {
	FindAll() ([]models.User, error)
	FindByID(id primitive.ObjectID) (*models.User, error)
	FindByHexID(id string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindAdmins() ([]models.User, error)
	UpdateByID(id primitive.ObjectID, updateData map[string]interface{}) error
	Delete(id primitive.ObjectID) error
	Count() (int64, error)
}

type adminPlantStore interface {
	FindAll() ([]models.Plant, error)
	DeleteByOwner(ownerID string) error
	Count() (int64, error)
}

type adminMirrorStore interface {
	UpsertMirror(uid, email string, admin bool, updatedBy string) error
}

type adminSubscriptionStore interface {
	DeleteByUser(userID string) error
}

// AdminHandler serves the admin panel endpoints
type AdminHandler struct {
	userRepo         adminUserStore
	plantRepo        adminPlantStore
	adminRepo        adminMirrorStore
	subscriptionRepo adminSubscriptionStore
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(db *mongo.Database) *AdminHandler {
	return &AdminHandler{
		userRepo:         database.NewUserRepository(db),
		plantRepo:        database.NewPlantRepository(db),
		adminRepo:        database.NewAdminRepository(db),
		subscriptionRepo: database.NewSubscriptionRepository(db),
	}
}

// ListUsers returns every registered user
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	users, err := h.userRepo.FindAll()
	if err != nil {
		log.Printf("Error listing users: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   users,
		"total":   len(users),
	})
}

// UpdateUser applies a partial update to one user
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	userID, ok := ParseObjectIDVar(w, mux.Vars(r), "user_id", "Invalid user id")
	if !ok {
		return
	}

	var req struct {
		Name          *string `json:"name,omitempty"`
		UserType      *string `json:"user_type,omitempty"`
		Notifications *bool   `json:"notifications,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	updateData := map[string]interface{}{}
	if req.Name != nil {
		updateData["name"] = strings.TrimSpace(*req.Name)
	}
	if req.UserType != nil {
		updateData["user_type"] = *req.UserType
	}
	if req.Notifications != nil {
		updateData["notifications"] = *req.Notifications
	}

	if len(updateData) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	if err := h.userRepo.UpdateByID(userID, updateData); err != nil {
		log.Printf("Error updating user: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondSuccess(w, "User updated", nil)
}

// DeleteUser removes a user together with their plants and web-push
// subscriptions. Superadmins only.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	userID, ok := ParseObjectIDVar(w, mux.Vars(r), "user_id", "Invalid user id")
	if !ok {
		return
	}

	user, err := h.userRepo.FindByID(userID)
	if err != nil {
		log.Printf("Error finding user: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if user == nil {
		utils.RespondError(w, http.StatusNotFound, constants.ErrUserNotFound)
		return
	}

	// Device tokens live on the user document and go with it; plants and
	// web-push subscriptions are separate collections and need their own
	// cascade.
	if err := h.plantRepo.DeleteByOwner(userID.Hex()); err != nil {
		log.Printf("⚠️  Error deleting user's plants: %v", err)
	}
	if err := h.subscriptionRepo.DeleteByUser(userID.Hex()); err != nil {
		log.Printf("⚠️  Error deleting user's subscriptions: %v", err)
	}

	if err := h.userRepo.Delete(userID); err != nil {
		log.Printf("Error deleting user: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	log.Printf("🗑️  User deleted: %s", user.Email)
	utils.RespondSuccess(w, "User deleted", nil)
}

// ListPlants returns every plant in the system
func (h *AdminHandler) ListPlants(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	plants, err := h.plantRepo.FindAll()
	if err != nil {
		log.Printf("Error listing plants: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"plants":  plants,
		"total":   len(plants),
	})
}

// Stats returns aggregate counters for the admin dashboard
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userCount, err := h.userRepo.Count()
	if err != nil {
		log.Printf("Error counting users: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	plantCount, err := h.plantRepo.Count()
	if err != nil {
		log.Printf("Error counting plants: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	admins, err := h.userRepo.FindAdmins()
	if err != nil {
		log.Printf("Error listing admins: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats": map[string]interface{}{
			"users":  userCount,
			"plants": plantCount,
			"admins": len(admins),
		},
	})
}

// setAdmin flips one user's admin privilege: exactly one privilege write
// on the user document plus one mirror upsert into the admins collection.
func (h *AdminHandler) setAdmin(w http.ResponseWriter, user *models.User, admin bool, updatedBy string) {
	adminFlag := 0
	if admin {
		adminFlag = 1
	}

	if err := h.userRepo.UpdateByID(user.ID, map[string]interface{}{"admin": adminFlag}); err != nil {
		log.Printf("Error updating privilege: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	if err := h.adminRepo.UpsertMirror(user.ID.Hex(), user.Email, admin, updatedBy); err != nil {
		log.Printf("Error mirroring privilege: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	action := "demoted"
	if admin {
		action = "promoted"
	}
	log.Printf("✓ User %s %s by %s", user.Email, action, updatedBy)

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"email":   user.Email,
		"admin":   admin,
	})
}

// Promote grants admin privilege to a user by email. Superadmins only.
func (h *AdminHandler) Promote(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	var req models.PromoteAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := utils.ValidateEmail(email); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userRepo.FindByEmail(email)
	if err != nil {
		log.Printf("Error finding user: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if user == nil {
		utils.RespondError(w, http.StatusNotFound, constants.ErrUserNotFound)
		return
	}

	h.setAdmin(w, user, true, claims.UserID)
}

// Demote revokes a user's admin privilege by uid. Superadmins only.
func (h *AdminHandler) Demote(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	var req models.DemoteAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	uid := strings.TrimSpace(req.UID)
	if uid == "" {
		utils.RespondError(w, http.StatusBadRequest, "Uid is required")
		return
	}

	user, err := h.userRepo.FindByHexID(uid)
	if err != nil {
		log.Printf("Error finding user: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if user == nil {
		utils.RespondError(w, http.StatusNotFound, constants.ErrUserNotFound)
		return
	}

	h.setAdmin(w, user, false, claims.UserID)
}
