package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ymmiz/berrifyApp/constants"
	"github.com/ymmiz/berrifyApp/database"
	"github.com/ymmiz/berrifyApp/middleware"
	"github.com/ymmiz/berrifyApp/models"
	"github.com/ymmiz/berrifyApp/services"
	"github.com/ymmiz/berrifyApp/utils"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	userRepo   *database.UserRepository
	jwtSecret  string
	fcmService services.Notifier
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(db *mongo.Database, jwtSecret string, fcmService services.Notifier) *AuthHandler {
	return &AuthHandler{
		userRepo:   database.NewUserRepository(db),
		jwtSecret:  jwtSecret,
		fcmService: fcmService,
	}
}

// Register handles new user signup
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	if err := h.validateRegisterRequest(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := h.userRepo.EmailExists(email)
	if err != nil {
		log.Printf("Error checking email: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if exists {
		utils.RespondError(w, http.StatusConflict, "This email is already registered")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	userType := req.UserType
	if userType == "" {
		userType = "gardener"
	}

	user := &models.User{
		Name:          req.Name,
		Email:         email,
		Password:      hashedPassword,
		UserType:      userType,
		Notifications: true,
		Admin:         0,
		JoinDate:      time.Now(),
	}

	if err := h.userRepo.Create(user); err != nil {
		log.Printf("Error creating user: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Could not create account")
		return
	}

	go h.notifyAdminsNewUser(user)

	token, err := utils.GenerateToken(user.ID.Hex(), user.Email, h.jwtSecret)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	response := map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    *user,
	}

	log.Printf("✓ New user registered: %s (ID: %s)", user.Email, user.ID.Hex())

	utils.RespondJSON(w, http.StatusCreated, response)
}

// notifyAdminsNewUser pushes a signup notification to every admin's devices
func (h *AuthHandler) notifyAdminsNewUser(user *models.User) {
	if h.fcmService == nil {
		return
	}

	admins, err := h.userRepo.FindAdmins()
	if err != nil {
		log.Printf("⚠️  Error fetching admins: %v", err)
		return
	}

	if len(admins) == 0 {
		return
	}

	name := user.Name
	if name == "" {
		name = user.Email
	}

	msg := &models.ReminderMessage{
		Title: "🎉 New signup!",
		Body:  fmt.Sprintf("%s just created an account", name),
		Data: map[string]string{
			"type":    "new_user",
			"user_id": user.ID.Hex(),
			"email":   user.Email,
		},
		Urgency: "normal",
	}

	sent := 0
	for _, admin := range admins {
		for _, token := range admin.EffectiveTokens() {
			if err := h.fcmService.SendReminder(token, msg); err != nil {
				log.Printf("⚠️  Admin signup notification failed: %v", err)
				continue
			}
			sent++
		}
	}

	log.Printf("📧 Signup notification delivered to %d admin device(s)", sent)
}

// Login handles user sign-in
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	if err := h.validateLoginRequest(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.userRepo.FindByEmail(email)
	if err != nil {
		log.Printf("Error finding user: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	if user == nil {
		utils.RespondError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		utils.RespondError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	if err := h.userRepo.UpdateLastSeen(user.ID); err != nil {
		log.Printf("⚠️  Error updating last seen: %v", err)
	}

	token, err := utils.GenerateToken(user.ID.Hex(), user.Email, h.jwtSecret)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	response := map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    *user,
	}

	log.Printf("✓ User signed in: %s (ID: %s)", user.Email, user.ID.Hex())
	utils.RespondJSON(w, http.StatusOK, response)
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    *user,
	})
}

// currentUser loads the authenticated caller, writing the error response
// on failure
func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return nil, false
	}

	user, err := h.userRepo.FindByHexID(claims.UserID)
	if err != nil {
		log.Printf("Error finding user: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return nil, false
	}
	if user == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrUserNotFound)
		return nil, false
	}

	return user, true
}

func (h *AuthHandler) validateRegisterRequest(req *models.RegisterRequest) error {
	if err := utils.ValidateEmail(req.Email); err != nil {
		return err
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return err
	}
	return nil
}

func (h *AuthHandler) validateLoginRequest(req *models.LoginRequest) error {
	if err := utils.ValidateEmail(req.Email); err != nil {
		return err
	}
	return utils.ValidateRequired("password", req.Password)
}
