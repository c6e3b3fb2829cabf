package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ymmiz/berrifyApp/constants"
	"github.com/ymmiz/berrifyApp/database"
	"github.com/ymmiz/berrifyApp/middleware"
	"github.com/ymmiz/berrifyApp/models"
	"github.com/ymmiz/berrifyApp/utils"
)

// PlantHandler handles plant CRUD and watering requests
type PlantHandler struct {
	plantRepo    *database.PlantRepository
	diaryRepo    *database.DiaryRepository
	moistureRepo *database.MoistureRepository
	scanJobRepo  *database.ScanJobRepository
	deviceRepo   *database.DeviceRepository
}

// NewPlantHandler creates a new PlantHandler
func NewPlantHandler(db *mongo.Database) *PlantHandler {
	return &PlantHandler{
		plantRepo:    database.NewPlantRepository(db),
		diaryRepo:    database.NewDiaryRepository(db),
		moistureRepo: database.NewMoistureRepository(db),
		scanJobRepo:  database.NewScanJobRepository(db),
		deviceRepo:   database.NewDeviceRepository(db),
	}
}

// ownedPlant loads a plant and checks the caller owns it. Writes the error
// response and returns false otherwise.
func (h *PlantHandler) ownedPlant(w http.ResponseWriter, r *http.Request) (*models.Plant, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return nil, false
	}

	id, ok := ParsePlantID(w, r)
	if !ok {
		return nil, false
	}

	plant, err := h.plantRepo.FindByID(id)
	if err != nil {
		log.Printf("Error finding plant: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return nil, false
	}
	if plant == nil {
		utils.RespondError(w, http.StatusNotFound, constants.ErrPlantNotFound)
		return nil, false
	}

	if plant.OwnerID != claims.UserID {
		utils.RespondError(w, http.StatusForbidden, constants.ErrNotPlantOwner)
		return nil, false
	}

	return plant, true
}

// List returns the caller's active plants
func (h *PlantHandler) List(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	plants, err := h.plantRepo.FindByOwner(claims.UserID)
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

// Create adds a new plant for the caller
func (h *PlantHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	var req models.CreatePlantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	if err := utils.ValidatePlantName(req.Name); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = models.PlantModePhone
	}
	if mode != models.PlantModePhone && mode != models.PlantModeHardware {
		utils.RespondError(w, http.StatusBadRequest, "Invalid tracking mode")
		return
	}

	name := strings.TrimSpace(req.Name)

	// One name per owner, case-insensitive
	exists, err := h.plantRepo.NameExists(claims.UserID, models.MakeNameKey(name), primitive.NilObjectID)
	if err != nil {
		log.Printf("Error checking plant name: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if exists {
		utils.RespondError(w, http.StatusConflict, "You already have a plant with this name")
		return
	}

	plant := &models.Plant{
		OwnerID:      claims.UserID,
		Name:         name,
		Mode:         mode,
		TrackingDesc: models.TrackingDescription(mode),
		TrackingIcon: models.TrackingIcon(mode),
		Status:       "Unknown",
		Active:       true,
		CreatedAt:    time.Now(),
	}

	if err := h.plantRepo.Create(plant); err != nil {
		log.Printf("Error creating plant: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Could not create plant")
		return
	}

	log.Printf("✓ Plant created: %s (owner %s)", plant.Name, claims.UserID)
	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"plant":   *plant,
	})
}

// Get returns one plant of the caller
func (h *PlantHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	plant, ok := h.ownedPlant(w, r)
	if !ok {
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"plant":   *plant,
	})
}

// Update applies a partial update to one of the caller's plants
func (h *PlantHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	plant, ok := h.ownedPlant(w, r)
	if !ok {
		return
	}

	var req models.UpdatePlantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	updateData := map[string]interface{}{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := utils.ValidatePlantName(name); err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}

		exists, err := h.plantRepo.NameExists(plant.OwnerID, models.MakeNameKey(name), plant.ID)
		if err != nil {
			log.Printf("Error checking plant name: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
			return
		}
		if exists {
			utils.RespondError(w, http.StatusConflict, "You already have a plant with this name")
			return
		}

		updateData["name"] = name
		updateData["name_key"] = models.MakeNameKey(name)
	}

	if req.Mode != nil {
		if *req.Mode != models.PlantModePhone && *req.Mode != models.PlantModeHardware {
			utils.RespondError(w, http.StatusBadRequest, "Invalid tracking mode")
			return
		}
		updateData["mode"] = *req.Mode
		updateData["tracking_description"] = models.TrackingDescription(*req.Mode)
		updateData["tracking_icon"] = models.TrackingIcon(*req.Mode)
	}

	if req.Status != nil {
		updateData["status"] = *req.Status
	}
	if req.StatusAlert != nil {
		updateData["status_alert"] = *req.StatusAlert
	}
	if req.Moisture != nil {
		updateData["moisture"] = *req.Moisture
	}
	if req.Active != nil {
		updateData["active"] = *req.Active
	}

	if len(updateData) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	if err := h.plantRepo.Update(plant.ID, updateData); err != nil {
		log.Printf("Error updating plant: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondSuccess(w, "Plant updated", nil)
}

// Water records a watering on one of the caller's plants. This is what
// excludes the plant from the day's reminder run.
func (h *PlantHandler) Water(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	plant, ok := h.ownedPlant(w, r)
	if !ok {
		return
	}

	now := time.Now()
	if err := h.plantRepo.MarkWatered(plant.ID, now); err != nil {
		log.Printf("Error marking plant watered: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	// Watering also lands in the diary so the timeline stays complete.
	entry := &models.DiaryEntry{
		PlantID:   plant.ID,
		Title:     "Watered 💧",
		Moisture:  plant.Moisture,
		Timestamp: now,
	}
	if err := h.diaryRepo.Create(entry); err != nil {
		log.Printf("⚠️  Error writing watering diary entry: %v", err)
	}

	log.Printf("✓ Plant watered: %s", plant.Name)
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"last_watered_at": now,
	})
}

// Delete soft-deletes a plant by default; ?permanent=true removes the
// plant and cascades to its diary, readings, scan jobs and device link.
func (h *PlantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	plant, ok := h.ownedPlant(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("permanent") != "true" {
		if err := h.plantRepo.SoftDelete(plant.ID); err != nil {
			log.Printf("Error soft-deleting plant: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
			return
		}

		log.Printf("✓ Plant archived: %s", plant.Name)
		utils.RespondSuccess(w, "Plant archived", nil)
		return
	}

	plantID := plant.ID.Hex()

	if err := h.diaryRepo.DeleteByPlant(plant.ID); err != nil {
		log.Printf("⚠️  Error deleting diary entries: %v", err)
	}
	if err := h.moistureRepo.DeleteByPlant(plantID); err != nil {
		log.Printf("⚠️  Error deleting moisture logs: %v", err)
	}
	if err := h.scanJobRepo.DeleteByPlant(plantID); err != nil {
		log.Printf("⚠️  Error deleting scan jobs: %v", err)
	}
	if err := h.deviceRepo.UnlinkByPlant(plantID); err != nil {
		log.Printf("⚠️  Error unlinking device: %v", err)
	}

	if err := h.plantRepo.Delete(plant.ID); err != nil {
		log.Printf("Error deleting plant: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	log.Printf("🗑️  Plant permanently deleted: %s", plant.Name)
	utils.RespondSuccess(w, "Plant permanently deleted", nil)
}
