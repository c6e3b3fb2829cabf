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
	"github.com/ymmiz/berrifyApp/models"
	"github.com/ymmiz/berrifyApp/utils"
)

// DeviceHandler handles hardware device linking
type DeviceHandler struct {
	deviceRepo *database.DeviceRepository
	plantRepo  *database.PlantRepository
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(db *mongo.Database) *DeviceHandler {
	return &DeviceHandler{
		deviceRepo: database.NewDeviceRepository(db),
		plantRepo:  database.NewPlantRepository(db),
	}
}

type linkDeviceRequest struct {
	DeviceID string `json:"device_id"`
}

// Link associates a hardware device with one of the caller's plants
func (h *DeviceHandler) Link(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	plantID, ok := ParsePlantID(w, r)
	if !ok {
		return
	}

	plant, err := h.plantRepo.FindByID(plantID)
	if err != nil {
		log.Printf("Error finding plant: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if plant == nil {
		utils.RespondError(w, http.StatusNotFound, constants.ErrPlantNotFound)
		return
	}
	if plant.OwnerID != claims.UserID {
		utils.RespondError(w, http.StatusForbidden, constants.ErrNotPlantOwner)
		return
	}

	var req linkDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		utils.RespondError(w, http.StatusBadRequest, "Device id is required")
		return
	}

	if err := h.deviceRepo.Link(deviceID, plantID.Hex()); err != nil {
		log.Printf("Error linking device: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	// Linking a sensor switches the plant to hardware tracking.
	updateData := map[string]interface{}{
		"mode":                 models.PlantModeHardware,
		"tracking_description": models.TrackingDescription(models.PlantModeHardware),
		"tracking_icon":        models.TrackingIcon(models.PlantModeHardware),
	}
	if err := h.plantRepo.Update(plantID, updateData); err != nil {
		log.Printf("⚠️  Error switching plant to hardware mode: %v", err)
	}

	log.Printf("✓ Device %s linked to plant %s", deviceID, plant.Name)
	utils.RespondSuccess(w, "Device linked", nil)
}

// Unlink removes the device association of one of the caller's plants
func (h *DeviceHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	plantID, ok := ParsePlantID(w, r)
	if !ok {
		return
	}

	plant, err := h.plantRepo.FindByID(plantID)
	if err != nil {
		log.Printf("Error finding plant: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if plant == nil {
		utils.RespondError(w, http.StatusNotFound, constants.ErrPlantNotFound)
		return
	}
	if plant.OwnerID != claims.UserID {
		utils.RespondError(w, http.StatusForbidden, constants.ErrNotPlantOwner)
		return
	}

	if err := h.deviceRepo.UnlinkByPlant(plantID.Hex()); err != nil {
		log.Printf("Error unlinking device: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	updateData := map[string]interface{}{
		"mode":                 models.PlantModePhone,
		"tracking_description": models.TrackingDescription(models.PlantModePhone),
		"tracking_icon":        models.TrackingIcon(models.PlantModePhone),
	}
	if err := h.plantRepo.Update(plantID, updateData); err != nil {
		log.Printf("⚠️  Error switching plant to phone mode: %v", err)
	}

	log.Printf("✓ Device unlinked from plant %s", plant.Name)
	utils.RespondSuccess(w, "Device unlinked", nil)
}
