package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ymmiz/berrifyApp/constants"
	"github.com/ymmiz/berrifyApp/database"
	"github.com/ymmiz/berrifyApp/middleware"
	"github.com/ymmiz/berrifyApp/models"
	"github.com/ymmiz/berrifyApp/utils"
)

// ScanHandler handles photo scan jobs for hardware devices
type ScanHandler struct {
	scanJobRepo *database.ScanJobRepository
	plantRepo   *database.PlantRepository
	deviceRepo  *database.DeviceRepository
}

// NewScanHandler creates a new ScanHandler
func NewScanHandler(db *mongo.Database) *ScanHandler {
	return &ScanHandler{
		scanJobRepo: database.NewScanJobRepository(db),
		plantRepo:   database.NewPlantRepository(db),
		deviceRepo:  database.NewDeviceRepository(db),
	}
}

// Request queues a photo capture on the device linked to the caller's plant
func (h *ScanHandler) Request(w http.ResponseWriter, r *http.Request) {
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

	device, err := h.deviceRepo.FindByPlant(plantID.Hex())
	if err != nil {
		log.Printf("Error finding device: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if device == nil {
		utils.RespondError(w, http.StatusBadRequest, "No device linked to this plant")
		return
	}

	job := &models.ScanJob{
		PlantID:   plantID.Hex(),
		DeviceID:  device.ID,
		CreatedBy: claims.UserID,
	}

	if err := h.scanJobRepo.Create(job); err != nil {
		log.Printf("Error queueing scan job: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	log.Printf("✓ Scan job %s queued for device %s", job.ID.Hex(), device.ID)
	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"job":     *job,
	})
}

// Poll returns the oldest queued job for a device, or nothing. Devices
// call this on an interval.
func (h *ScanHandler) Poll(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	deviceID := mux.Vars(r)["device_id"]
	if deviceID == "" {
		utils.RespondError(w, http.StatusBadRequest, "Device id is required")
		return
	}

	job, err := h.scanJobRepo.NextQueued(deviceID)
	if err != nil {
		log.Printf("Error polling scan jobs: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	if job == nil {
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"job":     nil,
		})
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"job":     *job,
	})
}

// Complete finishes a scan job after the device uploaded its photo (or
// failed to take one)
func (h *ScanHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	jobID, ok := ParseObjectIDVar(w, mux.Vars(r), "job_id", constants.ErrInvalidJobID)
	if !ok {
		return
	}

	job, err := h.scanJobRepo.FindByID(jobID)
	if err != nil {
		log.Printf("Error finding scan job: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if job == nil {
		utils.RespondError(w, http.StatusNotFound, constants.ErrJobNotFound)
		return
	}

	if job.Status != models.ScanStatusQueued {
		utils.RespondError(w, http.StatusConflict, "Scan job already settled")
		return
	}

	var req models.CompleteScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	if req.Error != "" {
		if err := h.scanJobRepo.MarkFailed(jobID, req.Error); err != nil {
			log.Printf("Error failing scan job: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
			return
		}

		log.Printf("⚠️  Scan job %s failed on device: %s", jobID.Hex(), req.Error)
		utils.RespondSuccess(w, "Scan job marked failed", nil)
		return
	}

	if req.ImageURL == "" {
		utils.RespondError(w, http.StatusBadRequest, "Image URL is required")
		return
	}

	if err := h.scanJobRepo.MarkUploaded(jobID, req.ImageURL, req.StoragePath); err != nil {
		log.Printf("Error completing scan job: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	// The plant card shows the freshest photo and scan time.
	plantID, err := primitive.ObjectIDFromHex(job.PlantID)
	if err == nil {
		now := time.Now()
		updateData := map[string]interface{}{
			"photo_url":      req.ImageURL,
			"last_scan_time": now,
		}
		if err := h.plantRepo.Update(plantID, updateData); err != nil {
			log.Printf("⚠️  Error refreshing plant photo: %v", err)
		}
	}

	log.Printf("✓ Scan job %s completed", jobID.Hex())
	utils.RespondSuccess(w, "Scan job completed", nil)
}
