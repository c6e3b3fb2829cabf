package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ymmiz/berrifyApp/constants"
	"github.com/ymmiz/berrifyApp/database"
	"github.com/ymmiz/berrifyApp/middleware"
	"github.com/ymmiz/berrifyApp/models"
	"github.com/ymmiz/berrifyApp/utils"
)

// MoistureHandler handles sensor reading ingestion and history
type MoistureHandler struct {
	moistureRepo *database.MoistureRepository
	plantRepo    *database.PlantRepository
}

// NewMoistureHandler creates a new MoistureHandler
func NewMoistureHandler(db *mongo.Database) *MoistureHandler {
	return &MoistureHandler{
		moistureRepo: database.NewMoistureRepository(db),
		plantRepo:    database.NewPlantRepository(db),
	}
}

// moistureStatus derives the display status from a reading. Thresholds
// match the mobile client's gauge bands.
func moistureStatus(moisture float64) (status, alert string) {
	switch {
	case moisture < 30:
		return "Dry", "Needs water soon"
	case moisture <= 70:
		return "Healthy", ""
	default:
		return "Wet", "Check drainage"
	}
}

// Ingest records a reading pushed by a hardware device and refreshes the
// plant's cached status
func (h *MoistureHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
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

	var req models.MoistureReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	if req.Moisture == nil || *req.Moisture < 0 || *req.Moisture > 100 {
		utils.RespondError(w, http.StatusBadRequest, "Moisture must be between 0 and 100")
		return
	}

	entry := &models.MoistureLog{
		PlantID:  plantID.Hex(),
		DeviceID: req.DeviceID,
		Moisture: *req.Moisture,
	}

	if err := h.moistureRepo.Create(entry); err != nil {
		log.Printf("Error storing moisture log: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	status, alert := moistureStatus(*req.Moisture)
	updateData := map[string]interface{}{
		"moisture":     *req.Moisture,
		"status":       status,
		"status_alert": alert,
	}
	if err := h.plantRepo.Update(plantID, updateData); err != nil {
		log.Printf("⚠️  Error refreshing plant status: %v", err)
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"moisture": *req.Moisture,
		"status":   status,
	})
}

// History returns recent readings of one of the caller's plants
func (h *MoistureHandler) History(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
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

	limit := parseLimit(r.URL.Query(), 50)

	logs, err := h.moistureRepo.FindByPlant(plantID.Hex(), limit)
	if err != nil {
		log.Printf("Error listing moisture logs: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"readings": logs,
		"total":    len(logs),
	})
}

func parseLimit(query url.Values, fallback int64) int64 {
	raw := query.Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 || n > 500 {
		return fallback
	}
	return n
}
