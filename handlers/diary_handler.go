package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ymmiz/berrifyApp/constants"
	"github.com/ymmiz/berrifyApp/database"
	"github.com/ymmiz/berrifyApp/middleware"
	"github.com/ymmiz/berrifyApp/models"
	"github.com/ymmiz/berrifyApp/utils"
)

// DiaryHandler handles plant diary requests
type DiaryHandler struct {
	diaryRepo *database.DiaryRepository
	plantRepo *database.PlantRepository
}

// NewDiaryHandler creates a new DiaryHandler
func NewDiaryHandler(db *mongo.Database) *DiaryHandler {
	return &DiaryHandler{
		diaryRepo: database.NewDiaryRepository(db),
		plantRepo: database.NewPlantRepository(db),
	}
}

// ownedPlant checks the caller owns the plant in the URL
func (h *DiaryHandler) ownedPlant(w http.ResponseWriter, r *http.Request) (*models.Plant, bool) {
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

// List returns a plant's diary entries, newest first
func (h *DiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	plant, ok := h.ownedPlant(w, r)
	if !ok {
		return
	}

	entries, err := h.diaryRepo.FindByPlant(plant.ID)
	if err != nil {
		log.Printf("Error listing diary entries: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"entries": entries,
		"total":   len(entries),
	})
}

// Create adds a diary entry to a plant
func (h *DiaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	plant, ok := h.ownedPlant(w, r)
	if !ok {
		return
	}

	var req models.DiaryEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		utils.RespondError(w, http.StatusBadRequest, "Title is required")
		return
	}

	entry := &models.DiaryEntry{
		PlantID:  plant.ID,
		Title:    title,
		PhotoURL: req.PhotoURL,
		Moisture: req.Moisture,
	}

	if err := h.diaryRepo.Create(entry); err != nil {
		log.Printf("Error creating diary entry: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"entry":   *entry,
	})
}

// Update edits one diary entry
func (h *DiaryHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	plant, ok := h.ownedPlant(w, r)
	if !ok {
		return
	}

	entryID, ok := ParseObjectIDVar(w, mux.Vars(r), "entry_id", constants.ErrInvalidEntryID)
	if !ok {
		return
	}

	entry, err := h.diaryRepo.FindByID(entryID)
	if err != nil {
		log.Printf("Error finding diary entry: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if entry == nil || entry.PlantID != plant.ID {
		utils.RespondError(w, http.StatusNotFound, constants.ErrEntryNotFound)
		return
	}

	var req models.DiaryEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}

	updateData := map[string]interface{}{}
	if title := strings.TrimSpace(req.Title); title != "" {
		updateData["title"] = title
	}
	if req.PhotoURL != "" {
		updateData["photo_url"] = req.PhotoURL
	}
	if req.Moisture != nil {
		updateData["moisture"] = *req.Moisture
	}

	if len(updateData) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	if err := h.diaryRepo.Update(entryID, updateData); err != nil {
		log.Printf("Error updating diary entry: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondSuccess(w, "Diary entry updated", nil)
}

// Delete removes one diary entry
func (h *DiaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	plant, ok := h.ownedPlant(w, r)
	if !ok {
		return
	}

	entryID, ok := ParseObjectIDVar(w, mux.Vars(r), "entry_id", constants.ErrInvalidEntryID)
	if !ok {
		return
	}

	entry, err := h.diaryRepo.FindByID(entryID)
	if err != nil {
		log.Printf("Error finding diary entry: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if entry == nil || entry.PlantID != plant.ID {
		utils.RespondError(w, http.StatusNotFound, constants.ErrEntryNotFound)
		return
	}

	if err := h.diaryRepo.Delete(entryID); err != nil {
		log.Printf("Error deleting diary entry: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondSuccess(w, "Diary entry deleted", nil)
}
