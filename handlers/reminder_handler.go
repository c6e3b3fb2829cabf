package handlers

import (
	"log"
	"net/http"

	"github.com/ymmiz/berrifyApp/utils"
)

// ReminderRunner runs one watering-reminder pass and reports how many
// notifications went out.
type ReminderRunner interface {
	SendGroupedReminders() (int, error)
}

// ReminderHandler exposes the manual trigger of the watering reminder job
type ReminderHandler struct {
	reminders ReminderRunner
}

// NewReminderHandler creates a new ReminderHandler
func NewReminderHandler(reminders ReminderRunner) *ReminderHandler {
	return &ReminderHandler{reminders: reminders}
}

// SendNow runs the reminder job immediately. Only store-level failures
// produce an error response; routine per-token delivery failures are
// absorbed by the job itself.
func (h *ReminderHandler) SendNow(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	log.Println("🔔 Manual watering reminder run requested")

	sent, err := h.reminders.SendGroupedReminders()
	if err != nil {
		log.Printf("❌ Watering reminder run failed: %v", err)
		utils.RespondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"sent": sent,
	})
}
