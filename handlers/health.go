package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/ymmiz/berrifyApp/database"
	"github.com/ymmiz/berrifyApp/utils"
)

var startTime = time.Now()

// HealthHandler serves the health endpoints
type HealthHandler struct {
	environment string
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(environment string) *HealthHandler {
	return &HealthHandler{environment: environment}
}

// Health reports server status with basic metrics
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(startTime).String()

	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "error"
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"message":    "Server is running",
		"env":        h.environment,
		"database":   "MongoDB",
		"db_status":  dbStatus,
		"uptime":     uptime,
		"go_version": runtime.Version(),
	})
}
