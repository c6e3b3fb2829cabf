package utils

import (
	"encoding/json"
	"net/http"

	"github.com/ymmiz/berrifyApp/models"
)

// RespondJSON writes a JSON response
func RespondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}

	if statusCode > 0 {
		w.WriteHeader(statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already out; best we can do is a bare error body
			if statusCode == http.StatusOK {
				w.Write([]byte(`{"error":"Internal Server Error","message":"JSON encoding failed"}`))
			}
		}
	}
}

// RespondError writes a JSON error response
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	RespondJSON(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// RespondSuccess writes a JSON success response
func RespondSuccess(w http.ResponseWriter, message string, data interface{}) {
	RespondJSON(w, http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}
