package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ymmiz/berrifyApp/constants"
	"github.com/ymmiz/berrifyApp/utils"
)

// RequireMethod checks the HTTP method. Returns false and writes the error
// response when it does not match.
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		utils.RespondError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
		return false
	}
	return true
}

// ParsePlantID extracts and validates plant_id from the URL vars.
func ParsePlantID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	vars := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(vars["plant_id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidPlantID)
		return primitive.NilObjectID, false
	}
	return id, true
}

// ParseObjectIDVar extracts and validates an ObjectID from the URL vars
// (configurable key and error message).
func ParseObjectIDVar(w http.ResponseWriter, vars map[string]string, key, errMsg string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(vars[key])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, errMsg)
		return primitive.NilObjectID, false
	}
	return id, true
}
