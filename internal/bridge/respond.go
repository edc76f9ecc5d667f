package bridge

import (
	"encoding/json"
	"net/http"

	"appdna/internal/errors"
)

// errorBody is the error envelope both bridges speak. Unmatched routes
// additionally enumerate the known endpoints so external callers can
// discover the surface.
type errorBody struct {
	Success            bool     `json:"success"`
	Error              string   `json:"error"`
	AvailableEndpoints []string `json:"availableEndpoints,omitempty"`
}

// writeJSON writes data as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes the canonical {"success":false,"error":...} envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Success: false, Error: message})
}

// writeServiceError writes err with the status its code maps to.
func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusForCode(errors.CodeOf(err)), errors.MessageOf(err))
}

// writeNotFound writes the 404 discoverability contract: the envelope plus
// the endpoints this bridge serves.
func writeNotFound(w http.ResponseWriter, endpoints []string) {
	writeJSON(w, http.StatusNotFound, errorBody{
		Success:            false,
		Error:              "endpoint not found",
		AvailableEndpoints: endpoints,
	})
}

// statusForCode maps service error codes to HTTP status codes.
func statusForCode(code errors.ErrorCode) int {
	switch code {
	case errors.InvalidRequest, errors.ModelNotLoaded, errors.ValidationFailed,
		errors.ObjectNotLookup, errors.RoleObjectMissing, errors.DuplicateName,
		errors.InvalidStory:
		return http.StatusBadRequest // 400
	case errors.ObjectNotFound, errors.ItemNotFound, errors.FileNotFound:
		return http.StatusNotFound // 404
	case errors.DuplicateStory:
		return http.StatusConflict // 409
	case errors.Unauthorized:
		return http.StatusUnauthorized // 401
	case errors.CommandRejected:
		return http.StatusForbidden // 403
	case errors.UnknownCommand, errors.SerializeFailed, errors.InternalError:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}
