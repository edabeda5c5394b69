package api

import (
	"encoding/json"
	"net/http"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/errors"
)

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error          string             `json:"error"`
	Code           string             `json:"code"`
	Details        interface{}        `json:"details,omitempty"`
	SuggestedFixes []errors.FixAction `json:"suggestedFixes,omitempty"`
	Drilldowns     []errors.Drilldown `json:"drilldowns,omitempty"`
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err error, status int) {
	resp := ErrorResponse{
		Error: err.Error(),
	}

	// If it's a ModelError, include additional information
	if modelErr, ok := err.(*errors.ModelError); ok {
		resp.Code = string(modelErr.Code)
		resp.Details = modelErr.Details
		resp.SuggestedFixes = modelErr.SuggestedFixes
		resp.Drilldowns = modelErr.Drilldowns
	} else {
		resp.Code = string(errors.InternalError)
	}

	WriteJSON(w, resp, status)
}

// WriteModelError writes a ModelError with automatic status code mapping
func WriteModelError(w http.ResponseWriter, err *errors.ModelError) {
	WriteError(w, err, MapModelErrorToStatus(err.Code))
}

// WriteEngineError writes any error coming out of the query engine, mapping
// domain errors to their status and everything else to a 500.
func WriteEngineError(w http.ResponseWriter, err error) {
	if modelErr, ok := err.(*errors.ModelError); ok {
		WriteModelError(w, modelErr)
		return
	}
	WriteError(w, err, http.StatusInternalServerError)
}

// MapModelErrorToStatus maps model error codes to HTTP status codes
func MapModelErrorToStatus(code errors.ErrorCode) int {
	switch code {
	case errors.SourceMissing:
		return http.StatusServiceUnavailable // 503
	case errors.FetchFailed:
		return http.StatusBadGateway // 502
	case errors.ParseFailed:
		return http.StatusUnprocessableEntity // 422
	case errors.TransformFailed:
		return http.StatusUnprocessableEntity // 422
	case errors.ElementNotFound:
		return http.StatusNotFound // 404
	case errors.KindInvalid:
		return http.StatusBadRequest // 400
	case errors.SnapshotMissing:
		return http.StatusNotFound // 404
	case errors.StorageFailed:
		return http.StatusInternalServerError // 500
	case errors.TokenInvalid:
		return http.StatusUnauthorized // 401
	case errors.InternalError:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// BadRequest writes a 400 Bad Request error for parameter validation
func BadRequest(w http.ResponseWriter, message string) {
	WriteJSON(w, ErrorResponse{
		Error: message,
		Code:  "BAD_REQUEST",
	}, http.StatusBadRequest)
}

// InternalError writes a 500 Internal Server Error. The underlying error is
// logged by the caller, never echoed to the client.
func InternalError(w http.ResponseWriter, message string, err error) {
	WriteError(w, &errors.ModelError{
		Code:    errors.InternalError,
		Message: message,
	}, http.StatusInternalServerError)
}
