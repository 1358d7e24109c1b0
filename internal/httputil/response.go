// Package httputil holds small helpers shared by HTTP handlers.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// WriteJSON writes data as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// WriteJSONAPI writes data with the application/vnd.api+json content type.
func WriteJSONAPI(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON:API response", slog.String("error", err.Error()))
	}
}

// JSONAPIErrorObject is a single JSON:API error.
type JSONAPIErrorObject struct {
	Status int    `json:"status"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// JSONAPIErrorResponse is the error envelope.
type JSONAPIErrorResponse struct {
	Errors []JSONAPIErrorObject `json:"errors"`
}

// WriteJSONAPIError writes a single-error JSON:API response.
func WriteJSONAPIError(w http.ResponseWriter, status int, code, title, detail string) {
	WriteJSONAPI(w, status, JSONAPIErrorResponse{
		Errors: []JSONAPIErrorObject{{
			Status: status,
			Code:   code,
			Title:  title,
			Detail: detail,
		}},
	})
}

func WriteJSONAPIValidationError(w http.ResponseWriter, detail string) {
	WriteJSONAPIError(w, http.StatusBadRequest, "validation_failed", "Validation Failed", detail)
}

func WriteJSONAPIUnauthorizedError(w http.ResponseWriter, detail string) {
	WriteJSONAPIError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", detail)
}

func WriteJSONAPIForbiddenError(w http.ResponseWriter, detail string) {
	WriteJSONAPIError(w, http.StatusForbidden, "forbidden", "Forbidden", detail)
}

func WriteJSONAPINotFoundError(w http.ResponseWriter, detail string) {
	WriteJSONAPIError(w, http.StatusNotFound, "not_found", "Resource Not Found", detail)
}

// WriteJSONAPIInternalError hides the cause; log it before calling.
func WriteJSONAPIInternalError(w http.ResponseWriter) {
	WriteJSONAPIError(w, http.StatusInternalServerError, "internal_error", "Internal Server Error", "An internal error occurred")
}
