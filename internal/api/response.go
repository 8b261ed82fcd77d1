package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/agrosoja/agrosoja/internal/catalog"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// catalogError maps catalog errors to responses. Unexpected errors are logged
// with action and hidden from the client.
func catalogError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, catalog.ErrInvalidInput), errors.Is(err, catalog.ErrImageRequired):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("failed to "+action, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to "+action)
	}
}
