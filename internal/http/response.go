package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bindo/internal/core"
	"bindo/internal/recur"
	"bindo/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps known error kinds to HTTP statuses. Anything else
// is a 500 with the detail kept out of the body.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed", "url", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrEmptyName,
		core.ErrInvalidStartDate,
		core.ErrIntervalReversed,
		core.ErrIntervalEqual,
		core.ErrOccurrenceOrder,
		core.ErrInvalidAmount,
		recur.ErrInsufficientData,
		recur.ErrUnsupportedPattern,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
