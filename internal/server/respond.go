package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"steward/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeServiceError maps the error taxonomy onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, services.ErrConflict):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func decodeJSON(r *http.Request, target any) error {
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return services.Wrap(services.ErrValidation, "server", "decode request", "invalid request body", err)
	}
	return nil
}
