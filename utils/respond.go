package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// WriteJSON writes v as the JSON response body with the given status
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError maps err to a status code and writes {"error": msg}. Internal
// errors are logged and replaced by fallback so store details never leak.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error, fallback string) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		WriteJSON(w, appErr.Status(), map[string]string{"error": appErr.Message})
		return
	}
	if log != nil {
		log.Error(fallback, zap.Error(err))
	}
	WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": fallback})
}
