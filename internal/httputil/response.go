// Package httputil writes JSON responses for the archive API.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/banshee-data/monet-trippy/internal/db"
	"github.com/banshee-data/monet-trippy/internal/monitoring"
	"github.com/banshee-data/monet-trippy/internal/stimulus"
)

// WriteJSON writes data as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		monitoring.Logf("failed to encode json response: %v", err)
	}
}

// WriteJSONOK writes data as a 200 OK JSON response.
func WriteJSONOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

// WriteJSONError writes {"error": msg} with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// StatusFor maps archive and reconstruction errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, stimulus.ErrParameter), errors.Is(err, stimulus.ErrConsistency):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteError reports err as a JSON error. Unclassified errors are prefixed
// with what failed.
func WriteError(w http.ResponseWriter, what string, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = fmt.Sprintf("failed to %s: %v", what, err)
	}
	WriteJSONError(w, status, msg)
}
