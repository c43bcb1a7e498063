package handler

import (
	"errors"
	"net/http"

	"app/internal/apperr"
)

// writeEnrollmentError maps the engine's typed failures onto HTTP statuses.
// Anything unrecognized is an infrastructure failure and becomes a 500.
func writeEnrollmentError(w http.ResponseWriter, err error) {
	switch {
	case apperr.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, apperr.ErrConflictRetryable):
		http.Error(w, err.Error(), http.StatusConflict)
	case apperr.IsClientError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
