// Package handler implements the JSON API handlers. Handlers validate and
// decode requests, delegate to the roster service or stores, and translate
// domain errors to HTTP statuses.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dbritton/callsheet/internal/assignment"
	"github.com/dbritton/callsheet/internal/roster"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// writeDomainError maps the roster and assignment error taxonomy onto HTTP
// statuses. Unknown errors surface as a 500 without leaking details.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assignment.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, roster.ErrDecisionNotFound):
		writeError(w, http.StatusNotFound, "decision not found")
	case errors.Is(err, assignment.ErrUnknownRole):
		writeError(w, http.StatusBadRequest, "unknown role")
	case errors.Is(err, assignment.ErrRoleExists):
		writeError(w, http.StatusConflict, "role already exists")
	case errors.Is(err, assignment.ErrInvalidCount):
		writeError(w, http.StatusBadRequest, "invalid role count")
	case errors.Is(err, assignment.ErrStaffNotAssigned):
		writeError(w, http.StatusBadRequest, "staff member not assigned")
	case errors.Is(err, assignment.ErrConfirmationRequired):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":                 "confirmation required",
			"confirmation_required": true,
		})
	case errors.Is(err, assignment.ErrDecisionNotPending):
		writeError(w, http.StatusConflict, "decision already resolved")
	case errors.Is(err, assignment.ErrStaleSnapshot):
		writeError(w, http.StatusConflict, "event changed since it was loaded, refresh and retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
