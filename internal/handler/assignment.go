package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dbritton/callsheet/internal/roster"
)

// AssignmentHandler exposes the staffing mutations: assigning and removing
// staff, the move decision lifecycle, and role management.
type AssignmentHandler struct {
	roster *roster.Service
	logger *slog.Logger
}

func NewAssignmentHandler(rs *roster.Service, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{roster: rs, logger: logger}
}

type assignRequest struct {
	Role        string  `json:"role"`
	StaffIDs    []int64 `json:"staff_ids"`
	BaseVersion int64   `json:"base_version"`
}

// Assign adds candidates to a role. Conflict-free candidates commit right
// away; conflicted ones come back as a pending decision for the operator to
// confirm or cancel.
func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Role) == "" {
		writeError(w, http.StatusBadRequest, "role is required")
		return
	}
	if len(req.StaffIDs) == 0 {
		writeError(w, http.StatusBadRequest, "staff_ids is required")
		return
	}

	result, err := h.roster.Assign(eventID, req.BaseVersion, req.Role, req.StaffIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if result.Decision != nil {
		// Part of the request is parked behind a confirmation.
		status = http.StatusAccepted
	}
	writeJSON(w, status, result)
}

type confirmRequest struct {
	StaffIDs []int64 `json:"staff_ids"`
}

// ConfirmMove applies the chosen subset of a pending decision, moving each
// chosen staff member off their conflicting events in one batch. An empty
// selection cancels the decision.
func (h *AssignmentHandler) ConfirmMove(w http.ResponseWriter, r *http.Request) {
	decisionID := r.PathValue("id")

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	result, err := h.roster.ConfirmMove(decisionID, req.StaffIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CancelMove drops a pending decision without touching any event.
func (h *AssignmentHandler) CancelMove(w http.ResponseWriter, r *http.Request) {
	if err := h.roster.CancelMove(r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDecision returns a pending decision.
func (h *AssignmentHandler) GetDecision(w http.ResponseWriter, r *http.Request) {
	decision, err := h.roster.Decision(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

// Unassign removes one staff member from an event.
func (h *AssignmentHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	staffID, err := strconv.ParseInt(r.PathValue("staff_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid staff id")
		return
	}

	event, err := h.roster.Unassign(eventID, baseVersionParam(r), staffID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

type roleRequest struct {
	Role        string `json:"role"`
	Count       int    `json:"count"`
	BaseVersion int64  `json:"base_version"`
}

// AddRole defines a new role on the event.
func (h *AssignmentHandler) AddRole(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Role) == "" {
		writeError(w, http.StatusBadRequest, "role is required")
		return
	}

	event, err := h.roster.AddRole(eventID, req.BaseVersion, req.Role, req.Count)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// ResizeRole changes a role's required headcount. Shrinking below the
// current assignment count is rejected; resizing to zero requires the
// delete confirmation flow instead.
func (h *AssignmentHandler) ResizeRole(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	event, err := h.roster.ResizeRole(eventID, req.BaseVersion, r.PathValue("role"), req.Count)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DeleteRole removes a role and everyone assigned to it. The request must
// carry confirmed=true; without it the handler answers 409 so the client can
// prompt the operator.
func (h *AssignmentHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	confirmed := r.URL.Query().Get("confirmed") == "true"

	event, err := h.roster.DeleteRole(eventID, baseVersionParam(r), r.PathValue("role"), confirmed)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// ClearRole removes every assignment holding the role but keeps the role.
func (h *AssignmentHandler) ClearRole(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := h.roster.ClearRole(eventID, baseVersionParam(r), r.PathValue("role"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// baseVersionParam reads the optional base_version query parameter; 0 skips
// the staleness check.
func baseVersionParam(r *http.Request) int64 {
	v, _ := strconv.ParseInt(r.URL.Query().Get("base_version"), 10, 64)
	return v
}
