package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dbritton/callsheet/internal/store"
	ws "github.com/dbritton/callsheet/internal/websocket"
)

type StaffHandler struct {
	staff  *store.StaffStore
	hub    *ws.Hub
	logger *slog.Logger
}

func NewStaffHandler(staff *store.StaffStore, hub *ws.Hub, logger *slog.Logger) *StaffHandler {
	return &StaffHandler{staff: staff, hub: hub, logger: logger}
}

type staffRequest struct {
	Name        string `json:"name"`
	DefaultRole string `json:"default_role"`
}

func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.staff.List()
	if err != nil {
		h.logger.Error("list staff", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list staff")
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	exists, err := h.staff.NameExists(req.Name, 0)
	if err != nil {
		h.logger.Error("check staff name", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create staff member")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "a staff member with that name already exists")
		return
	}

	member, err := h.staff.Create(req.Name, req.DefaultRole)
	if err != nil {
		h.logger.Error("create staff", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create staff member")
		return
	}

	h.hub.Broadcast(ws.NewMessage("staff", "created", member.ID, nil))
	writeJSON(w, http.StatusCreated, member)
}

func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid staff id")
		return
	}

	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	exists, err := h.staff.NameExists(req.Name, id)
	if err != nil {
		h.logger.Error("check staff name", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update staff member")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "a staff member with that name already exists")
		return
	}

	member, err := h.staff.Update(id, req.Name, req.DefaultRole)
	if err != nil {
		h.logger.Error("update staff", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update staff member")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "staff member not found")
		return
	}

	h.hub.Broadcast(ws.NewMessage("staff", "updated", member.ID, nil))
	writeJSON(w, http.StatusOK, member)
}

func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid staff id")
		return
	}

	if err := h.staff.Delete(id); err != nil {
		h.logger.Error("delete staff", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete staff member")
		return
	}

	h.hub.Broadcast(ws.NewMessage("staff", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
