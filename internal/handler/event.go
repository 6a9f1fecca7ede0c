package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dbritton/callsheet/internal/model"
	"github.com/dbritton/callsheet/internal/roster"
	"github.com/dbritton/callsheet/internal/schedule"
	"github.com/dbritton/callsheet/internal/store"
	ws "github.com/dbritton/callsheet/internal/websocket"
)

type EventHandler struct {
	events *store.EventStore
	roster *roster.Service
	hub    *ws.Hub
	logger *slog.Logger
}

func NewEventHandler(events *store.EventStore, rs *roster.Service, hub *ws.Hub, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: events, roster: rs, hub: hub, logger: logger}
}

type eventRequest struct {
	Name          string                `json:"name"`
	Date          string                `json:"date"`
	StartTime     string                `json:"start_time"`
	EndTime       string                `json:"end_time"`
	Company       string                `json:"company"`
	EventType     string                `json:"event_type"`
	RequiredStaff map[string]int        `json:"required_staff"`
	Equipment     []model.EquipmentLine `json:"equipment"`
}

func (h *EventHandler) parseAndValidate(w http.ResponseWriter, r *http.Request) (*eventRequest, bool) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return nil, false
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return nil, false
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD format")
		return nil, false
	}
	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_time must be HH:MM format")
		return nil, false
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_time must be HH:MM format")
		return nil, false
	}
	if !start.Before(end) {
		writeError(w, http.StatusBadRequest, "start_time must be before end_time")
		return nil, false
	}
	for role, count := range req.RequiredStaff {
		if strings.TrimSpace(role) == "" || count < 0 {
			writeError(w, http.StatusBadRequest, "required_staff entries need a role name and a non-negative count")
			return nil, false
		}
	}
	for _, line := range req.Equipment {
		if strings.TrimSpace(line.Category) == "" || line.Required < 0 || line.Assigned < 0 {
			writeError(w, http.StatusBadRequest, "equipment entries need a category and non-negative counts")
			return nil, false
		}
	}

	return &req, true
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseAndValidate(w, r)
	if !ok {
		return
	}

	event, err := h.events.Create(&model.Event{
		Name:          req.Name,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Company:       req.Company,
		EventType:     req.EventType,
		RequiredStaff: req.RequiredStaff,
		Equipment:     req.Equipment,
	})
	if err != nil {
		h.logger.Error("create event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	h.hub.Broadcast(ws.NewMessage("event", "created", event.ID, map[string]any{"date": event.Date}))
	writeJSON(w, http.StatusCreated, event)
}

// List returns events in a date range, filtered and annotated with status.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to query parameters are required")
		return
	}

	filter := roster.Filter{
		Search:     q.Get("search"),
		Companies:  splitParam(q.Get("companies")),
		EventTypes: splitParam(q.Get("event_types")),
	}
	for _, s := range splitParam(q.Get("staff_ids")) {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "staff_ids must be numeric")
			return
		}
		filter.StaffIDs = append(filter.StaffIDs, id)
	}
	for _, s := range splitParam(q.Get("statuses")) {
		filter.Statuses = append(filter.Statuses, schedule.Status(s))
	}

	views, err := h.roster.ListRange(from, to, filter)
	if err != nil {
		h.logger.Error("list events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// DayView returns one day's events with statuses, conflicts, and the cluster
// partition.
func (h *EventHandler) DayView(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD format")
		return
	}

	view, err := h.roster.DayView(date)
	if err != nil {
		h.logger.Error("day view", "error", err, "date", date)
		writeError(w, http.StatusInternalServerError, "failed to load day")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := h.events.GetByID(id)
	if err != nil {
		h.logger.Error("get event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	req, ok := h.parseAndValidate(w, r)
	if !ok {
		return
	}

	event, err := h.events.UpdateDetails(id, req.Name, req.Date, req.StartTime, req.EndTime, req.Company, req.EventType)
	if err != nil {
		h.logger.Error("update event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update event")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	h.hub.Broadcast(ws.NewMessage("event", "updated", event.ID, map[string]any{"date": event.Date}))
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	if err := h.events.Delete(id); err != nil {
		h.logger.Error("delete event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	h.hub.Broadcast(ws.NewMessage("event", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Conflicts returns the conflict details for one event against its day.
func (h *EventHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, conflicts, err := h.roster.EventConflicts(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"event":     event,
		"conflicts": conflicts,
	})
}

// Availability returns the whole staff pool annotated with availability for
// one event's window.
func (h *EventHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, profiles, err := h.roster.EventAvailability(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"event": event,
		"staff": profiles,
	})
}

func splitParam(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
