// Package server wires the stores, the roster service, and the handlers
// into one HTTP router.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dbritton/callsheet/internal/handler"
	"github.com/dbritton/callsheet/internal/metrics"
	"github.com/dbritton/callsheet/internal/middleware"
	"github.com/dbritton/callsheet/internal/roster"
	"github.com/dbritton/callsheet/internal/store"
	ws "github.com/dbritton/callsheet/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	rosterService *roster.Service
	eventH        *handler.EventHandler
	assignmentH   *handler.AssignmentHandler
	staffH        *handler.StaffHandler
	authH         *handler.AuthHandler
	sessionStore  *store.SessionStore
	operatorStore *store.OperatorStore
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func New(db *sql.DB, sessionTTL time.Duration, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	eventStore := store.NewEventStore(db)
	staffStore := store.NewStaffStore(db)
	operatorStore := store.NewOperatorStore(db)
	sessionStore := store.NewSessionStore(db)

	rosterService := roster.NewService(eventStore, staffStore, func(entity, action string, id int64) {
		hub.Broadcast(ws.NewMessage(entity, action, id, nil))
	}, logger.With("component", "roster"))

	return &Server{
		db:            db,
		hub:           hub,
		rosterService: rosterService,
		eventH:        handler.NewEventHandler(eventStore, rosterService, hub, logger.With("component", "event")),
		assignmentH:   handler.NewAssignmentHandler(rosterService, logger.With("component", "assignment")),
		staffH:        handler.NewStaffHandler(staffStore, hub, logger.With("component", "staff")),
		authH:         handler.NewAuthHandler(operatorStore, sessionStore, sessionTTL, logger.With("component", "auth")),
		sessionStore:  sessionStore,
		operatorStore: operatorStore,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// SessionStore returns the session store for the cleanup job.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// OperatorStore returns the operator store for the admin bootstrap.
func (s *Server) OperatorStore() *store.OperatorStore {
	return s.operatorStore
}

// RateLimiter returns the rate limiter for the cleanup job.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Roster returns the roster service for background jobs.
func (s *Server) Roster() *roster.Service {
	return s.rosterService
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// Everything else requires a session.
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.operatorStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)

	// Events and day views
	mux.HandleFunc("POST /api/events", s.eventH.Create)
	mux.HandleFunc("GET /api/events", s.eventH.List)
	mux.HandleFunc("GET /api/events/{id}", s.eventH.Get)
	mux.HandleFunc("PUT /api/events/{id}", s.eventH.Update)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)
	mux.HandleFunc("GET /api/events/{id}/conflicts", s.eventH.Conflicts)
	mux.HandleFunc("GET /api/events/{id}/availability", s.eventH.Availability)
	mux.HandleFunc("GET /api/days/{date}", s.eventH.DayView)

	// Staffing mutations
	mux.HandleFunc("POST /api/events/{id}/assignments", s.assignmentH.Assign)
	mux.HandleFunc("DELETE /api/events/{id}/assignments/{staff_id}", s.assignmentH.Unassign)
	mux.HandleFunc("POST /api/events/{id}/roles", s.assignmentH.AddRole)
	mux.HandleFunc("PUT /api/events/{id}/roles/{role}", s.assignmentH.ResizeRole)
	mux.HandleFunc("DELETE /api/events/{id}/roles/{role}", s.assignmentH.DeleteRole)
	mux.HandleFunc("DELETE /api/events/{id}/roles/{role}/assignments", s.assignmentH.ClearRole)

	// Move decisions
	mux.HandleFunc("GET /api/decisions/{id}", s.assignmentH.GetDecision)
	mux.HandleFunc("POST /api/decisions/{id}/confirm", s.assignmentH.ConfirmMove)
	mux.HandleFunc("POST /api/decisions/{id}/cancel", s.assignmentH.CancelMove)

	// Staff pool
	mux.HandleFunc("GET /api/staff", s.staffH.List)
	mux.HandleFunc("POST /api/staff", s.staffH.Create)
	mux.HandleFunc("PUT /api/staff/{id}", s.staffH.Update)
	mux.HandleFunc("DELETE /api/staff/{id}", s.staffH.Delete)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "websocket")))
}
