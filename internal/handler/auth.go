package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dbritton/callsheet/internal/auth"
	"github.com/dbritton/callsheet/internal/middleware"
	"github.com/dbritton/callsheet/internal/store"
)

type AuthHandler struct {
	operators  *store.OperatorStore
	sessions   *store.SessionStore
	sessionTTL time.Duration
	logger     *slog.Logger
}

func NewAuthHandler(operators *store.OperatorStore, sessions *store.SessionStore, sessionTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		operators:  operators,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks the credentials and issues a session token. Bad username and
// bad password produce the same response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	op, err := h.operators.GetByUsername(req.Username)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if op == nil || bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := uuid.NewString()
	sess, err := h.sessions.Create(token, op.ID, time.Now().Add(h.sessionTTL))
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.logger.Info("operator logged in", "operator", op.Username)
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt,
		"operator":   op,
	})
}

// Logout deletes the session behind the request's token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.sessions.Delete(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	} else if bearer := r.Header.Get("Authorization"); strings.HasPrefix(bearer, "Bearer ") {
		if err := h.sessions.Delete(strings.TrimPrefix(bearer, "Bearer ")); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	h.logger.Info("operator logged out", "operator", id.Username)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated operator.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	op, err := h.operators.GetByID(id.OperatorID)
	if err != nil || op == nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, op)
}
