package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dbritton/callsheet/internal/auth"
	"github.com/dbritton/callsheet/internal/database"
	"github.com/dbritton/callsheet/internal/store"
)

func setupAuthMiddlewareDB(t *testing.T) (*store.SessionStore, *store.OperatorStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewSessionStore(db), store.NewOperatorStore(db)
}

func TestRequireAuthNoToken(t *testing.T) {
	ss, os := setupAuthMiddlewareDB(t)

	handler := RequireAuth(ss, os)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	ss, os := setupAuthMiddlewareDB(t)

	handler := RequireAuth(ss, os)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "invalid-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthValidSession(t *testing.T) {
	ss, os := setupAuthMiddlewareDB(t)

	op, err := os.Create("dispatch", "$2a$10$fakehash")
	if err != nil {
		t.Fatalf("create operator: %v", err)
	}
	sess, err := ss.Create("tok-1", op.ID, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var got auth.Identity
	handler := RequireAuth(ss, os)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if !ok {
			t.Fatal("expected Identity in request context")
		}
		got = id
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got.OperatorID != op.ID {
		t.Errorf("OperatorID = %d, want %d", got.OperatorID, op.ID)
	}
	if got.Username != "dispatch" {
		t.Errorf("Username = %q, want %q", got.Username, "dispatch")
	}
}

func TestRequireAuthBearerToken(t *testing.T) {
	ss, os := setupAuthMiddlewareDB(t)

	op, err := os.Create("dispatch", "$2a$10$fakehash")
	if err != nil {
		t.Fatalf("create operator: %v", err)
	}
	sess, err := ss.Create("tok-1", op.ID, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	handler := RequireAuth(ss, os)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireAuthExpiredSession(t *testing.T) {
	ss, os := setupAuthMiddlewareDB(t)

	op, err := os.Create("dispatch", "$2a$10$fakehash")
	if err != nil {
		t.Fatalf("create operator: %v", err)
	}
	if _, err := ss.Create("tok-old", op.ID, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("create session: %v", err)
	}

	handler := RequireAuth(ss, os)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok-old"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
