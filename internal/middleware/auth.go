package middleware

import (
	"net/http"
	"strings"

	"github.com/dbritton/callsheet/internal/auth"
	"github.com/dbritton/callsheet/internal/store"
)

// SessionCookieName is the cookie carrying the session token for browser
// clients. API clients may send the same token as a bearer token instead.
const SessionCookieName = "callsheet_session"

// RequireAuth resolves the session token to an operator and stores the
// identity in the request context. Unauthenticated requests get a 401; this
// is a JSON API, so there is no login redirect.
func RequireAuth(sessions *store.SessionStore, operators *store.OperatorStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			sess, err := sessions.GetByToken(token)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}
			op, err := operators.GetByID(sess.OperatorID)
			if err != nil || op == nil {
				unauthorized(w)
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{
				OperatorID: op.ID,
				Username:   op.Username,
				SessionID:  sess.ID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"authentication required"}`))
}
