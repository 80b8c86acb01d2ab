package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionName is the admin session cookie name.
const SessionName = "bloodlink-admin"

const (
	sessionIsAdmin   = "isAdmin"
	sessionAdminUser = "adminUser"
)

type adminContextKey struct{}

// Sessions manages the admin login cookie. The cookie has no MaxAge, so it
// lasts for the browser session.
type Sessions struct {
	store *sessions.CookieStore
}

// NewSessions builds a signed cookie store keyed by secret.
func NewSessions(secret string, secure bool) *Sessions {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	store.Options.Path = "/"
	store.Options.MaxAge = 0
	return &Sessions{store: store}
}

// Login marks the session as an authenticated admin.
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, username string) error {
	session, _ := s.store.Get(r, SessionName)
	session.Values[sessionIsAdmin] = true
	session.Values[sessionAdminUser] = username
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Logout expires the session cookie.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, SessionName)
	session.Values = map[interface{}]interface{}{}
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("expire session: %w", err)
	}
	return nil
}

// Current returns the signed-in admin username. A cookie that fails to
// decode counts as signed out.
func (s *Sessions) Current(r *http.Request) (string, bool) {
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		return "", false
	}
	if ok, _ := session.Values[sessionIsAdmin].(bool); !ok {
		return "", false
	}
	username, _ := session.Values[sessionAdminUser].(string)
	return username, username != ""
}

// RequireAdmin rejects requests without an admin session with 401.
func (s *Sessions) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := s.Current(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"code": "unauthorized", "message": "admin login required"},
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithAdmin(r.Context(), username)))
	})
}

func ContextWithAdmin(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, adminContextKey{}, username)
}

// AdminFromContext returns the admin username set by RequireAdmin.
func AdminFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(adminContextKey{}).(string); ok {
		return v
	}
	return ""
}
