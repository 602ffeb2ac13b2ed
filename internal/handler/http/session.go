package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const sessionName = "flower_session"

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const sessionIDKey contextKey = "session_id"

// SessionManager issues and reads the storefront session cookie. Every
// visitor gets a session ID on first contact; the cart is keyed by it.
type SessionManager struct {
	store  *sessions.CookieStore
	logger *slog.Logger
}

// NewSessionManager creates a cookie-backed session manager. The TTL should
// match the cart TTL so the cookie and the cart expire together.
func NewSessionManager(secret string, ttl time.Duration, logger *slog.Logger) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store, logger: logger}
}

// Middleware ensures the request carries a session ID, minting one and
// setting the cookie when absent, and stores the ID in the context.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.store.Get(r, sessionName)
		if err != nil {
			// A tampered or stale cookie decodes to an error; start fresh.
			session, _ = m.store.New(r, sessionName)
		}

		sid, ok := session.Values["sid"].(string)
		if !ok || sid == "" {
			sid = uuid.New().String()
			session.Values["sid"] = sid
			if err := session.Save(r, w); err != nil {
				m.logger.ErrorContext(r.Context(), "failed to save session cookie",
					slog.String("error", err.Error()),
				)
			}
		}

		ctx := context.WithValue(r.Context(), sessionIDKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionIDFromContext extracts the session ID from the request context.
func sessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionIDKey).(string)
	return sid, ok && sid != ""
}
