package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/teammanager/server-go/internal/session"
)

const (
	SessionCookieName = "session_token"
	SessionCookiePath = "/"
)

type contextKey string

const (
	SessionContextKey      contextKey = "session"
	SessionTokenContextKey contextKey = "sessionToken"
)

// GetSession returns the session loaded for this request, or nil when the
// request carried no valid session cookie.
func GetSession(ctx context.Context) *session.Session {
	if sess, ok := ctx.Value(SessionContextKey).(*session.Session); ok {
		return sess
	}
	return nil
}

func GetSessionToken(ctx context.Context) string {
	if token, ok := ctx.Value(SessionTokenContextKey).(string); ok {
		return token
	}
	return ""
}

// SessionMiddleware resolves the session cookie into server-side state.
// It never creates sessions; handlers that need one call the store
// themselves and set the cookie.
type SessionMiddleware struct {
	store *session.Store
}

func NewSessionMiddleware(store *session.Store) *SessionMiddleware {
	return &SessionMiddleware{store: store}
}

func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := m.store.Get(r.Context(), cookie.Value)
		if err != nil {
			log.Error().Err(err).Msg("session middleware: store lookup failed")
			next.ServeHTTP(w, r)
			return
		}
		if sess == nil {
			// Stale cookie pointing at an expired session.
			ClearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, SessionContextKey, sess)
		ctx = context.WithValue(ctx, SessionTokenContextKey, cookie.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func SetSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     SessionCookiePath,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   SessionCookieName,
		Value:  "",
		Path:   SessionCookiePath,
		MaxAge: -1,
	})
}
