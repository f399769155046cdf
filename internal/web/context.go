package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/sheetview/internal/core"
	"github.com/JonMunkholm/sheetview/internal/logging"
)

// SessionCookie names the cookie that ties a browser to its stored grid.
const SessionCookie = "sheetview_session"

type sessionKey struct{}

// sessionMiddleware reads the session cookie, issuing a new uuid when it is
// missing or malformed, and stores the id in the request context.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, s.sessionCookie(id))
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, id)
		ctx = logging.WithSession(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) sessionCookie(id string) *http.Cookie {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Security.SessionCookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl := s.cfg.Store.SessionTTL; ttl > 0 {
		c.MaxAge = int(ttl / time.Second)
	}
	return c
}

// sessionFrom returns the session id set by sessionMiddleware.
func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// WithRequestMetadata adds IP and User-Agent to context for upload logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, r.RemoteAddr) // Already resolved by TrustedRealIP
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
