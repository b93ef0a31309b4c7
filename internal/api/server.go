package api

import (
	"context"
	"net/http"

	"github.com/USSTM/courier-console/internal/auth"
	"github.com/USSTM/courier-console/internal/notifications"
	"github.com/USSTM/courier-console/internal/rbac"
	"github.com/redis/go-redis/v9"
)

// SessionAuthenticator resolves and ends console sessions.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, authHeader string) (*auth.Session, error)
	Logout(ctx context.Context, s *auth.Session) error
}

type Server struct {
	resolver        *rbac.Resolver
	hub             *notifications.Hub
	authenticator   SessionAuthenticator
	redis           *redis.Client
	defaultPageSize int
}

// redisClient may be nil, in which case readiness skips the Redis check.
func NewServer(resolver *rbac.Resolver, hub *notifications.Hub, authenticator SessionAuthenticator, redisClient *redis.Client, defaultPageSize int) *Server {
	if defaultPageSize < 1 {
		defaultPageSize = 20
	}
	return &Server{
		resolver:        resolver,
		hub:             hub,
		authenticator:   authenticator,
		redis:           redisClient,
		defaultPageSize: defaultPageSize,
	}
}

// requireSession authenticates the bearer token and stores the session.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.authenticator.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
	})
}
