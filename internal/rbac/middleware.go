package rbac

import (
	"log/slog"
	"net/http"

	"github.com/USSTM/courier-console/internal/auth"
)

// Middleware gates HTTP handlers on the session role.
type Middleware struct {
	Resolver *Resolver
	Logger   *slog.Logger
	// Deny writes the rejection; http.Error is used when nil.
	Deny func(w http.ResponseWriter, r *http.Request, status int)
}

// RequireAny lets the request through when the session role holds at least
// one of perms. An empty perms list denies everyone.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := auth.GetSession(r.Context())
			if !ok {
				m.deny(w, r, http.StatusUnauthorized)
				return
			}
			if m.Resolver.HasAnyPermission(sess.Role, perms...) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("rbac require any denied",
					slog.String("user_id", sess.UserID),
					slog.String("role", sess.Role),
					slog.Any("required", perms))
			}
			m.deny(w, r, http.StatusForbidden)
		})
	}
}

func (m Middleware) deny(w http.ResponseWriter, r *http.Request, status int) {
	if m.Deny != nil {
		m.Deny(w, r, status)
		return
	}
	http.Error(w, http.StatusText(status), status)
}
