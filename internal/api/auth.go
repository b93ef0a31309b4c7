package api

import (
	"net/http"

	"github.com/USSTM/courier-console/internal/auth"
	"github.com/USSTM/courier-console/internal/middleware"
)

// Logout revokes the bearer token so later requests with it are rejected, and
// drops the user's live notifications.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())

	sess, ok := auth.GetSession(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, Unauthorized("Authentication required"))
		return
	}

	if err := s.authenticator.Logout(r.Context(), sess); err != nil {
		logger.Error("Failed to revoke session", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred."))
		return
	}

	s.hub.Forget(sess.UserID)

	logger.Info("Session revoked")
	w.WriteHeader(http.StatusNoContent)
}
