package api

import (
	"net/http"

	"github.com/USSTM/courier-console/internal/auth"
)

type PermissionsResponse struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type PermissionCheckResponse struct {
	Role        string          `json:"role"`
	Permissions map[string]bool `json:"permissions"`
	Any         bool            `json:"any"`
}

// GetMyPermissions lists what the session role may access, sorted.
func (s *Server) GetMyPermissions(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.GetSession(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, Unauthorized("Authentication required"))
		return
	}

	writeJSON(w, r, http.StatusOK, PermissionsResponse{
		Role:        sess.Role,
		Permissions: s.resolver.RolePermissions(sess.Role),
	})
}

// CheckMyPermissions answers each ?permission= value for the session role.
func (s *Server) CheckMyPermissions(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.GetSession(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, Unauthorized("Authentication required"))
		return
	}

	requested := r.URL.Query()["permission"]
	if len(requested) == 0 {
		writeError(w, r, http.StatusBadRequest, ValidationErr("At least one permission is required", []ErrorDetail{
			{Field: "permission", Message: "required"},
		}))
		return
	}

	result := make(map[string]bool, len(requested))
	for _, p := range requested {
		result[p] = s.resolver.HasPermission(sess.Role, p)
	}

	writeJSON(w, r, http.StatusOK, PermissionCheckResponse{
		Role:        sess.Role,
		Permissions: result,
		Any:         s.resolver.HasAnyPermission(sess.Role, requested...),
	})
}
