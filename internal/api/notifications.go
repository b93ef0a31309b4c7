package api

import (
	"errors"
	"net/http"

	"github.com/USSTM/courier-console/internal/apiclient"
	"github.com/USSTM/courier-console/internal/auth"
	"github.com/USSTM/courier-console/internal/middleware"
	"github.com/USSTM/courier-console/internal/notifications"
	"github.com/go-chi/chi/v5"
)

type NotificationsResponse struct {
	Data        []notifications.Notification `json:"data"`
	UnreadCount int                          `json:"unread_count"`
	Meta        PaginationMeta               `json:"meta"`
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// GetNotifications fetches a page from the backend and returns the merged
// live + fetched view.
func (s *Server) GetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLoggerFromContext(ctx)

	sess, ok := auth.GetSession(ctx)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, Unauthorized("Authentication required"))
		return
	}

	page, pageSize, details := parsePagination(r.URL.Query(), s.defaultPageSize)
	if len(details) > 0 {
		writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid pagination parameters", details))
		return
	}

	rec := s.hub.For(sess.UserID)

	// a superseded page is still the page this request asked for; only the
	// cache keeps the newer state
	fetched, err := rec.Fetch(ctx, page, pageSize)
	if err != nil && !errors.Is(err, notifications.ErrSuperseded) {
		logger.Error("Failed to fetch notifications", "error", err, "page", page)
		s.writeBackendError(w, r, err, "Notification")
		return
	}

	merged := rec.MergeWith(fetched.Items)

	writeJSON(w, r, http.StatusOK, NotificationsResponse{
		Data:        merged,
		UnreadCount: notifications.CountUnread(merged),
		Meta: PaginationMeta{
			Page:       fetched.Pagination.Page,
			PageSize:   fetched.Pagination.PageSize,
			Total:      fetched.Pagination.Total,
			TotalPages: fetched.Pagination.TotalPages,
		},
	})
}

// GetLiveNotifications returns every pushed item held for the user, in push
// order, including ones a fetched page also carries.
func (s *Server) GetLiveNotifications(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.GetSession(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, Unauthorized("Authentication required"))
		return
	}

	writeJSON(w, r, http.StatusOK, struct {
		Data []notifications.Notification `json:"data"`
	}{Data: s.hub.For(sess.UserID).Live()})
}

func (s *Server) GetUnreadNotificationCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLoggerFromContext(ctx)

	sess, ok := auth.GetSession(ctx)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, Unauthorized("Authentication required"))
		return
	}

	count, err := s.hub.For(sess.UserID).UnreadCount(ctx)
	if err != nil {
		logger.Error("Failed to get unread notification count", "error", err)
		writeError(w, r, http.StatusInternalServerError, InternalError("An unexpected error occurred."))
		return
	}

	writeJSON(w, r, http.StatusOK, UnreadCountResponse{UnreadCount: count})
}

func (s *Server) MarkNotificationAsRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLoggerFromContext(ctx)

	sess, ok := auth.GetSession(ctx)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, Unauthorized("Authentication required"))
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.hub.For(sess.UserID).MarkAsRead(ctx, id); err != nil {
		if errors.Is(err, notifications.ErrInvalidNotification) {
			writeError(w, r, http.StatusBadRequest, ValidationErr("Invalid notification id", []ErrorDetail{
				{Field: "id", Message: "required"},
			}))
			return
		}
		logger.Error("Failed to mark notification as read", "error", err, "notif_id", id)
		s.writeBackendError(w, r, err, "Notification")
		return
	}

	writeJSON(w, r, http.StatusOK, MessageResponse{Message: "Success"})
}

func (s *Server) MarkAllNotificationsAsRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLoggerFromContext(ctx)

	sess, ok := auth.GetSession(ctx)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, Unauthorized("Authentication required"))
		return
	}

	if err := s.hub.For(sess.UserID).MarkAllAsRead(ctx); err != nil {
		logger.Error("Failed to mark all notifications as read", "error", err)
		s.writeBackendError(w, r, err, "Notifications")
		return
	}

	writeJSON(w, r, http.StatusOK, MessageResponse{Message: "Success"})
}

// writeBackendError maps a failed backend call: 404 and 401 pass through,
// anything else is a bad gateway.
func (s *Server) writeBackendError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	var apiErr *apiclient.APIError
	switch {
	case apiclient.IsStatus(err, http.StatusNotFound):
		writeError(w, r, http.StatusNotFound, NotFound(resource))
	case apiclient.IsStatus(err, http.StatusUnauthorized):
		writeError(w, r, http.StatusUnauthorized, Unauthorized("Backend rejected the session"))
	case errors.As(err, &apiErr):
		writeError(w, r, http.StatusBadGateway, UpstreamErr(apiErr.Message, apiErr.Status))
	default:
		writeError(w, r, http.StatusBadGateway, UpstreamErr("Backend unavailable", 0))
	}
}
