package api

import (
	"net/http"

	"github.com/USSTM/courier-console/internal/config"
	"github.com/USSTM/courier-console/internal/middleware"
	"github.com/USSTM/courier-console/internal/rbac"
	"github.com/USSTM/courier-console/internal/swagger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func (s *Server) Routes(corsCfg *config.CORSConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	if corsCfg != nil {
		r.Use(middleware.NewCORSHandler(corsCfg))
	}
	r.Use(middleware.RequestContext)
	r.Use(middleware.LoggingMiddleware)

	r.Get("/health", s.HealthCheck)
	r.Get("/ready", s.ReadinessCheck)
	r.Get("/openapi.json", swagger.ServeSpecJSON)
	r.Get("/swagger/*", swagger.UIHandler("/openapi.json"))

	gate := rbac.Middleware{Resolver: s.resolver, Deny: denyJSON}

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Use(middleware.WithSessionLogger)

		r.Post("/auth/logout", s.Logout)

		r.Route("/me/permissions", func(r chi.Router) {
			r.Get("/", s.GetMyPermissions)
			r.Get("/check", s.CheckMyPermissions)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(gate.RequireAny(rbac.AccessNotifications))
			r.Get("/", s.GetNotifications)
			r.Get("/live", s.GetLiveNotifications)
			r.Get("/unread-count", s.GetUnreadNotificationCount)
			r.Post("/read-all", s.MarkAllNotificationsAsRead)
			r.Post("/{id}/read", s.MarkNotificationAsRead)
		})
	})

	return r
}
