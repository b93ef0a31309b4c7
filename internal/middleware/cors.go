package middleware

import (
	"net/http"
	"slices"

	"github.com/USSTM/courier-console/internal/config"
	"github.com/go-chi/cors"
)

// NewCORSHandler allows the console origins to call the gateway. With no
// origins configured the gateway is same-origin only and no CORS headers are
// written.
func NewCORSHandler(cfg *config.CORSConfig) func(http.Handler) http.Handler {
	if len(cfg.AllowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	exposed := cfg.ExposedHeaders
	if !slices.Contains(exposed, RequestIDHeader) {
		exposed = append(append([]string(nil), exposed...), RequestIDHeader)
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   exposed,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}

