package api

import (
	"net/http"
	"testing"

	"github.com/USSTM/courier-console/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_HealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	resp := decode[HealthResponse](t, rec.Body)
	assert.Equal(t, "ok", resp.Status)
}

func TestServer_ReadinessCheck(t *testing.T) {
	t.Run("redis reachable", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(t, http.MethodGet, "/ready", "")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[HealthResponse](t, rec.Body)
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, "ok", resp.Checks["redis"])
	})

	t.Run("redis down", func(t *testing.T) {
		ts := newTestServer(t)
		ts.redis.Server.Close()

		rec := ts.do(t, http.MethodGet, "/ready", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		resp := decode[HealthResponse](t, rec.Body)
		assert.Equal(t, "not_ready", resp.Status)
	})

	t.Run("redis disabled", func(t *testing.T) {
		ts := newTestServer(t)
		ts.server.redis = nil

		rec := ts.do(t, http.MethodGet, "/ready", "")
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
