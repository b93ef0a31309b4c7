package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/USSTM/courier-console/internal/auth"
	"github.com/USSTM/courier-console/internal/cache"
	"github.com/USSTM/courier-console/internal/notifications"
	"github.com/USSTM/courier-console/internal/rbac"
	"github.com/USSTM/courier-console/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	server  *Server
	handler http.Handler
	backend *testutil.MockBackend
	hub     *notifications.Hub
	jwt     *auth.JWTService
	redis   *testutil.TestRedis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	rdb := testutil.NewTestRedis(t)
	jwtService, err := auth.NewJWTService([]byte("test-signing-key"), "test-issuer", time.Hour)
	require.NoError(t, err)

	authenticator := auth.NewAuthenticator(jwtService, auth.NewRedisStore(rdb.Client))
	backend := testutil.NewMockBackend(t)
	hub := notifications.NewHub(backend, cache.NewMemory(0))

	server := NewServer(rbac.NewResolver(rbac.DefaultPolicy()), hub, authenticator, rdb.Client, 20)

	return &testServer{
		server:  server,
		handler: server.Routes(nil),
		backend: backend,
		hub:     hub,
		jwt:     jwtService,
		redis:   rdb,
	}
}

// tokenFor issues a bearer token for user
func (ts *testServer) tokenFor(t *testing.T, user *testutil.TestUser) string {
	t.Helper()
	token, err := ts.jwt.GenerateToken(context.Background(), user.ID, user.Email, user.Role)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, body io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(body).Decode(&v))
	return v
}
