package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/USSTM/courier-console/internal/apiclient"
	"github.com/USSTM/courier-console/internal/rbac"
	"github.com/USSTM/courier-console/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestServer_GetNotifications(t *testing.T) {
	t.Run("merges live and fetched", func(t *testing.T) {
		ts := newTestServer(t)
		user := testutil.NewTestUser().WithRole(rbac.RoleOperator)
		token := ts.tokenFor(t, user)

		require.NoError(t, ts.hub.Deliver(t.Context(), user.ID, testutil.Notification("n-3")))
		ts.backend.ExpectList(2, 10, testutil.PageOf(
			testutil.ReadNotification("n-3"),
			testutil.Notification("n-2"),
			testutil.ReadNotification("n-1"),
		), nil).Once()

		rec := ts.do(t, http.MethodGet, "/notifications?page=2&page_size=10", token)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[NotificationsResponse](t, rec.Body)
		require.Len(t, resp.Data, 3)
		assert.Equal(t, "n-3", resp.Data[0].ID)
		// live copy wins over the fetched one
		assert.False(t, resp.Data[0].Read)
		assert.Equal(t, "n-2", resp.Data[1].ID)
		assert.Equal(t, "n-1", resp.Data[2].ID)
		assert.Equal(t, 2, resp.UnreadCount)
		assert.Equal(t, 3, resp.Meta.Total)
	})

	t.Run("overtaken request still gets the page it asked for", func(t *testing.T) {
		ts := newTestServer(t)
		user := testutil.NewTestUser().WithRole(rbac.RoleOperator)
		token := ts.tokenFor(t, user)

		require.NoError(t, ts.hub.Deliver(t.Context(), user.ID, testutil.Notification("live-1")))

		second := testutil.PageOf(testutil.Notification("p2-a"), testutil.ReadNotification("p2-b"))
		second.Pagination.Page = 2
		second.Pagination.Total = 22
		second.Pagination.TotalPages = 2

		started := make(chan struct{})
		release := make(chan struct{})
		ts.backend.ExpectList(2, 20, second, nil).Once().
			Run(func(mock.Arguments) {
				close(started)
				<-release
			})
		ts.backend.ExpectList(1, 20, testutil.PageOf(testutil.Notification("p1-a")), nil).Once()

		var wg sync.WaitGroup
		var slow *httptest.ResponseRecorder
		wg.Add(1)
		go func() {
			defer wg.Done()
			slow = ts.do(t, http.MethodGet, "/notifications?page=2", token)
		}()
		<-started

		first := ts.do(t, http.MethodGet, "/notifications?page=1", token)
		require.Equal(t, http.StatusOK, first.Code)

		close(release)
		wg.Wait()

		require.Equal(t, http.StatusOK, slow.Code)
		resp := decode[NotificationsResponse](t, slow.Body)
		require.Len(t, resp.Data, 3)
		assert.Equal(t, []string{"live-1", "p2-a", "p2-b"}, []string{resp.Data[0].ID, resp.Data[1].ID, resp.Data[2].ID})
		assert.Equal(t, 2, resp.UnreadCount)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 22, resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.TotalPages)

		// the newer page 1 stays cached
		fetched, err := ts.hub.For(user.ID).Fetched(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 1, fetched.Pagination.Page)
	})

	t.Run("default pagination", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.tokenFor(t, testutil.NewTestUser())

		ts.backend.ExpectList(1, 20, testutil.PageOf(), nil).Once()

		rec := ts.do(t, http.MethodGet, "/notifications", token)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[NotificationsResponse](t, rec.Body)
		assert.Empty(t, resp.Data)
		assert.NotNil(t, resp.Data)
	})

	t.Run("page size is capped", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.tokenFor(t, testutil.NewTestUser())

		ts.backend.ExpectList(1, 100, testutil.PageOf(), nil).Once()

		rec := ts.do(t, http.MethodGet, "/notifications?page_size=500", token)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid pagination", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.tokenFor(t, testutil.NewTestUser())

		rec := ts.do(t, http.MethodGet, "/notifications?page=zero&page_size=-1", token)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decode[Error](t, rec.Body)
		assert.Equal(t, CodeValidationError, resp.Error.Code)
		assert.Len(t, resp.Error.Details, 2)
	})

	t.Run("backend failure is a bad gateway", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.tokenFor(t, testutil.NewTestUser())

		ts.backend.ExpectList(1, 20, testutil.PageOf(), &apiclient.APIError{Status: 500, Message: "boom"}).Once()

		rec := ts.do(t, http.MethodGet, "/notifications", token)
		require.Equal(t, http.StatusBadGateway, rec.Code)

		resp := decode[Error](t, rec.Body)
		assert.Equal(t, CodeUpstreamError, resp.Error.Code)
		assert.Equal(t, "boom", resp.Error.Message)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(t, http.MethodGet, "/notifications", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		resp := decode[Error](t, rec.Body)
		assert.Equal(t, CodeAuthRequired, resp.Error.Code)
	})

	t.Run("forbidden for role without access", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.tokenFor(t, testutil.NewTestUser().WithRole("courier"))

		rec := ts.do(t, http.MethodGet, "/notifications", token)
		require.Equal(t, http.StatusForbidden, rec.Code)

		resp := decode[Error](t, rec.Body)
		assert.Equal(t, CodePermissionDenied, resp.Error.Code)
	})
}

func TestServer_GetLiveNotifications(t *testing.T) {
	ts := newTestServer(t)
	user := testutil.NewTestUser()
	token := ts.tokenFor(t, user)

	require.NoError(t, ts.hub.Deliver(t.Context(), user.ID, testutil.Notification("n-1")))
	require.NoError(t, ts.hub.Deliver(t.Context(), "someone-else", testutil.Notification("n-2")))

	rec := ts.do(t, http.MethodGet, "/notifications/live", token)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}](t, rec.Body)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "n-1", resp.Data[0].ID)
}

func TestServer_GetUnreadNotificationCount(t *testing.T) {
	ts := newTestServer(t)
	user := testutil.NewTestUser()
	token := ts.tokenFor(t, user)

	require.NoError(t, ts.hub.Deliver(t.Context(), user.ID, testutil.Notification("n-1")))
	require.NoError(t, ts.hub.Deliver(t.Context(), user.ID, testutil.ReadNotification("n-2")))

	rec := ts.do(t, http.MethodGet, "/notifications/unread-count", token)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[UnreadCountResponse](t, rec.Body)
	assert.Equal(t, 1, resp.UnreadCount)
}

func TestServer_MarkNotificationAsRead(t *testing.T) {
	t.Run("acknowledged", func(t *testing.T) {
		ts := newTestServer(t)
		user := testutil.NewTestUser()
		token := ts.tokenFor(t, user)

		ts.backend.ExpectList(1, 20, testutil.PageOf(testutil.Notification("n-1")), nil).Once()
		ts.backend.ExpectMarkRead("n-1", nil).Once()

		require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/notifications", token).Code)

		rec := ts.do(t, http.MethodPost, "/notifications/n-1/read", token)
		require.Equal(t, http.StatusOK, rec.Code)

		fetched, err := ts.hub.For(user.ID).Fetched(t.Context())
		require.NoError(t, err)
		require.Len(t, fetched.Items, 1)
		assert.True(t, fetched.Items[0].Read)
	})

	t.Run("not found upstream", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.tokenFor(t, testutil.NewTestUser())

		ts.backend.ExpectMarkRead("missing", &apiclient.APIError{Status: 404, Message: "not found"}).Once()

		rec := ts.do(t, http.MethodPost, "/notifications/missing/read", token)
		require.Equal(t, http.StatusNotFound, rec.Code)

		resp := decode[Error](t, rec.Body)
		assert.Equal(t, CodeResourceNotFound, resp.Error.Code)
	})

	t.Run("transport failure", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.tokenFor(t, testutil.NewTestUser())

		ts.backend.ExpectMarkRead("n-1", errors.New("connection refused")).Once()

		rec := ts.do(t, http.MethodPost, "/notifications/n-1/read", token)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestServer_MarkAllNotificationsAsRead(t *testing.T) {
	ts := newTestServer(t)
	user := testutil.NewTestUser()
	token := ts.tokenFor(t, user)

	ts.backend.ExpectList(1, 20, testutil.PageOf(testutil.Notification("n-1"), testutil.Notification("n-2")), nil).Once()
	ts.backend.ExpectMarkAllRead(nil).Once()

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/notifications", token).Code)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/notifications/read-all", token).Code)

	count, err := ts.hub.For(user.ID).UnreadCount(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
