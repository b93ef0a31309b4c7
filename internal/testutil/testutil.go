package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/USSTM/courier-console/internal/auth"
	"github.com/USSTM/courier-console/internal/notifications"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// TestRedis is an in-process Redis with a connected client
type TestRedis struct {
	Server *miniredis.Miniredis
	Client *redis.Client
}

// NewTestRedis starts miniredis for the lifetime of the test
func NewTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &TestRedis{Server: mr, Client: client}
}

// TestUser represents an authenticated console user
type TestUser struct {
	ID    string
	Email string
	Role  string
}

// NewTestUser creates a test user with default values
func NewTestUser() *TestUser {
	return &TestUser{
		ID:    "user-1",
		Email: "test@example.com",
		Role:  "operator",
	}
}

// WithRole replaces the user's role
func (u *TestUser) WithRole(role string) *TestUser {
	u.Role = role
	return u
}

// WithID replaces the user's id
func (u *TestUser) WithID(id string) *TestUser {
	u.ID = id
	return u
}

// Session converts TestUser to auth.Session
func (u *TestUser) Session() *auth.Session {
	return &auth.Session{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		Token:     "test-token-" + u.ID,
		ExpiresAt: TimeNow().Add(time.Hour),
	}
}

// ContextWithUser adds a test user session to the context
func ContextWithUser(ctx context.Context, user *TestUser) context.Context {
	return auth.WithSession(ctx, user.Session())
}

// TimeNow returns a consistent time for testing
func TimeNow() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

// Notification builds an unread notification with a deterministic timestamp
func Notification(id string) notifications.Notification {
	return notifications.Notification{
		ID:        id,
		Type:      "order.created",
		Title:     "Order " + id,
		CreatedAt: TimeNow(),
	}
}

// ReadNotification builds a read notification
func ReadNotification(id string) notifications.Notification {
	n := Notification(id)
	n.Read = true
	return n
}

// PageOf wraps items in a single backend page
func PageOf(items ...notifications.Notification) notifications.Page {
	return notifications.Page{
		Items: items,
		Pagination: notifications.Pagination{
			Page:       1,
			PageSize:   20,
			Total:      len(items),
			TotalPages: 1,
		},
	}
}
