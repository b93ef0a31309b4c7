package testutil

import (
	"context"
	"testing"

	"github.com/USSTM/courier-console/internal/notifications"
	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of the remote notifications API
type MockBackend struct {
	mock.Mock
}

// NewMockBackend creates a new mock backend bound to t
func NewMockBackend(t *testing.T) *MockBackend {
	m := &MockBackend{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// ListNotifications mocks the paginated fetch
func (m *MockBackend) ListNotifications(ctx context.Context, page, pageSize int) (notifications.Page, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).(notifications.Page), args.Error(1)
}

// MarkNotificationRead mocks the read mutation
func (m *MockBackend) MarkNotificationRead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MarkAllNotificationsRead mocks the bulk read mutation
func (m *MockBackend) MarkAllNotificationsRead(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ExpectList sets up expectation for ListNotifications
func (m *MockBackend) ExpectList(page, pageSize int, result notifications.Page, err error) *mock.Call {
	return m.On("ListNotifications", mock.Anything, page, pageSize).Return(result, err)
}

// ExpectMarkRead sets up expectation for MarkNotificationRead
func (m *MockBackend) ExpectMarkRead(id string, err error) *mock.Call {
	return m.On("MarkNotificationRead", mock.Anything, id).Return(err)
}

// ExpectMarkAllRead sets up expectation for MarkAllNotificationsRead
func (m *MockBackend) ExpectMarkAllRead(err error) *mock.Call {
	return m.On("MarkAllNotificationsRead", mock.Anything).Return(err)
}

// FailingStore is a cache.Store whose every call returns Err
type FailingStore struct {
	Err error
}

func (s FailingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, s.Err
}

func (s FailingStore) Set(ctx context.Context, key string, value []byte) error {
	return s.Err
}
