package notifications

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidNotification = errors.New("notification id is required")
	// ErrSuperseded means a fetch resolved after newer state was applied and
	// its result was discarded.
	ErrSuperseded = errors.New("notification fetch superseded by newer state")
)

type Notification struct {
	ID        string    `json:"id" validate:"required"`
	Type      string    `json:"type,omitempty"`
	Title     string    `json:"title,omitempty"`
	Message   string    `json:"message,omitempty"`
	EntityID  string    `json:"entity_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Page is one backend page of fetched notifications.
type Page struct {
	Items      []Notification `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

// Backend is the remote API surface the reconciler drives.
type Backend interface {
	ListNotifications(ctx context.Context, page, pageSize int) (Page, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
}
