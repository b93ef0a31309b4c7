// Package push feeds live notifications from the real-time channels into the
// per-user reconcilers.
package push

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/USSTM/courier-console/internal/notifications"
	"github.com/go-playground/validator/v10"
)

// Event is the wire payload shared by the pub/sub channel and the task queue.
type Event struct {
	RecipientID  string                     `json:"recipient_id" validate:"required"`
	Notification notifications.Notification `json:"notification"`
}

// Sink receives decoded live notifications.
type Sink interface {
	Deliver(ctx context.Context, recipientID string, n notifications.Notification) error
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode parses and validates one pushed event.
func Decode(payload []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, fmt.Errorf("decode push event: %w", err)
	}
	if err := validate.Struct(ev); err != nil {
		return Event{}, fmt.Errorf("invalid push event: %w", err)
	}
	return ev, nil
}

func Encode(ev Event) ([]byte, error) {
	if err := validate.Struct(ev); err != nil {
		return nil, fmt.Errorf("invalid push event: %w", err)
	}
	return json.Marshal(ev)
}
