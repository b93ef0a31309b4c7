package testutil

import (
	"context"
	"sync"

	"github.com/USSTM/courier-console/internal/notifications"
)

// Delivery is one call recorded by RecordingSink
type Delivery struct {
	RecipientID  string
	Notification notifications.Notification
}

// RecordingSink is a push.Sink that remembers every delivery
type RecordingSink struct {
	mu         sync.Mutex
	Err        error
	deliveries []Delivery
}

func (s *RecordingSink) Deliver(ctx context.Context, recipientID string, n notifications.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.deliveries = append(s.deliveries, Delivery{RecipientID: recipientID, Notification: n})
	return nil
}

// Deliveries returns a copy of the recorded deliveries
func (s *RecordingSink) Deliveries() []Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Delivery(nil), s.deliveries...)
}
