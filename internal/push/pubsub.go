package push

import (
	"context"
	"fmt"

	"github.com/USSTM/courier-console/internal/logging"
	"github.com/USSTM/courier-console/internal/notifications"
	"github.com/redis/go-redis/v9"
)

// Subscriber relays events published on a Redis channel into a Sink.
// Delivery is at-most-once: malformed or undeliverable events are logged and
// dropped.
type Subscriber struct {
	client  *redis.Client
	channel string
	sink    Sink
}

func NewSubscriber(client *redis.Client, channel string, sink Sink) *Subscriber {
	return &Subscriber{client: client, channel: channel, sink: sink}
}

// Run blocks until ctx is cancelled or the subscription closes.
func (s *Subscriber) Run(ctx context.Context) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe to %s: %w", s.channel, err)
	}
	logging.Info("Subscribed to notification push channel", "channel", s.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			s.handle(ctx, []byte(msg.Payload))
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, payload []byte) {
	ev, err := Decode(payload)
	if err != nil {
		logging.Warn("dropping push event", "channel", s.channel, "error", err)
		return
	}
	if err := s.sink.Deliver(ctx, ev.RecipientID, ev.Notification); err != nil {
		logging.Error("failed to deliver push event",
			"recipient_id", ev.RecipientID,
			"notification_id", ev.Notification.ID,
			"error", err)
	}
}

// Publish sends ev on channel and returns the number of subscribers reached.
func Publish(ctx context.Context, client *redis.Client, channel string, ev Event) (int64, error) {
	payload, err := Encode(ev)
	if err != nil {
		return 0, err
	}
	return client.Publish(ctx, channel, payload).Result()
}

// Relay is a Sink that republishes deliveries on a pub/sub channel.
type Relay struct {
	client  *redis.Client
	channel string
}

func NewRelay(client *redis.Client, channel string) *Relay {
	return &Relay{client: client, channel: channel}
}

func (r *Relay) Deliver(ctx context.Context, recipientID string, n notifications.Notification) error {
	reached, err := Publish(ctx, r.client, r.channel, Event{RecipientID: recipientID, Notification: n})
	if err != nil {
		return fmt.Errorf("relay to %s: %w", r.channel, err)
	}
	if reached == 0 {
		logging.Warn("push relay reached no subscribers", "channel", r.channel, "notification_id", n.ID)
	}
	return nil
}
