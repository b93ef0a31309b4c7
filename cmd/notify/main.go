package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/USSTM/courier-console/internal/config"
	"github.com/USSTM/courier-console/internal/notifications"
	"github.com/USSTM/courier-console/internal/push"
	"github.com/USSTM/courier-console/internal/queue"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	recipientPtr = flag.String("to", "user-1", "Recipient user id")
	typePtr      = flag.String("type", "order.created", "Notification type")
	titlePtr     = flag.String("title", "New order", "Notification title")
	messagePtr   = flag.String("message", "", "Notification message")
	entityPtr    = flag.String("entity", "", "Related entity id")
	idPtr        = flag.String("id", "", "Notification id (random when empty)")
	enqueuePtr   = flag.Bool("enqueue", false, "Enqueue a push task instead of publishing on the channel")
)

func main() {
	flag.Parse()

	cfg := config.Load()

	id := *idPtr
	if id == "" {
		id = uuid.NewString()
	}

	ev := push.Event{
		RecipientID: *recipientPtr,
		Notification: notifications.Notification{
			ID:        id,
			Type:      *typePtr,
			Title:     *titlePtr,
			Message:   *messagePtr,
			EntityID:  *entityPtr,
			CreatedAt: time.Now().UTC(),
		},
	}

	if *enqueuePtr {
		q, err := queue.NewQueue(&cfg.Redis, cfg.Notifications.PushQueue)
		if err != nil {
			log.Fatalf("Failed to create queue: %v", err)
		}
		defer q.Close()

		info, err := q.EnqueuePush(ev)
		if err != nil {
			log.Fatalf("Failed to enqueue push: %v", err)
		}
		log.Printf("Enqueued push task %s on queue %s", info.ID, info.Queue)
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	reached, err := push.Publish(context.Background(), client, cfg.Notifications.PushChannel, ev)
	if err != nil {
		log.Fatalf("Failed to publish push: %v", err)
	}
	log.Printf("Published notification %s to %s (%d subscribers)", id, *recipientPtr, reached)
}
