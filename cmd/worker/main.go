package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/USSTM/courier-console/internal/config"
	"github.com/USSTM/courier-console/internal/logging"
	"github.com/USSTM/courier-console/internal/push"
	"github.com/USSTM/courier-console/internal/queue"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// Standalone push worker for scaling task processing apart from the API
// processes. Each task is relayed onto the pub/sub channel so every console
// instance receives it.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load .env: %v", err)
	}

	cfg := config.Load()

	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	sink := push.NewRelay(client, cfg.Notifications.PushChannel)
	worker := queue.NewWorker(&cfg.Redis, cfg.Notifications.PushQueue, sink)

	log.Println("Starting push worker...")
	if err := worker.Start(); err != nil {
		log.Fatalf("Worker failed to start: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down worker...")
	worker.Close()
}
