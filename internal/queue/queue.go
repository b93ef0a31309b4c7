package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/USSTM/courier-console/internal/config"
	"github.com/USSTM/courier-console/internal/logging"
	"github.com/USSTM/courier-console/internal/push"
	"github.com/hibiken/asynq"
)

const (
	TypeNotificationPush = "notification:push"
)

type TaskQueue struct {
	client *asynq.Client
	queue  string
}

func NewQueue(cfg *config.RedisConfig, queueName string) (*TaskQueue, error) {
	client := asynq.NewClient(redisOpt(cfg))

	// Activate and test the connection
	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis queue: %w", err)
	}

	logging.Info("Connected to Redis task queue")

	return &TaskQueue{client: client, queue: queueName}, nil
}

func (q *TaskQueue) Enqueue(taskType string, data interface{}) (*asynq.TaskInfo, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	task := asynq.NewTask(taskType, payload)

	return q.client.Enqueue(task, asynq.Queue(q.queue))
}

// EnqueuePush schedules a live notification for delivery through the worker.
func (q *TaskQueue) EnqueuePush(ev push.Event) (*asynq.TaskInfo, error) {
	if _, err := push.Encode(ev); err != nil {
		return nil, err
	}
	return q.Enqueue(TypeNotificationPush, ev)
}

func (q *TaskQueue) Close() error {
	return q.client.Close()
}

// Worker consumes push tasks and hands them to the notification hub running
// in this process.
type Worker struct {
	server *asynq.Server
	sink   push.Sink
}

func NewWorker(cfg *config.RedisConfig, queueName string, sink push.Sink) *Worker {
	server := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				queueName: 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logging.Error("process task failed", "type", task.Type(), "payload", string(task.Payload()), "error", err)
			}),
		},
	)

	return &Worker{
		server: server,
		sink:   sink,
	}
}

func (w *Worker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeNotificationPush, w.HandleNotificationPush)
	return mux
}

func (w *Worker) Start() error {
	return w.server.Start(w.Mux())
}

func (w *Worker) Close() {
	if w.server != nil {
		w.server.Shutdown()
	}
}

// Push delivery is at-most-once, so bad payloads and rejected events are not
// retried.
func (w *Worker) HandleNotificationPush(ctx context.Context, t *asynq.Task) error {
	ev, err := push.Decode(t.Payload())
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := w.sink.Deliver(ctx, ev.RecipientID, ev.Notification); err != nil {
		return fmt.Errorf("deliver notification %s: %v: %w", ev.Notification.ID, err, asynq.SkipRetry)
	}

	logging.Debug("push task delivered", "recipient_id", ev.RecipientID, "notification_id", ev.Notification.ID)
	return nil
}

func redisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
