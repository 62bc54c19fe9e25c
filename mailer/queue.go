package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	auth "github.com/nexotv/nexo-auth"
)

const (
	TypeSendNotification = "email:notification"
)

// QueueNotifier enqueues notifications on Redis through asynq. A Worker
// picks them up and sends them.
type QueueNotifier struct {
	client *asynq.Client
	logger auth.Logger
	opts   []asynq.Option
}

func NewQueueNotifier(redisOpt asynq.RedisClientOpt, logger auth.Logger, opts ...asynq.Option) *QueueNotifier {
	return &QueueNotifier{
		client: asynq.NewClient(redisOpt),
		logger: loggerOrNop(logger),
		opts:   opts,
	}
}

func (q *QueueNotifier) Close() error {
	return q.client.Close()
}

func (q *QueueNotifier) Notify(ctx context.Context, n auth.Notification) error {
	task, err := NewNotificationTask(n, q.opts...)
	if err != nil {
		return err
	}

	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		q.logger.Warn("enqueue email notification failed", "kind", n.Kind, "to", n.To(), "error", err)
		return err
	}

	return nil
}

// NewNotificationTask wraps a notification in an asynq task
func NewNotificationTask(n auth.Notification, opts ...asynq.Option) (*asynq.Task, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("encode notification task: %w", err)
	}
	return asynq.NewTask(TypeSendNotification, payload, opts...), nil
}

// Worker runs the asynq handlers that deliver queued notifications
type Worker struct {
	srv      *asynq.Server
	mux      *asynq.ServeMux
	notifier auth.Notifier
	logger   auth.Logger
}

// NewWorker creates an asynq server delivering through notifier. Call Run
// to start.
func NewWorker(redisOpt asynq.RedisClientOpt, concurrency int, notifier auth.Notifier, logger auth.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 2
	}
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		LogLevel:    asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	w := &Worker{srv: srv, mux: mux, notifier: notifier, logger: loggerOrNop(logger)}
	mux.HandleFunc(TypeSendNotification, w.HandleSendNotification)
	return w
}

// HandleSendNotification decodes the task payload and delivers it
func (w *Worker) HandleSendNotification(ctx context.Context, t *asynq.Task) error {
	var n auth.Notification
	if err := json.Unmarshal(t.Payload(), &n); err != nil {
		w.logger.Error("notification task payload invalid", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if n.To() == "" {
		w.logger.Error("notification task without recipient", "kind", n.Kind)
		return fmt.Errorf("notification without recipient: %w", asynq.SkipRetry)
	}

	if err := w.notifier.Notify(ctx, n); err != nil {
		w.logger.Error("notification task delivery failed", "kind", n.Kind, "to", n.To(), "error", err)
		return err
	}

	w.logger.Info("notification task delivered", "kind", n.Kind, "to", n.To())
	return nil
}

// Run blocks until shutdown
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
