package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jimmiewester/skippy/internal/config"
	"github.com/jimmiewester/skippy/internal/models"
)

// Publisher enqueues tasks for asynchronous execution. Enqueue is
// fire-and-forget from the caller's perspective: it never observes job
// completion.
type Publisher interface {
	EnqueueTask(ctx context.Context, task models.Task) error
	EnqueueRetry(ctx context.Context, task models.Task, delay time.Duration) error
}

// TaskPublisher publishes tasks to the broker. Delayed retries go through a
// TTL retry queue that dead-letters expired messages back into the task
// queue, so backoff needs no in-process timers.
type TaskPublisher struct {
	conn   *Connection
	cfg    *config.WorkerConfig
	logger *zap.Logger
}

func NewTaskPublisher(conn *Connection, cfg *config.WorkerConfig, logger *zap.Logger) *TaskPublisher {
	return &TaskPublisher{
		conn:   conn,
		cfg:    cfg,
		logger: logger,
	}
}

// DeclareTopology declares the exchange, task queue and retry queue. Both
// server and worker call this on startup; declarations are idempotent.
func (p *TaskPublisher) DeclareTopology() error {
	ch := p.conn.Channel()
	if ch == nil {
		return fmt.Errorf("RabbitMQ channel is not initialized")
	}

	if err := ch.ExchangeDeclare(p.cfg.Exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(p.cfg.TaskQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare task queue: %w", err)
	}
	if err := ch.QueueBind(p.cfg.TaskQueue, p.cfg.TaskQueue, p.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind task queue: %w", err)
	}

	// Messages parked here expire after their per-message TTL and are
	// dead-lettered back to the task queue for redelivery.
	retryArgs := map[string]any{
		"x-dead-letter-exchange":    p.cfg.Exchange,
		"x-dead-letter-routing-key": p.cfg.TaskQueue,
	}
	if _, err := ch.QueueDeclare(p.cfg.RetryQueue, true, false, false, false, retryArgs); err != nil {
		return fmt.Errorf("failed to declare retry queue: %w", err)
	}
	if err := ch.QueueBind(p.cfg.RetryQueue, p.cfg.RetryQueue, p.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind retry queue: %w", err)
	}

	return nil
}

func (p *TaskPublisher) EnqueueTask(ctx context.Context, task models.Task) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := p.conn.Publish(p.cfg.Exchange, p.cfg.TaskQueue, body, 0); err != nil {
		return err
	}

	p.logger.Debug("Task enqueued",
		zap.String("type", task.Type),
		zap.String("record_id", task.RecordID),
	)
	return nil
}

func (p *TaskPublisher) EnqueueRetry(ctx context.Context, task models.Task, delay time.Duration) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := p.conn.Publish(p.cfg.Exchange, p.cfg.RetryQueue, body, delay); err != nil {
		return err
	}

	p.logger.Info("Task scheduled for retry",
		zap.String("type", task.Type),
		zap.String("record_id", task.RecordID),
		zap.Int("retry_count", task.RetryCount),
		zap.Duration("delay", delay),
	)
	return nil
}
