package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/jimmiewester/skippy/internal/config"
	"github.com/jimmiewester/skippy/internal/metrics"
	"github.com/jimmiewester/skippy/internal/models"
	"github.com/jimmiewester/skippy/internal/queue"
)

// Worker consumes the task queue and executes one task at a time to
// completion. Multiple worker processes may run concurrently; the broker
// delivers each message to exactly one of them at a time.
type Worker struct {
	cfg         *config.WorkerConfig
	conn        *queue.Connection
	publisher   queue.Publisher
	handlers    *TaskHandlers
	logger      *zap.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	consumerTag string
	started     bool
}

func NewWorker(
	cfg *config.WorkerConfig,
	conn *queue.Connection,
	publisher queue.Publisher,
	handlers *TaskHandlers,
	logger *zap.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		cfg:         cfg,
		conn:        conn,
		publisher:   publisher,
		handlers:    handlers,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		consumerTag: fmt.Sprintf("skippy-worker-%d", time.Now().Unix()),
	}
}

// Start sets QoS and begins consuming tasks.
func (w *Worker) Start() error {
	if w.cfg.TaskQueue == "" {
		return fmt.Errorf("task queue is required")
	}

	if err := w.startConsuming(); err != nil {
		return err
	}

	w.started = true
	w.logger.Info("Worker started and consuming tasks",
		zap.String("task_queue", w.cfg.TaskQueue),
		zap.String("consumer_tag", w.consumerTag),
		zap.Int("prefetch_count", w.cfg.PrefetchCount),
	)
	return nil
}

func (w *Worker) startConsuming() error {
	if err := w.conn.SetQoS(w.cfg.PrefetchCount); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := w.conn.Consume(w.cfg.TaskQueue, w.consumerTag)
	if err != nil {
		return fmt.Errorf("failed to start consuming from queue %s: %w", w.cfg.TaskQueue, err)
	}

	go w.processDeliveries(deliveries)
	return nil
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() error {
	w.logger.Info("Stopping worker", zap.String("consumer_tag", w.consumerTag))
	w.cancel()

	if ch := w.conn.Channel(); ch != nil {
		if err := ch.Cancel(w.consumerTag, false); err != nil {
			w.logger.Error("Failed to cancel consumer",
				zap.String("consumer_tag", w.consumerTag),
				zap.Error(err),
			)
		}
	}

	w.logger.Info("Worker stopped")
	return nil
}

func (w *Worker) processDeliveries(deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("Worker context cancelled, stopping task processing")
			return
		case msg, ok := <-deliveries:
			if !ok {
				w.logger.Warn("Delivery channel closed, attempting to restart consumer...",
					zap.String("task_queue", w.cfg.TaskQueue),
				)
				// Keep retrying until the connection recovers or we stop.
				for w.started {
					select {
					case <-w.ctx.Done():
						return
					default:
					}

					time.Sleep(2 * time.Second)
					if !w.conn.IsHealthy() {
						continue
					}

					if err := w.startConsuming(); err != nil {
						w.logger.Error("Failed to restart consuming after channel close, will retry",
							zap.Error(err),
						)
						time.Sleep(5 * time.Second)
						continue
					}

					w.logger.Info("Consumer restarted after channel close")
					return
				}
				return
			}
			w.handleDelivery(msg)
		}
	}
}

// handleDelivery runs one task attempt and interprets its Result. A task
// gets a hard execution deadline and a softer advisory one logged shortly
// before it.
func (w *Worker) handleDelivery(msg amqp.Delivery) {
	var task models.Task
	if err := json.Unmarshal(msg.Body, &task); err != nil {
		w.logger.Error("Failed to unmarshal task, dropping",
			zap.Uint64("delivery_tag", msg.DeliveryTag),
			zap.Error(err),
		)
		w.reject(msg)
		return
	}

	ctx, cancel := context.WithTimeout(w.ctx, w.cfg.HardTimeout)
	defer cancel()

	softTimer := time.AfterFunc(w.cfg.SoftTimeout, func() {
		w.logger.Warn("Task approaching hard deadline",
			zap.String("type", task.Type),
			zap.String("record_id", task.RecordID),
			zap.Duration("hard_timeout", w.cfg.HardTimeout),
		)
	})
	defer softTimer.Stop()

	result := w.handlers.Handle(ctx, task)

	switch result.Status {
	case StatusOk:
		metrics.IncTask(task.Type, "ok")
		w.ack(msg)

	case StatusTerminal:
		metrics.IncTask(task.Type, "terminal")
		w.logger.Error("Task failed terminally, dropping",
			zap.String("type", task.Type),
			zap.String("record_id", task.RecordID),
			zap.Error(result.Err),
		)
		w.ack(msg)

	case StatusRetryable:
		if task.RetryCount >= w.cfg.MaxRetries {
			metrics.IncTask(task.Type, "exhausted")
			w.logger.Error("Task retry budget exhausted, dropping",
				zap.String("type", task.Type),
				zap.String("record_id", task.RecordID),
				zap.Int("retry_count", task.RetryCount),
				zap.Error(result.Err),
			)
			w.ack(msg)
			return
		}

		delay := BackoffDelay(task.RetryCount)
		retry := task
		retry.RetryCount++
		if err := w.publisher.EnqueueRetry(w.ctx, retry, delay); err != nil {
			w.logger.Error("Failed to schedule retry, requeueing delivery",
				zap.String("type", task.Type),
				zap.String("record_id", task.RecordID),
				zap.Error(err),
			)
			// Fall back to broker requeue so the attempt is not lost.
			if nackErr := msg.Nack(false, true); nackErr != nil {
				w.logger.Error("Failed to nack task", zap.Error(nackErr))
			}
			return
		}

		metrics.IncTask(task.Type, "retry")
		w.ack(msg)
	}
}

func (w *Worker) ack(msg amqp.Delivery) {
	if err := msg.Ack(false); err != nil {
		w.logger.Error("Failed to ack task",
			zap.Uint64("delivery_tag", msg.DeliveryTag),
			zap.Error(err),
		)
	}
}

func (w *Worker) reject(msg amqp.Delivery) {
	if err := msg.Nack(false, false); err != nil {
		w.logger.Error("Failed to nack task",
			zap.Uint64("delivery_tag", msg.DeliveryTag),
			zap.Error(err),
		)
	}
}
