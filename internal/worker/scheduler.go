package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jimmiewester/skippy/internal/models"
	"github.com/jimmiewester/skippy/internal/queue"
)

// Scheduler enqueues the periodic retention-sweep tasks on a fixed
// wall-clock interval, independent of request traffic.
type Scheduler struct {
	interval  time.Duration
	publisher queue.Publisher
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewScheduler(interval time.Duration, publisher queue.Publisher, logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		interval:  interval,
		publisher: publisher,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the scheduling loop.
func (s *Scheduler) Start() {
	go s.run()
	s.logger.Info("Scheduler started", zap.Duration("interval", s.interval))
}

// Stop stops the scheduling loop.
func (s *Scheduler) Stop() {
	s.cancel()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.enqueueSweeps()
		}
	}
}

func (s *Scheduler) enqueueSweeps() {
	for _, taskType := range []string{models.TaskCleanupWebhooks, models.TaskCleanupSMS} {
		task := models.Task{Type: taskType}
		if err := s.publisher.EnqueueTask(s.ctx, task); err != nil {
			s.logger.Error("Failed to enqueue retention sweep",
				zap.String("type", taskType),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("Retention sweep enqueued", zap.String("type", taskType))
	}
}
