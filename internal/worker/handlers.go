package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jimmiewester/skippy/internal/config"
	"github.com/jimmiewester/skippy/internal/metrics"
	"github.com/jimmiewester/skippy/internal/models"
	"github.com/jimmiewester/skippy/internal/services"
	"github.com/jimmiewester/skippy/internal/store"
)

// ReplySender sends an outbound SMS reply. The production implementation
// talks to the 46elks API; tests use a fake.
type ReplySender interface {
	Send(ctx context.Context, toNumber, message string) error
}

// TaskHandlers executes individual tasks against current record state.
// Handlers re-fetch the record once by id and then proceed optimistically;
// at-least-once redelivery covers crash recovery.
type TaskHandlers struct {
	webhooks  *services.WebhookService
	sms       *services.SMSService
	sender    ReplySender
	retention config.RetentionConfig
	logger    *zap.Logger
}

func NewTaskHandlers(
	webhooks *services.WebhookService,
	sms *services.SMSService,
	sender ReplySender,
	retention config.RetentionConfig,
	logger *zap.Logger,
) *TaskHandlers {
	return &TaskHandlers{
		webhooks:  webhooks,
		sms:       sms,
		sender:    sender,
		retention: retention,
		logger:    logger,
	}
}

// Handle dispatches by task type and returns the explicit attempt outcome.
func (h *TaskHandlers) Handle(ctx context.Context, task models.Task) Result {
	switch task.Type {
	case models.TaskProcessWebhook:
		return h.processWebhook(ctx, task)
	case models.TaskProcessSMS:
		return h.processSMS(ctx, task)
	case models.TaskSendReply:
		return h.sendReply(ctx, task)
	case models.TaskCleanupWebhooks:
		return h.cleanupWebhooks(ctx)
	case models.TaskCleanupSMS:
		return h.cleanupSMS(ctx)
	default:
		return Terminal(fmt.Errorf("unknown task type: %q", task.Type))
	}
}

func (h *TaskHandlers) processWebhook(ctx context.Context, task models.Task) Result {
	webhook, err := h.webhooks.Get(ctx, task.RecordID)
	if err != nil {
		// A missing record is not transient; retrying cannot help.
		if errors.Is(err, store.ErrNotFound) {
			h.logger.Error("Webhook not found, dropping task",
				zap.String("webhook_id", task.RecordID),
			)
			return Terminal(err)
		}
		return Retryable(err)
	}

	h.logger.Info("Processing webhook",
		zap.String("webhook_id", webhook.ID),
		zap.String("event_type", webhook.EventType),
	)

	// Record-specific side effects dispatched by event type tag.
	switch webhook.EventType {
	case "user.created":
		h.logger.Info("Handling user.created event",
			zap.String("webhook_id", webhook.ID),
			zap.String("source", webhook.Source),
		)
	case "payment.completed":
		h.logger.Info("Handling payment.completed event",
			zap.String("webhook_id", webhook.ID),
			zap.String("source", webhook.Source),
		)
	default:
		h.logger.Info("Handling generic event",
			zap.String("webhook_id", webhook.ID),
			zap.String("event_type", webhook.EventType),
		)
	}

	if _, err := h.webhooks.MarkProcessed(ctx, webhook.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Terminal(err)
		}
		return Retryable(err)
	}

	return Ok()
}

func (h *TaskHandlers) processSMS(ctx context.Context, task models.Task) Result {
	sms, err := h.sms.Get(ctx, task.RecordID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.logger.Error("SMS not found, dropping task",
				zap.String("sms_id", task.RecordID),
			)
			return Terminal(err)
		}
		return Retryable(err)
	}

	h.logger.Info("Processing SMS",
		zap.String("sms_id", sms.ID),
		zap.String("from_number", sms.FromNumber),
	)

	reply := h.sms.GenerateReply(sms.Message)

	if _, err := h.sms.MarkProcessed(ctx, sms.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Terminal(err)
		}
		return Retryable(err)
	}
	if _, err := h.sms.MarkReplySent(ctx, sms.ID, reply); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Terminal(err)
		}
		return Retryable(err)
	}

	return Ok()
}

func (h *TaskHandlers) sendReply(ctx context.Context, task models.Task) Result {
	if err := h.sender.Send(ctx, task.ToNumber, task.Message); err != nil {
		return Retryable(err)
	}

	if _, err := h.sms.MarkReplySent(ctx, task.RecordID, task.Message); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Terminal(err)
		}
		return Retryable(err)
	}

	h.logger.Info("SMS reply sent",
		zap.String("sms_id", task.RecordID),
		zap.String("to_number", task.ToNumber),
	)
	return Ok()
}

func (h *TaskHandlers) cleanupWebhooks(ctx context.Context) Result {
	cutoff := time.Now().UTC().AddDate(0, 0, -h.retention.Days)
	deleted, err := h.webhooks.DeleteOlderThan(ctx, cutoff, h.retention.ScanLimit)
	if err != nil {
		return Retryable(err)
	}

	metrics.AddRetentionDeleted(services.WebhookCollection, deleted)
	h.logger.Info("Webhook retention sweep completed",
		zap.Int("deleted", deleted),
		zap.Time("cutoff", cutoff),
	)
	return Ok()
}

func (h *TaskHandlers) cleanupSMS(ctx context.Context) Result {
	cutoff := time.Now().UTC().AddDate(0, 0, -h.retention.Days)
	deleted, err := h.sms.DeleteOlderThan(ctx, cutoff, h.retention.ScanLimit)
	if err != nil {
		return Retryable(err)
	}

	metrics.AddRetentionDeleted(services.SMSCollection, deleted)
	h.logger.Info("SMS retention sweep completed",
		zap.Int("deleted", deleted),
		zap.Time("cutoff", cutoff),
	)
	return Ok()
}
