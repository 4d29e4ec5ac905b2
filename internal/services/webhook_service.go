package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jimmiewester/skippy/internal/models"
	"github.com/jimmiewester/skippy/internal/store"
	"github.com/jimmiewester/skippy/internal/utils"
)

// DefaultListLimit caps list operations when the caller gives no limit.
const DefaultListLimit = 100

// WebhookCollection is the item store collection holding webhook records.
const WebhookCollection = "skippy_webhooks"

// WebhookService owns validation and field projection for webhook records.
type WebhookService struct {
	store  store.ItemStore
	logger *zap.Logger
}

func NewWebhookService(st store.ItemStore, logger *zap.Logger) *WebhookService {
	return &WebhookService{
		store:  st,
		logger: logger,
	}
}

// Create generates a fresh id, stamps created_at == updated_at, and persists
// the record with processed=false.
func (s *WebhookService) Create(ctx context.Context, input models.WebhookCreate) (models.Webhook, error) {
	now := time.Now().UTC()
	webhook := models.Webhook{
		ID:        utils.NewID(),
		EventType: input.EventType,
		Payload:   input.Payload,
		Source:    input.Source,
		Headers:   input.Headers,
		Processed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Put(ctx, WebhookCollection, webhook.ToItem()); err != nil {
		return models.Webhook{}, err
	}
	return webhook, nil
}

func (s *WebhookService) Get(ctx context.Context, id string) (models.Webhook, error) {
	item, err := s.store.Get(ctx, WebhookCollection, id)
	if err != nil {
		return models.Webhook{}, err
	}
	return models.WebhookFromItem(item)
}

// List returns up to limit records in no particular order.
func (s *WebhookService) List(ctx context.Context, limit int) ([]models.Webhook, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	items, err := s.store.Scan(ctx, WebhookCollection, limit)
	if err != nil {
		return nil, err
	}

	webhooks := make([]models.Webhook, 0, len(items))
	for _, item := range items {
		webhook, err := models.WebhookFromItem(item)
		if err != nil {
			s.logger.Warn("Skipping malformed webhook item",
				zap.String("id", item.ID()),
				zap.Error(err),
			)
			continue
		}
		webhooks = append(webhooks, webhook)
	}
	return webhooks, nil
}

// Update merges only the provided fields and always refreshes updated_at,
// even for an empty update. Absent records report store.ErrNotFound.
func (s *WebhookService) Update(ctx context.Context, id string, update models.WebhookUpdate) (models.Webhook, error) {
	item, err := s.store.Update(ctx, WebhookCollection, id, update.Fields())
	if err != nil {
		return models.Webhook{}, err
	}
	return models.WebhookFromItem(item)
}

// Delete removes the record, reporting store.ErrNotFound when it is absent.
func (s *WebhookService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, WebhookCollection, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, WebhookCollection, id)
}

// MarkProcessed sets processed=true and processed_at=now. Calling it again
// overwrites processed_at: the most recent processing time wins.
func (s *WebhookService) MarkProcessed(ctx context.Context, id string) (models.Webhook, error) {
	fields := store.Item{
		"processed":    true,
		"processed_at": time.Now().UTC().Format(time.RFC3339),
	}
	item, err := s.store.Update(ctx, WebhookCollection, id, fields)
	if err != nil {
		return models.Webhook{}, err
	}
	return models.WebhookFromItem(item)
}

// DeleteOlderThan deletes processed records created before the cutoff,
// scanning up to scanLimit items. Each deletion is independent: a failure on
// one record does not abort the sweep. Returns the number of deletions.
func (s *WebhookService) DeleteOlderThan(ctx context.Context, cutoff time.Time, scanLimit int) (int, error) {
	items, err := s.store.Scan(ctx, WebhookCollection, scanLimit)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, item := range items {
		webhook, err := models.WebhookFromItem(item)
		if err != nil {
			s.logger.Warn("Skipping malformed webhook item during sweep",
				zap.String("id", item.ID()),
				zap.Error(err),
			)
			continue
		}
		if !webhook.Processed || !webhook.CreatedAt.Before(cutoff) {
			continue
		}

		if err := s.store.Delete(ctx, WebhookCollection, webhook.ID); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				s.logger.Error("Failed to delete webhook during sweep",
					zap.String("id", webhook.ID),
					zap.Error(err),
				)
			}
			continue
		}
		deleted++
	}
	return deleted, nil
}
