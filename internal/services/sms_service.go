package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jimmiewester/skippy/internal/models"
	"github.com/jimmiewester/skippy/internal/store"
	"github.com/jimmiewester/skippy/internal/utils"
)

// SMSCollection is the item store collection holding SMS records.
const SMSCollection = "skippy_sms"

// Auto-reply templates, selected by keyword category.
const (
	ReplyGreeting = "Hello! Thanks for your message. We'll get back to you soon."
	ReplyHelp     = "Need help? Contact our support team at support@example.com"
	ReplyStatus   = "Your request is being processed. We'll update you shortly."
	ReplyGeneric  = "Thank you for your message. We've received it and will respond shortly."
)

// SMSService owns validation and field projection for SMS records.
type SMSService struct {
	store  store.ItemStore
	logger *zap.Logger
}

func NewSMSService(st store.ItemStore, logger *zap.Logger) *SMSService {
	return &SMSService{
		store:  st,
		logger: logger,
	}
}

// Store persists an incoming SMS. The gateway-assigned id is accepted as-is
// and used as the primary key; the gateway timestamp is normalized here.
func (s *SMSService) Store(ctx context.Context, incoming models.IncomingSMS) (models.SMS, error) {
	created, err := utils.ParseTimestamp(incoming.Created)
	if err != nil {
		return models.SMS{}, err
	}

	sms := models.SMS{
		ID:         incoming.ID,
		FromNumber: incoming.FromNumber,
		ToNumber:   incoming.ToNumber,
		Message:    incoming.Message,
		Direction:  incoming.Direction,
		Created:    created,
		Processed:  false,
		ReplySent:  false,
	}

	if err := s.store.Put(ctx, SMSCollection, sms.ToItem()); err != nil {
		return models.SMS{}, err
	}
	return sms, nil
}

func (s *SMSService) Get(ctx context.Context, id string) (models.SMS, error) {
	item, err := s.store.Get(ctx, SMSCollection, id)
	if err != nil {
		return models.SMS{}, err
	}
	return models.SMSFromItem(item)
}

func (s *SMSService) List(ctx context.Context, limit int) ([]models.SMS, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	items, err := s.store.Scan(ctx, SMSCollection, limit)
	if err != nil {
		return nil, err
	}

	messages := make([]models.SMS, 0, len(items))
	for _, item := range items {
		sms, err := models.SMSFromItem(item)
		if err != nil {
			s.logger.Warn("Skipping malformed SMS item",
				zap.String("id", item.ID()),
				zap.Error(err),
			)
			continue
		}
		messages = append(messages, sms)
	}
	return messages, nil
}

// Delete removes the record, reporting store.ErrNotFound when it is absent.
func (s *SMSService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, SMSCollection, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, SMSCollection, id)
}

// MarkProcessed sets processed=true and processed_at=now. Re-invocation
// overwrites processed_at with the newer time.
func (s *SMSService) MarkProcessed(ctx context.Context, id string) (models.SMS, error) {
	fields := store.Item{
		"processed":    true,
		"processed_at": time.Now().UTC().Format(time.RFC3339),
	}
	item, err := s.store.Update(ctx, SMSCollection, id, fields)
	if err != nil {
		return models.SMS{}, err
	}
	return models.SMSFromItem(item)
}

// MarkReplySent records the reply in a single merge so reply_sent and
// reply_message are never observable half-updated.
func (s *SMSService) MarkReplySent(ctx context.Context, id, message string) (models.SMS, error) {
	fields := store.Item{
		"reply_sent":    true,
		"reply_message": message,
	}
	item, err := s.store.Update(ctx, SMSCollection, id, fields)
	if err != nil {
		return models.SMS{}, err
	}
	return models.SMSFromItem(item)
}

// GenerateReply categorizes the message by keyword containment,
// case-insensitive. The first matching category wins: greeting, then help,
// then status, then the generic acknowledgment.
func (s *SMSService) GenerateReply(message string) string {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return ReplyGreeting
	case strings.Contains(lower, "help"):
		return ReplyHelp
	case strings.Contains(lower, "status"):
		return ReplyStatus
	default:
		return ReplyGeneric
	}
}

// DeleteOlderThan deletes processed messages created before the cutoff,
// scanning up to scanLimit items. Failures on individual records are logged
// and skipped. Returns the number of deletions.
func (s *SMSService) DeleteOlderThan(ctx context.Context, cutoff time.Time, scanLimit int) (int, error) {
	items, err := s.store.Scan(ctx, SMSCollection, scanLimit)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, item := range items {
		sms, err := models.SMSFromItem(item)
		if err != nil {
			s.logger.Warn("Skipping malformed SMS item during sweep",
				zap.String("id", item.ID()),
				zap.Error(err),
			)
			continue
		}
		if !sms.Processed || !sms.Created.Before(cutoff) {
			continue
		}

		if err := s.store.Delete(ctx, SMSCollection, sms.ID); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				s.logger.Error("Failed to delete SMS during sweep",
					zap.String("id", sms.ID),
					zap.Error(err),
				)
			}
			continue
		}
		deleted++
	}
	return deleted, nil
}
