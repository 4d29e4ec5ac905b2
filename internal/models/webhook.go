package models

import (
	"time"

	"github.com/jimmiewester/skippy/internal/store"
	"github.com/jimmiewester/skippy/internal/utils"
)

// Webhook is a stored inbound webhook record. The id is server-generated and
// immutable; payload is an opaque JSON structure the core never interprets.
type Webhook struct {
	ID          string            `json:"id"`
	EventType   string            `json:"event_type"`
	Payload     map[string]any    `json:"payload"`
	Source      string            `json:"source"`
	Headers     map[string]string `json:"headers,omitempty"`
	Processed   bool              `json:"processed"`
	ProcessedAt *time.Time        `json:"processed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// WebhookCreate is the POST /webhooks request body.
type WebhookCreate struct {
	EventType string            `json:"event_type" validate:"required"`
	Payload   map[string]any    `json:"payload" validate:"required"`
	Source    string            `json:"source" validate:"required"`
	Headers   map[string]string `json:"headers,omitempty"`
}

// WebhookUpdate is a partial update: nil fields are left untouched.
type WebhookUpdate struct {
	EventType *string           `json:"event_type,omitempty"`
	Payload   map[string]any    `json:"payload,omitempty"`
	Source    *string           `json:"source,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	Processed *bool             `json:"processed,omitempty"`
}

// Fields returns only the provided attributes as a store merge set.
func (u WebhookUpdate) Fields() store.Item {
	fields := store.Item{}
	if u.EventType != nil {
		fields["event_type"] = *u.EventType
	}
	if u.Payload != nil {
		fields["payload"] = u.Payload
	}
	if u.Source != nil {
		fields["source"] = *u.Source
	}
	if u.Headers != nil {
		fields["headers"] = u.Headers
	}
	if u.Processed != nil {
		fields["processed"] = *u.Processed
	}
	return fields
}

// ToItem projects the record into its raw stored form.
func (w Webhook) ToItem() store.Item {
	item := store.Item{
		"id":         w.ID,
		"event_type": w.EventType,
		"payload":    w.Payload,
		"source":     w.Source,
		"processed":  w.Processed,
		"created_at": utils.FormatTimestamp(w.CreatedAt),
		"updated_at": utils.FormatTimestamp(w.UpdatedAt),
	}
	if w.Headers != nil {
		item["headers"] = w.Headers
	}
	if w.ProcessedAt != nil {
		item["processed_at"] = utils.FormatTimestamp(*w.ProcessedAt)
	}
	return item
}

// WebhookFromItem rebuilds a typed record from its raw stored form.
func WebhookFromItem(item store.Item) (Webhook, error) {
	w := Webhook{
		ID:        itemString(item, "id"),
		EventType: itemString(item, "event_type"),
		Source:    itemString(item, "source"),
		Processed: itemBool(item, "processed"),
		Headers:   itemStringMap(item, "headers"),
	}

	if payload, ok := item["payload"].(map[string]any); ok {
		w.Payload = payload
	}

	var err error
	if w.CreatedAt, err = itemTime(item, "created_at"); err != nil {
		return Webhook{}, err
	}
	if w.UpdatedAt, err = itemTime(item, "updated_at"); err != nil {
		return Webhook{}, err
	}
	w.ProcessedAt, err = itemTimePtr(item, "processed_at")
	if err != nil {
		return Webhook{}, err
	}
	return w, nil
}
