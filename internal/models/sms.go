package models

import (
	"time"

	"github.com/jimmiewester/skippy/internal/store"
	"github.com/jimmiewester/skippy/internal/utils"
)

// SMS is a stored SMS record. Unlike webhooks the id comes from the upstream
// gateway and is used as the primary key unchanged.
type SMS struct {
	ID           string     `json:"id"`
	FromNumber   string     `json:"from_number"`
	ToNumber     string     `json:"to_number"`
	Message      string     `json:"message"`
	Direction    string     `json:"direction"`
	Created      time.Time  `json:"created"`
	Processed    bool       `json:"processed"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	ReplySent    bool       `json:"reply_sent"`
	ReplyMessage *string    `json:"reply_message,omitempty"`
}

// IncomingSMS is the normalized form of a 46elks SMS webhook. The gateway's
// "from"/"to" form fields are renamed before this struct is built.
type IncomingSMS struct {
	ID         string `json:"id" validate:"required"`
	FromNumber string `json:"from_number" validate:"required"`
	ToNumber   string `json:"to_number" validate:"required"`
	Message    string `json:"message"`
	Direction  string `json:"direction" validate:"required"`
	Created    string `json:"created" validate:"required"`
}

// SMSReply is the POST /sms/{id}/reply request body. ToNumber defaults to
// the original sender when empty.
type SMSReply struct {
	Message  string `json:"message" validate:"required"`
	ToNumber string `json:"to_number,omitempty"`
}

func (s SMS) ToItem() store.Item {
	item := store.Item{
		"id":          s.ID,
		"from_number": s.FromNumber,
		"to_number":   s.ToNumber,
		"message":     s.Message,
		"direction":   s.Direction,
		"created":     utils.FormatTimestamp(s.Created),
		"processed":   s.Processed,
		"reply_sent":  s.ReplySent,
	}
	if s.ProcessedAt != nil {
		item["processed_at"] = utils.FormatTimestamp(*s.ProcessedAt)
	}
	if s.ReplyMessage != nil {
		item["reply_message"] = *s.ReplyMessage
	}
	return item
}

func SMSFromItem(item store.Item) (SMS, error) {
	s := SMS{
		ID:         itemString(item, "id"),
		FromNumber: itemString(item, "from_number"),
		ToNumber:   itemString(item, "to_number"),
		Message:    itemString(item, "message"),
		Direction:  itemString(item, "direction"),
		Processed:  itemBool(item, "processed"),
		ReplySent:  itemBool(item, "reply_sent"),
	}

	var err error
	if s.Created, err = itemTime(item, "created"); err != nil {
		return SMS{}, err
	}
	if s.ProcessedAt, err = itemTimePtr(item, "processed_at"); err != nil {
		return SMS{}, err
	}
	if msg, ok := item["reply_message"].(string); ok {
		s.ReplyMessage = &msg
	}
	return s, nil
}
