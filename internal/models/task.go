package models

// Task kinds understood by the worker.
const (
	TaskProcessWebhook  = "process-webhook"
	TaskProcessSMS      = "process-sms"
	TaskSendReply       = "send-reply"
	TaskCleanupWebhooks = "cleanup-webhooks"
	TaskCleanupSMS      = "cleanup-sms"
)

// Task is the queue message for one unit of deferred work. It carries only
// the record id (plus destination and text for send-reply); handlers always
// re-fetch current record state from the store instead of trusting a
// snapshot.
type Task struct {
	Type       string `json:"type"`
	RecordID   string `json:"record_id,omitempty"`
	RetryCount int    `json:"retry_count"`
	ToNumber   string `json:"to_number,omitempty"`
	Message    string `json:"message,omitempty"`
}
