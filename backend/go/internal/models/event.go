package models

import "time"

// IntentEventType 定义了意图生命周期事件的类型。
type IntentEventType string

const (
	EventPreviewed       IntentEventType = "PREVIEWED"
	EventCommitted       IntentEventType = "COMMITTED"
	EventRejected        IntentEventType = "REJECTED"
	EventDirectCommitted IntentEventType = "DIRECT_COMMITTED"
)

// IntentEvent 是发送到 Kafka 的意图生命周期事件。
type IntentEvent struct {
	Type       IntentEventType    `json:"type"`
	PendingID  string             `json:"pending_id,omitempty"`
	Contract   *IntentionContract `json:"contract"`
	MockID     string             `json:"mock_id,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// Key 返回事件的分区键：待确认 id 优先，否则使用提交回执 id。
func (e *IntentEvent) Key() string {
	if e.PendingID != "" {
		return e.PendingID
	}
	return e.MockID
}
