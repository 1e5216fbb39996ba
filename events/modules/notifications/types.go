// Package notifications defines the event contract for notification events.
package notifications

import (
	"time"

	"github.com/khojpayo/khojpayo-backend/model"
)

// NotificationCreatedEvent is published after a notification document has
// been written. Downstream consumers deliver emails or push messages from it.
type NotificationCreatedEvent struct {
	EventType     string             `json:"event_type"` // "notification.created"
	EventID       string             `json:"event_id"`
	EventTime     time.Time          `json:"event_time"`
	SchemaVersion string             `json:"schema_version"`
	Notification  model.Notification `json:"notification"`
}
