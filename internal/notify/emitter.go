// Package notify writes user notifications as a best-effort side channel.
// Emit is always invoked after the owning transition's primary write has
// committed; a failed notification write is logged and swallowed, never
// surfaced to the caller.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khojpayo/khojpayo-backend/database"
	"github.com/khojpayo/khojpayo-backend/events/modules/notifications"
	"github.com/khojpayo/khojpayo-backend/model"
)

// Emitter stores notification documents and publishes notification.created
// events. The Kafka producer is optional; when nil only the document write
// happens.
type Emitter struct {
	db       database.DBConnection
	producer *notifications.Producer
	logger   *zap.SugaredLogger
}

// NewEmitter creates a notification emitter
func NewEmitter(db database.DBConnection, producer *notifications.Producer, logger *zap.SugaredLogger) *Emitter {
	return &Emitter{db: db, producer: producer, logger: logger}
}

// Emit creates the notification and fires the downstream event. There is no
// delivery guarantee, no retry, and no ordering guarantee; errors are logged
// and dropped so the caller's committed transition is never affected.
func (e *Emitter) Emit(ctx context.Context, userID, ntype, title, body string, data map[string]interface{}) {
	notification := model.Notification{
		Key:       uuid.New().String(),
		UserID:    userID,
		Type:      ntype,
		Title:     title,
		Body:      body,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := e.db.Collections["notifications"].CreateDocument(ctx, notification); err != nil {
		e.logger.Warnw("failed to write notification", "user", userID, "type", ntype, "error", err)
		return
	}

	if e.producer == nil {
		return
	}
	if err := e.producer.PublishNotificationCreated(ctx, notification); err != nil {
		e.logger.Warnw("failed to publish notification event", "user", userID, "type", ntype, "error", err)
	}
}
