// Package notifications handles Kafka event production for notification events.
package notifications

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/khojpayo/khojpayo-backend/model"
)

// Producer handles sending notification events to Kafka
type Producer struct {
	Writer *kafka.Writer
}

// NewProducer initializes a new Kafka writer for notification events
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		Writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// PublishNotificationCreated sends the event to the Kafka topic
func (p *Producer) PublishNotificationCreated(ctx context.Context, notification model.Notification) error {
	event := NotificationCreatedEvent{
		EventType:     "notification.created",
		EventID:       uuid.New().String(),
		EventTime:     time.Now().UTC(),
		SchemaVersion: "v1",
		Notification:  notification,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(notification.UserID),
		Value: payload,
	})
}

// Close cleans up the Kafka writer
func (p *Producer) Close() error {
	if p.Writer != nil {
		return p.Writer.Close()
	}
	return nil
}
