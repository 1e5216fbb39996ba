package kafka

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"github.com/khojpayo/khojpayo-backend/database"
	"github.com/khojpayo/khojpayo-backend/events/modules/notifications"
	"github.com/khojpayo/khojpayo-backend/internal/mail"
	"github.com/khojpayo/khojpayo-backend/model"
)

// emailedTypes are the notification types worth an email on top of the
// in-app notification.
var emailedTypes = map[string]bool{
	model.NotifyClaimApproved:        true,
	model.NotifyClaimRejected:        true,
	model.NotifyVerificationApproved: true,
	model.NotifyVerificationRejected: true,
}

// RunEventProcessor consumes notification.created events and delivers the
// email-worthy ones via SMTP.
func RunEventProcessor(ctx context.Context, db database.DBConnection) error {
	brokersEnv := os.Getenv("KAFKA_BROKERS")
	var brokers []string
	if brokersEnv != "" {
		brokers = strings.Split(brokersEnv, ",")
	} else {
		brokers = []string{"localhost:9092"}
	}

	username := os.Getenv("KAFKA_API_KEY")
	password := os.Getenv("KAFKA_API_SECRET")

	var dialer *kafka.Dialer

	// Only configure SASL/TLS if credentials are provided
	if username != "" && password != "" {
		mechanism := plain.Mechanism{
			Username: username,
			Password: password,
		}

		dialer = &kafka.Dialer{
			Timeout:       10 * time.Second,
			DualStack:     true,
			SASLMechanism: mechanism,
			TLS:           &tls.Config{},
		}
	} else {
		dialer = &kafka.Dialer{
			Timeout:   10 * time.Second,
			DualStack: true,
		}
	}

	topic := database.GetEnvDefault("KAFKA_NOTIFICATION_TOPIC", "notification-events")
	var conn *kafka.Conn
	var err error

	// Retry logic: 3 tries
	for i := 1; i <= 3; i++ {
		log.Printf("Kafka connection attempt %d/3...", i)
		conn, err = dialer.DialContext(ctx, "tcp", brokers[0])
		if err == nil {
			conn.Close()
			break
		}
		if i < 3 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		return err
	}

	readerConfig := kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  "khojpayo-backend-worker",
		Topic:    topic,
		MaxBytes: 10e6,
		Dialer:   dialer,
	}

	reader := kafka.NewReader(readerConfig)

	go func() {
		defer reader.Close()
		emailConfig := mail.LoadConfig()

		log.Println("Kafka Event Processor started. Listening for notification events...")

		for {
			select {
			case <-ctx.Done():
				return
			default:
				msg, err := reader.ReadMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					continue
				}
				handleNotificationCreated(ctx, db, emailConfig, msg.Value)
			}
		}
	}()

	return nil
}

func handleNotificationCreated(ctx context.Context, db database.DBConnection, emailConfig *mail.Config, payload []byte) {
	var event notifications.NotificationCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("Skipping malformed notification event: %v", err)
		return
	}

	if !emailedTypes[event.Notification.Type] {
		return
	}

	email, err := lookupUserEmail(ctx, db, event.Notification.UserID)
	if err != nil || email == "" {
		log.Printf("No email on file for user %s, skipping delivery", event.Notification.UserID)
		return
	}

	if err := mail.SendNotificationEmail(emailConfig, email, event.Notification.Title, event.Notification.Body); err != nil {
		log.Printf("Failed to deliver notification email to %s: %v", email, err)
	}
}

func lookupUserEmail(ctx context.Context, db database.DBConnection, userID string) (string, error) {
	query := `
		FOR u IN users
			FILTER u._key == @key
			LIMIT 1
			RETURN u.email
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": userID},
	})
	if err != nil {
		return "", err
	}
	defer cursor.Close()

	var email string
	if cursor.HasMore() {
		if _, err := cursor.ReadDocument(ctx, &email); err != nil {
			return "", err
		}
	}
	return email, nil
}
