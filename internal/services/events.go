package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/avdeev2017/gw-auth-service/internal/logger"
	"github.com/avdeev2017/gw-auth-service/internal/models"
)

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// publishAuthEvent publishes an account lifecycle event. Publishing is
// fire-and-forget: failures are logged and never fail the request, and a
// nil writer disables publishing entirely.
func publishAuthEvent(ctx context.Context, w KafkaWriter, eventType string, userID uuid.UUID, email string) {
	if w == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "type", eventType)
		return
	}

	event := models.AuthEvent{
		EventID:   uuid.New(),
		Type:      eventType,
		UserID:    userID,
		Email:     email,
		Timestamp: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal auth event", "type", eventType, "err", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(userID.String()),
		Value: payload,
	}

	if err := w.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish auth event", "type", eventType, "err", err)
		return
	}

	logger.Log.Infow("auth event published", "type", eventType, "user_id", userID)
}
