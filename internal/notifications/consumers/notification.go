package consumers

import (
	"context"
	"fmt"

	"github.com/quadrant/quadrant-backend/internal/notifications/repository"
	"github.com/quadrant/quadrant-backend/internal/notifications/service"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/quadrant/quadrant-backend/pkg/messaging"
)

// NotificationConsumer persists notification.created events as inbox
// rows. Delivery is best effort: a failed insert drops the message.
type NotificationConsumer struct {
	consumer *messaging.Consumer
	service  *service.NotificationService
	logger   *logger.Logger
}

// NewNotificationConsumer creates and wires the notification consumer
func NewNotificationConsumer(rmq *messaging.RabbitMQ, svc *service.NotificationService, log *logger.Logger) (*NotificationConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, "quadrant.notifications", log)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification consumer: %w", err)
	}

	nc := &NotificationConsumer{
		consumer: consumer,
		service:  svc,
		logger:   log.WithComponent("notification-consumer"),
	}

	if err := consumer.Subscribe(messaging.ExchangeQuadrantEvents, messaging.EventNotificationCreated); err != nil {
		return nil, err
	}
	consumer.RegisterHandler(messaging.EventNotificationCreated, nc.handleNotificationCreated)

	return nc, nil
}

// Start begins consuming
func (c *NotificationConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

func (c *NotificationConsumer) handleNotificationCreated(ctx context.Context, event *messaging.Event) error {
	var data messaging.NotificationCreatedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("failed to unmarshal notification event: %w", err)
	}

	n := &repository.Notification{
		WorkspaceID: data.WorkspaceID,
		RecipientID: data.RecipientID,
		Type:        data.Type,
		Title:       data.Title,
		Body:        data.Body,
	}
	if err := c.service.Persist(ctx, n); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	c.logger.Debug().
		Str("notification_id", n.ID).
		Str("recipient_id", n.RecipientID).
		Str("type", n.Type).
		Msg("notification persisted")

	return nil
}
