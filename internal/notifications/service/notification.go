package service

import (
	"context"

	"github.com/quadrant/quadrant-backend/internal/notifications/repository"
	"github.com/quadrant/quadrant-backend/pkg/logger"
)

// NotificationService serves the notification inbox
type NotificationService struct {
	repo   *repository.NotificationRepository
	logger *logger.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo *repository.NotificationRepository, log *logger.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		logger: log.WithComponent("notification-service"),
	}
}

// ListForRecipient lists a recipient's notifications
func (s *NotificationService) ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]*repository.Notification, error) {
	return s.repo.ListForRecipient(ctx, recipientID, unreadOnly)
}

// MarkRead flags one notification as read
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead flags all of a recipient's notifications as read
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) error {
	return s.repo.MarkAllRead(ctx, recipientID)
}

// Persist stores a notification delivered over the event channel
func (s *NotificationService) Persist(ctx context.Context, n *repository.Notification) error {
	return s.repo.Create(ctx, n)
}
