package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

// Notification is an inbox row for one recipient
type Notification struct {
	ID          string `db:"id" json:"id"`
	WorkspaceID string `db:"workspace_id" json:"workspace_id"`
	RecipientID string `db:"recipient_id" json:"recipient_id"`
	Type        string `db:"notification_type" json:"type"`
	Title       string `db:"title" json:"title"`
	Body        string `db:"body" json:"body"`
	Read        bool   `db:"read" json:"read"`
	CreatedAt   string `db:"created_at" json:"created_at"`
}

// NotificationRepository handles notification persistence
type NotificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification row. Unlike other repositories this one
// takes the workspace ID explicitly: the consumer runs outside any
// request context.
func (r *NotificationRepository) Create(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	query := `
		INSERT INTO notifications (id, workspace_id, recipient_id, notification_type, title, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.WorkspaceID, n.RecipientID, n.Type, n.Title, n.Body, n.Read, n.CreatedAt,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// ListForRecipient lists a recipient's notifications, newest first
func (r *NotificationRepository) ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]*Notification, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var notifications []*Notification
	if unreadOnly {
		query := `
			SELECT id, workspace_id, recipient_id, notification_type, title, body, read, created_at
			FROM notifications
			WHERE workspace_id = $1 AND recipient_id = $2 AND read = false
			ORDER BY created_at DESC
		`
		err = r.db.SelectContext(ctx, &notifications, query, workspaceID, recipientID)
	} else {
		query := `
			SELECT id, workspace_id, recipient_id, notification_type, title, body, read, created_at
			FROM notifications
			WHERE workspace_id = $1 AND recipient_id = $2
			ORDER BY created_at DESC
		`
		err = r.db.SelectContext(ctx, &notifications, query, workspaceID, recipientID)
	}
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flags one notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `UPDATE notifications SET read = true WHERE id = $1 AND workspace_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, workspaceID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("notification")
	}
	return nil
}

// MarkAllRead flags all of a recipient's notifications as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `UPDATE notifications SET read = true WHERE workspace_id = $1 AND recipient_id = $2 AND read = false`
	_, err = r.db.ExecContext(ctx, query, workspaceID, recipientID)
	return err
}

// GetByID gets one notification
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*Notification, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var n Notification
	query := `
		SELECT id, workspace_id, recipient_id, notification_type, title, body, read, created_at
		FROM notifications
		WHERE id = $1 AND workspace_id = $2
	`
	err = r.db.GetContext(ctx, &n, query, id, workspaceID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("notification")
	}
	if err != nil {
		return nil, err
	}

	return &n, nil
}
