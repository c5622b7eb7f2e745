package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

// Quest statuses
const (
	QuestDraft     = "draft"
	QuestActive    = "active"
	QuestCompleted = "completed"
)

// Quest is a lightweight engagement without the pilot checklist
type Quest struct {
	ID          string  `db:"id" json:"id"`
	WorkspaceID string  `db:"workspace_id" json:"workspace_id"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description,omitempty"`
	Status      string  `db:"status" json:"status"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at"`
}

// ValidQuestStatus reports whether status is a known quest status
func ValidQuestStatus(status string) bool {
	return status == QuestDraft || status == QuestActive || status == QuestCompleted
}

// QuestRepository handles quest persistence
type QuestRepository struct {
	db *database.DB
}

// NewQuestRepository creates a new quest repository
func NewQuestRepository(db *database.DB) *QuestRepository {
	return &QuestRepository{db: db}
}

// Create inserts a quest
func (r *QuestRepository) Create(ctx context.Context, q *Quest) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.Status == "" {
		q.Status = QuestDraft
	}
	q.WorkspaceID = workspaceID
	q.CreatedAt = NowISO()
	q.UpdatedAt = q.CreatedAt

	query := `
		INSERT INTO quests (id, workspace_id, title, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, query,
		q.ID, q.WorkspaceID, q.Title, q.Description, q.Status, q.CreatedAt, q.UpdatedAt,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// GetByID gets a quest
func (r *QuestRepository) GetByID(ctx context.Context, id string) (*Quest, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var q Quest
	query := `
		SELECT id, workspace_id, title, description, status, created_at, updated_at
		FROM quests
		WHERE id = $1 AND workspace_id = $2
	`
	err = r.db.GetContext(ctx, &q, query, id, workspaceID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("quest")
	}
	if err != nil {
		return nil, err
	}

	return &q, nil
}

// List lists quests, newest first
func (r *QuestRepository) List(ctx context.Context) ([]*Quest, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var quests []*Quest
	query := `
		SELECT id, workspace_id, title, description, status, created_at, updated_at
		FROM quests
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &quests, query, workspaceID); err != nil {
		return nil, err
	}
	return quests, nil
}

// UpdateStatus sets a quest's status
func (r *QuestRepository) UpdateStatus(ctx context.Context, id, status string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `UPDATE quests SET status = $3, updated_at = $4 WHERE id = $1 AND workspace_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, workspaceID, status, NowISO())
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("quest")
	}
	return nil
}

// Delete removes a quest
func (r *QuestRepository) Delete(ctx context.Context, id string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `DELETE FROM quests WHERE id = $1 AND workspace_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, workspaceID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("quest")
	}
	return nil
}
