package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

// TrackRepository handles track (team) persistence
type TrackRepository struct {
	db *database.DB
}

// NewTrackRepository creates a new track repository
func NewTrackRepository(db *database.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create creates a new track
func (r *TrackRepository) Create(ctx context.Context, track *Track) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if track.ID == "" {
		track.ID = uuid.New().String()
	}
	track.WorkspaceID = workspaceID
	track.CreatedAt = NowISO()
	track.UpdatedAt = track.CreatedAt

	query := `
		INSERT INTO tracks (id, workspace_id, name, manager_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, query,
		track.ID, track.WorkspaceID, track.Name, track.ManagerID, track.CreatedAt, track.UpdatedAt,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// GetByID gets a track by ID within the workspace
func (r *TrackRepository) GetByID(ctx context.Context, id string) (*Track, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var track Track
	query := `
		SELECT id, workspace_id, name, manager_id, created_at, updated_at
		FROM tracks
		WHERE id = $1 AND workspace_id = $2
	`
	err = r.db.GetContext(ctx, &track, query, id, workspaceID)
	if err == sql.ErrNoRows {
		return nil, errors.TrackNotFound()
	}
	if err != nil {
		return nil, err
	}

	return &track, nil
}

// GetByManager finds the track managed by the given user.
// Returns nil without error when the user manages no track.
func (r *TrackRepository) GetByManager(ctx context.Context, managerID string) (*Track, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var track Track
	query := `
		SELECT id, workspace_id, name, manager_id, created_at, updated_at
		FROM tracks
		WHERE workspace_id = $1 AND manager_id = $2
		ORDER BY created_at
		LIMIT 1
	`
	err = r.db.GetContext(ctx, &track, query, workspaceID, managerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &track, nil
}

// First returns the oldest track in the workspace, or nil when there are none
func (r *TrackRepository) First(ctx context.Context) (*Track, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var track Track
	query := `
		SELECT id, workspace_id, name, manager_id, created_at, updated_at
		FROM tracks
		WHERE workspace_id = $1
		ORDER BY created_at
		LIMIT 1
	`
	err = r.db.GetContext(ctx, &track, query, workspaceID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &track, nil
}

// List lists tracks in the workspace
func (r *TrackRepository) List(ctx context.Context) ([]*Track, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var tracks []*Track
	query := `
		SELECT id, workspace_id, name, manager_id, created_at, updated_at
		FROM tracks
		WHERE workspace_id = $1
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &tracks, query, workspaceID); err != nil {
		return nil, err
	}
	return tracks, nil
}

// Update updates a track
func (r *TrackRepository) Update(ctx context.Context, track *Track) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	track.UpdatedAt = NowISO()

	query := `
		UPDATE tracks SET name = $3, manager_id = $4, updated_at = $5
		WHERE id = $1 AND workspace_id = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		track.ID, workspaceID, track.Name, track.ManagerID, track.UpdatedAt,
	)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.TrackNotFound()
	}
	return nil
}

// Delete removes a track and detaches its employees
func (r *TrackRepository) Delete(ctx context.Context, id string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `UPDATE employees SET track_id = NULL, track_level = NULL, updated_at = $3 WHERE track_id = $1 AND workspace_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, workspaceID, NowISO()); err != nil {
		return err
	}

	query = `DELETE FROM tracks WHERE id = $1 AND workspace_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, workspaceID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.TrackNotFound()
	}
	return nil
}
