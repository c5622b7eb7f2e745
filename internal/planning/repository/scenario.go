package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
	"github.com/shopspring/decimal"
)

// Scenario statuses
const (
	StatusDraft    = "draft"
	StatusReview   = "review"
	StatusApproved = "approved"
	StatusArchived = "archived"
)

// Action types
const (
	ActionHire     = "hire"
	ActionDevelop  = "develop"
	ActionReassign = "reassign"
	ActionPromote  = "promote"
	ActionBackfill = "backfill"
)

// MoveScenario is a container of proposed talent actions
type MoveScenario struct {
	ID          string  `db:"id" json:"id"`
	WorkspaceID string  `db:"workspace_id" json:"workspace_id"`
	TrackID     *string `db:"track_id" json:"track_id,omitempty"`
	Title       string  `db:"title" json:"title"`
	Status      string  `db:"status" json:"status"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at"`
}

// MoveScenarioAction is one proposed hire/develop/promote step
type MoveScenarioAction struct {
	ID              string          `db:"id" json:"id"`
	ScenarioID      string          `db:"scenario_id" json:"scenario_id"`
	WorkspaceID     string          `db:"workspace_id" json:"-"`
	ActionType      string          `db:"action_type" json:"action_type"`
	RoleID          *string         `db:"role_id" json:"role_id,omitempty"`
	EmployeeID      *string         `db:"employee_id" json:"employee_id,omitempty"`
	Description     string          `db:"description" json:"description"`
	EstimatedCost   decimal.Decimal `db:"estimated_cost" json:"estimated_cost"`
	EstimatedMonths *int            `db:"estimated_months" json:"estimated_months,omitempty"`
	CreatedAt       string          `db:"created_at" json:"created_at"`
}

// ValidStatus reports whether status is a known scenario status
func ValidStatus(status string) bool {
	switch status {
	case StatusDraft, StatusReview, StatusApproved, StatusArchived:
		return true
	}
	return false
}

// ValidActionType reports whether t is a known action type
func ValidActionType(t string) bool {
	switch t {
	case ActionHire, ActionDevelop, ActionReassign, ActionPromote, ActionBackfill:
		return true
	}
	return false
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ScenarioRepository handles move scenario persistence
type ScenarioRepository struct {
	db *database.DB
}

// NewScenarioRepository creates a new scenario repository
func NewScenarioRepository(db *database.DB) *ScenarioRepository {
	return &ScenarioRepository{db: db}
}

// Create inserts a scenario
func (r *ScenarioRepository) Create(ctx context.Context, s *MoveScenario) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Status == "" {
		s.Status = StatusDraft
	}
	s.WorkspaceID = workspaceID
	s.CreatedAt = nowISO()
	s.UpdatedAt = s.CreatedAt

	query := `
		INSERT INTO move_scenarios (id, workspace_id, track_id, title, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.WorkspaceID, s.TrackID, s.Title, s.Status, s.CreatedAt, s.UpdatedAt,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// GetByID gets a scenario with its actions
func (r *ScenarioRepository) GetByID(ctx context.Context, id string) (*MoveScenario, []*MoveScenarioAction, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, nil, err
	}

	var s MoveScenario
	query := `
		SELECT id, workspace_id, track_id, title, status, created_at, updated_at
		FROM move_scenarios
		WHERE id = $1 AND workspace_id = $2
	`
	err = r.db.GetContext(ctx, &s, query, id, workspaceID)
	if err == sql.ErrNoRows {
		return nil, nil, errors.NotFound("move scenario")
	}
	if err != nil {
		return nil, nil, err
	}

	var actions []*MoveScenarioAction
	query = `
		SELECT id, scenario_id, workspace_id, action_type, role_id, employee_id, description, estimated_cost, estimated_months, created_at
		FROM move_scenario_actions
		WHERE scenario_id = $1 AND workspace_id = $2
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &actions, query, id, workspaceID); err != nil {
		return nil, nil, err
	}

	return &s, actions, nil
}

// List lists scenarios, newest first
func (r *ScenarioRepository) List(ctx context.Context) ([]*MoveScenario, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var scenarios []*MoveScenario
	query := `
		SELECT id, workspace_id, track_id, title, status, created_at, updated_at
		FROM move_scenarios
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &scenarios, query, workspaceID); err != nil {
		return nil, err
	}
	return scenarios, nil
}

// UpdateStatus sets a scenario's status
func (r *ScenarioRepository) UpdateStatus(ctx context.Context, id, status string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `UPDATE move_scenarios SET status = $3, updated_at = $4 WHERE id = $1 AND workspace_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, workspaceID, status, nowISO())
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("move scenario")
	}
	return nil
}

// AddAction appends an action to a scenario
func (r *ScenarioRepository) AddAction(ctx context.Context, a *MoveScenarioAction) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.WorkspaceID = workspaceID
	a.CreatedAt = nowISO()

	query := `
		INSERT INTO move_scenario_actions (id, scenario_id, workspace_id, action_type, role_id, employee_id, description, estimated_cost, estimated_months, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.ExecContext(ctx, query,
		a.ID, a.ScenarioID, a.WorkspaceID, a.ActionType, a.RoleID, a.EmployeeID,
		a.Description, a.EstimatedCost, a.EstimatedMonths, a.CreatedAt,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// RemoveAction deletes one action from a scenario
func (r *ScenarioRepository) RemoveAction(ctx context.Context, scenarioID, actionID string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `DELETE FROM move_scenario_actions WHERE id = $1 AND scenario_id = $2 AND workspace_id = $3`
	result, err := r.db.ExecContext(ctx, query, actionID, scenarioID, workspaceID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("scenario action")
	}
	return nil
}

// Delete removes a scenario and its actions
func (r *ScenarioRepository) Delete(ctx context.Context, id string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `DELETE FROM move_scenario_actions WHERE scenario_id = $1 AND workspace_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, workspaceID); err != nil {
		return err
	}

	query = `DELETE FROM move_scenarios WHERE id = $1 AND workspace_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, workspaceID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("move scenario")
	}
	return nil
}
