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

// TalentDecision records a people decision (promotion, transfer, raise,
// exit) with its rationale, bucketed by quarter for reporting.
type TalentDecision struct {
	ID           string `db:"id" json:"id"`
	WorkspaceID  string `db:"workspace_id" json:"workspace_id"`
	EmployeeID   string `db:"employee_id" json:"employee_id"`
	EmployeeName string `db:"employee_name" json:"employee_name"`
	Decision     string `db:"decision" json:"decision"`
	Rationale    string `db:"rationale" json:"rationale"`
	Quarter      string `db:"quarter" json:"quarter"` // e.g. 2026-Q3
	DecidedAt    string `db:"decided_at" json:"decided_at"`
	CreatedAt    string `db:"created_at" json:"created_at"`
}

// NowISO returns the current UTC time in the stored text format
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// DecisionRepository handles talent decision persistence
type DecisionRepository struct {
	db *database.DB
}

// NewDecisionRepository creates a new decision repository
func NewDecisionRepository(db *database.DB) *DecisionRepository {
	return &DecisionRepository{db: db}
}

// Create inserts a decision
func (r *DecisionRepository) Create(ctx context.Context, d *TalentDecision) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.DecidedAt == "" {
		d.DecidedAt = NowISO()
	}
	d.WorkspaceID = workspaceID
	d.CreatedAt = NowISO()

	query := `
		INSERT INTO talent_decisions (id, workspace_id, employee_id, employee_name, decision, rationale, quarter, decided_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		d.ID, d.WorkspaceID, d.EmployeeID, d.EmployeeName,
		d.Decision, d.Rationale, d.Quarter, d.DecidedAt, d.CreatedAt,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// GetByID gets a decision
func (r *DecisionRepository) GetByID(ctx context.Context, id string) (*TalentDecision, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var d TalentDecision
	query := `
		SELECT id, workspace_id, employee_id, employee_name, decision, rationale, quarter, decided_at, created_at
		FROM talent_decisions
		WHERE id = $1 AND workspace_id = $2
	`
	err = r.db.GetContext(ctx, &d, query, id, workspaceID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("talent decision")
	}
	if err != nil {
		return nil, err
	}

	return &d, nil
}

// List lists decisions, newest first, optionally filtered by quarter
func (r *DecisionRepository) List(ctx context.Context, quarter string) ([]*TalentDecision, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var decisions []*TalentDecision
	if quarter != "" {
		query := `
			SELECT id, workspace_id, employee_id, employee_name, decision, rationale, quarter, decided_at, created_at
			FROM talent_decisions
			WHERE workspace_id = $1 AND quarter = $2
			ORDER BY decided_at DESC
		`
		if err := r.db.SelectContext(ctx, &decisions, query, workspaceID, quarter); err != nil {
			return nil, err
		}
		return decisions, nil
	}

	query := `
		SELECT id, workspace_id, employee_id, employee_name, decision, rationale, quarter, decided_at, created_at
		FROM talent_decisions
		WHERE workspace_id = $1
		ORDER BY decided_at DESC
	`
	if err := r.db.SelectContext(ctx, &decisions, query, workspaceID); err != nil {
		return nil, err
	}
	return decisions, nil
}

// ListForExport lists a quarter's decisions in stable export order
func (r *DecisionRepository) ListForExport(ctx context.Context, quarter string) ([]*TalentDecision, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var decisions []*TalentDecision
	query := `
		SELECT id, workspace_id, employee_id, employee_name, decision, rationale, quarter, decided_at, created_at
		FROM talent_decisions
		WHERE workspace_id = $1 AND quarter = $2
		ORDER BY decided_at, id
	`
	if err := r.db.SelectContext(ctx, &decisions, query, workspaceID, quarter); err != nil {
		return nil, err
	}
	return decisions, nil
}

// Update updates a decision's editable fields
func (r *DecisionRepository) Update(ctx context.Context, d *TalentDecision) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE talent_decisions
		SET decision = $3, rationale = $4, quarter = $5, decided_at = $6
		WHERE id = $1 AND workspace_id = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		d.ID, workspaceID, d.Decision, d.Rationale, d.Quarter, d.DecidedAt,
	)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("talent decision")
	}
	return nil
}

// Delete removes a decision
func (r *DecisionRepository) Delete(ctx context.Context, id string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `DELETE FROM talent_decisions WHERE id = $1 AND workspace_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, workspaceID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("talent decision")
	}
	return nil
}
