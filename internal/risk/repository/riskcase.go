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

// Risk levels, ordered low < medium < high
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Case statuses
const (
	StatusOpen       = "open"
	StatusMonitoring = "monitoring"
	StatusResolved   = "resolved"
)

// RiskCase is a tracked record of elevated risk for one employee
type RiskCase struct {
	ID             string  `db:"id" json:"id"`
	WorkspaceID    string  `db:"workspace_id" json:"workspace_id"`
	EmployeeID     string  `db:"employee_id" json:"employee_id"`
	Level          string  `db:"level" json:"level"`
	Status         string  `db:"status" json:"status"`
	Source         *string `db:"source" json:"source,omitempty"`
	Reason         *string `db:"reason" json:"reason,omitempty"`
	Recommendation *string `db:"recommendation" json:"recommendation,omitempty"`
	OwnerID        *string `db:"owner_id" json:"owner_id,omitempty"`
	ResolvedAt     *string `db:"resolved_at" json:"resolved_at,omitempty"`
	ResolutionNote *string `db:"resolution_note" json:"resolution_note,omitempty"`
	CreatedAt      string  `db:"created_at" json:"created_at"`
	UpdatedAt      string  `db:"updated_at" json:"updated_at"`
}

// LevelRank orders risk levels for escalation comparisons
func LevelRank(level string) int {
	switch level {
	case LevelHigh:
		return 3
	case LevelMedium:
		return 2
	case LevelLow:
		return 1
	default:
		return 0
	}
}

// ValidLevel reports whether level is one of low/medium/high
func ValidLevel(level string) bool {
	return LevelRank(level) > 0
}

// ValidStatus reports whether status is one of open/monitoring/resolved
func ValidStatus(status string) bool {
	return status == StatusOpen || status == StatusMonitoring || status == StatusResolved
}

// NowISO returns the current UTC time in the stored text format
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// RiskCaseRepository handles risk case persistence
type RiskCaseRepository struct {
	db *database.DB
}

// NewRiskCaseRepository creates a new risk case repository
func NewRiskCaseRepository(db *database.DB) *RiskCaseRepository {
	return &RiskCaseRepository{db: db}
}

// Create inserts a new risk case
func (r *RiskCaseRepository) Create(ctx context.Context, c *RiskCase) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = StatusOpen
	}
	c.WorkspaceID = workspaceID
	c.CreatedAt = NowISO()
	c.UpdatedAt = c.CreatedAt

	query := `
		INSERT INTO risk_cases (id, workspace_id, employee_id, level, status, source, reason, recommendation, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.WorkspaceID, c.EmployeeID, c.Level, c.Status,
		c.Source, c.Reason, c.Recommendation, c.OwnerID, c.CreatedAt, c.UpdatedAt,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// GetByID gets a risk case by ID
func (r *RiskCaseRepository) GetByID(ctx context.Context, id string) (*RiskCase, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var c RiskCase
	query := `
		SELECT id, workspace_id, employee_id, level, status, source, reason, recommendation, owner_id, resolved_at, resolution_note, created_at, updated_at
		FROM risk_cases
		WHERE id = $1 AND workspace_id = $2
	`
	err = r.db.GetContext(ctx, &c, query, id, workspaceID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundCode("RISK_CASE_NOT_FOUND", "risk case")
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// ActiveForEmployee returns the employee's open or monitoring case with
// the highest level, or nil when there is none.
func (r *RiskCaseRepository) ActiveForEmployee(ctx context.Context, employeeID string) (*RiskCase, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var c RiskCase
	query := `
		SELECT id, workspace_id, employee_id, level, status, source, reason, recommendation, owner_id, resolved_at, resolution_note, created_at, updated_at
		FROM risk_cases
		WHERE employee_id = $1 AND workspace_id = $2 AND status IN ('open', 'monitoring')
		ORDER BY
			CASE level WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC,
			created_at
		LIMIT 1
	`
	err = r.db.GetContext(ctx, &c, query, employeeID, workspaceID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// List lists risk cases in the workspace, optionally filtered by status
func (r *RiskCaseRepository) List(ctx context.Context, status string) ([]*RiskCase, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var cases []*RiskCase
	if status != "" {
		query := `
			SELECT id, workspace_id, employee_id, level, status, source, reason, recommendation, owner_id, resolved_at, resolution_note, created_at, updated_at
			FROM risk_cases
			WHERE workspace_id = $1 AND status = $2
			ORDER BY created_at DESC
		`
		err = r.db.SelectContext(ctx, &cases, query, workspaceID, status)
	} else {
		query := `
			SELECT id, workspace_id, employee_id, level, status, source, reason, recommendation, owner_id, resolved_at, resolution_note, created_at, updated_at
			FROM risk_cases
			WHERE workspace_id = $1
			ORDER BY created_at DESC
		`
		err = r.db.SelectContext(ctx, &cases, query, workspaceID)
	}
	if err != nil {
		return nil, err
	}
	return cases, nil
}

// Upgrade raises an existing case's level in place, merging reason and
// recommendation text.
func (r *RiskCaseRepository) Upgrade(ctx context.Context, c *RiskCase) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	c.UpdatedAt = NowISO()

	query := `
		UPDATE risk_cases SET
			level = $3, source = $4, reason = $5, recommendation = $6, updated_at = $7
		WHERE id = $1 AND workspace_id = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		c.ID, workspaceID, c.Level, c.Source, c.Reason, c.Recommendation, c.UpdatedAt,
	)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFoundCode("RISK_CASE_NOT_FOUND", "risk case")
	}
	return nil
}

// UpdateStatus moves a case to a new status. Resolving stamps the
// resolution fields.
func (r *RiskCaseRepository) UpdateStatus(ctx context.Context, c *RiskCase) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	c.UpdatedAt = NowISO()

	query := `
		UPDATE risk_cases SET
			status = $3, resolved_at = $4, resolution_note = $5, updated_at = $6
		WHERE id = $1 AND workspace_id = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		c.ID, workspaceID, c.Status, c.ResolvedAt, c.ResolutionNote, c.UpdatedAt,
	)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFoundCode("RISK_CASE_NOT_FOUND", "risk case")
	}
	return nil
}
