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

// Cycle statuses
const (
	StatusDraft  = "draft"
	StatusActive = "active"
	StatusClosed = "closed"
)

// Participant sub-statuses
const (
	SubStatusPending   = "pending"
	SubStatusSubmitted = "submitted"
)

// AssessmentCycle is a time-boxed self/manager/final rating workflow
type AssessmentCycle struct {
	ID          string  `db:"id" json:"id"`
	WorkspaceID string  `db:"workspace_id" json:"workspace_id"`
	Name        string  `db:"name" json:"name"`
	Status      string  `db:"status" json:"status"`
	DueDate     *string `db:"due_date" json:"due_date,omitempty"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at"`
}

// CycleParticipant tracks one employee's progress through a cycle.
// Self, manager and final sub-statuses move independently.
type CycleParticipant struct {
	ID            string `db:"id" json:"id"`
	CycleID       string `db:"cycle_id" json:"cycle_id"`
	WorkspaceID   string `db:"workspace_id" json:"-"`
	EmployeeID    string `db:"employee_id" json:"employee_id"`
	SelfStatus    string `db:"self_status" json:"self_status"`
	ManagerStatus string `db:"manager_status" json:"manager_status"`
	FinalStatus   string `db:"final_status" json:"final_status"`
	CreatedAt     string `db:"created_at" json:"created_at"`
}

// SkillAssessment is one (employee, skill) rating sheet within a cycle
type SkillAssessment struct {
	ID           string `db:"id" json:"id"`
	CycleID      string `db:"cycle_id" json:"cycle_id"`
	WorkspaceID  string `db:"workspace_id" json:"-"`
	EmployeeID   string `db:"employee_id" json:"employee_id"`
	SkillID      string `db:"skill_id" json:"skill_id"`
	SelfLevel    *int   `db:"self_level" json:"self_level,omitempty"`
	ManagerLevel *int   `db:"manager_level" json:"manager_level,omitempty"`
	FinalLevel   *int   `db:"final_level" json:"final_level,omitempty"`
	UpdatedAt    string `db:"updated_at" json:"updated_at"`
}

// ValidStatus reports whether status is a known cycle status
func ValidStatus(status string) bool {
	return status == StatusDraft || status == StatusActive || status == StatusClosed
}

// NowISO returns the current UTC time in the stored text format
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// CycleRepository handles assessment cycle persistence
type CycleRepository struct {
	db *database.DB
}

// NewCycleRepository creates a new cycle repository
func NewCycleRepository(db *database.DB) *CycleRepository {
	return &CycleRepository{db: db}
}

// Create inserts a cycle
func (r *CycleRepository) Create(ctx context.Context, c *AssessmentCycle) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = StatusDraft
	}
	c.WorkspaceID = workspaceID
	c.CreatedAt = NowISO()
	c.UpdatedAt = c.CreatedAt

	query := `
		INSERT INTO assessment_cycles (id, workspace_id, name, status, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.WorkspaceID, c.Name, c.Status, c.DueDate, c.CreatedAt, c.UpdatedAt,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// GetByID gets a cycle
func (r *CycleRepository) GetByID(ctx context.Context, id string) (*AssessmentCycle, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var c AssessmentCycle
	query := `
		SELECT id, workspace_id, name, status, due_date, created_at, updated_at
		FROM assessment_cycles
		WHERE id = $1 AND workspace_id = $2
	`
	err = r.db.GetContext(ctx, &c, query, id, workspaceID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("assessment cycle")
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// List lists cycles, newest first
func (r *CycleRepository) List(ctx context.Context) ([]*AssessmentCycle, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var cycles []*AssessmentCycle
	query := `
		SELECT id, workspace_id, name, status, due_date, created_at, updated_at
		FROM assessment_cycles
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &cycles, query, workspaceID); err != nil {
		return nil, err
	}
	return cycles, nil
}

// UpdateStatus sets a cycle's status
func (r *CycleRepository) UpdateStatus(ctx context.Context, id, status string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `UPDATE assessment_cycles SET status = $3, updated_at = $4 WHERE id = $1 AND workspace_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, workspaceID, status, NowISO())
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("assessment cycle")
	}
	return nil
}

// AddParticipant inserts a participant row. Conflicting inserts (cycle
// re-activation) are dropped, keeping initialization idempotent.
func (r *CycleRepository) AddParticipant(ctx context.Context, p *CycleParticipant) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.SelfStatus == "" {
		p.SelfStatus = SubStatusPending
	}
	if p.ManagerStatus == "" {
		p.ManagerStatus = SubStatusPending
	}
	if p.FinalStatus == "" {
		p.FinalStatus = SubStatusPending
	}
	p.WorkspaceID = workspaceID
	p.CreatedAt = NowISO()

	query := `
		INSERT INTO cycle_participants (id, cycle_id, workspace_id, employee_id, self_status, manager_status, final_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (cycle_id, employee_id) DO NOTHING
	`
	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.CycleID, p.WorkspaceID, p.EmployeeID,
		p.SelfStatus, p.ManagerStatus, p.FinalStatus, p.CreatedAt,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// ListParticipants lists a cycle's participants
func (r *CycleRepository) ListParticipants(ctx context.Context, cycleID string) ([]*CycleParticipant, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var participants []*CycleParticipant
	query := `
		SELECT id, cycle_id, workspace_id, employee_id, self_status, manager_status, final_status, created_at
		FROM cycle_participants
		WHERE cycle_id = $1 AND workspace_id = $2
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &participants, query, cycleID, workspaceID); err != nil {
		return nil, err
	}
	return participants, nil
}

// GetParticipant gets one participant row
func (r *CycleRepository) GetParticipant(ctx context.Context, cycleID, employeeID string) (*CycleParticipant, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var p CycleParticipant
	query := `
		SELECT id, cycle_id, workspace_id, employee_id, self_status, manager_status, final_status, created_at
		FROM cycle_participants
		WHERE cycle_id = $1 AND employee_id = $2 AND workspace_id = $3
	`
	err = r.db.GetContext(ctx, &p, query, cycleID, employeeID, workspaceID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("cycle participant")
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// UpdateParticipantStatus sets one sub-status column (self, manager or
// final) for a participant.
func (r *CycleRepository) UpdateParticipantStatus(ctx context.Context, cycleID, employeeID, track, status string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	var column string
	switch track {
	case "self":
		column = "self_status"
	case "manager":
		column = "manager_status"
	case "final":
		column = "final_status"
	default:
		return errors.BadRequest("track must be self, manager or final")
	}

	query := `UPDATE cycle_participants SET ` + column + ` = $4 WHERE cycle_id = $1 AND employee_id = $2 AND workspace_id = $3`
	result, err := r.db.ExecContext(ctx, query, cycleID, employeeID, workspaceID, status)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("cycle participant")
	}
	return nil
}

// AddAssessment inserts a per-skill assessment row, idempotently
func (r *CycleRepository) AddAssessment(ctx context.Context, a *SkillAssessment) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.WorkspaceID = workspaceID
	a.UpdatedAt = NowISO()

	query := `
		INSERT INTO skill_assessments (id, cycle_id, workspace_id, employee_id, skill_id, self_level, manager_level, final_level, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (cycle_id, employee_id, skill_id) DO NOTHING
	`
	_, err = r.db.ExecContext(ctx, query,
		a.ID, a.CycleID, a.WorkspaceID, a.EmployeeID, a.SkillID,
		a.SelfLevel, a.ManagerLevel, a.FinalLevel, a.UpdatedAt,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// ListAssessments lists a participant's rating sheet for a cycle
func (r *CycleRepository) ListAssessments(ctx context.Context, cycleID, employeeID string) ([]*SkillAssessment, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var assessments []*SkillAssessment
	query := `
		SELECT id, cycle_id, workspace_id, employee_id, skill_id, self_level, manager_level, final_level, updated_at
		FROM skill_assessments
		WHERE cycle_id = $1 AND employee_id = $2 AND workspace_id = $3
		ORDER BY skill_id
	`
	if err := r.db.SelectContext(ctx, &assessments, query, cycleID, employeeID, workspaceID); err != nil {
		return nil, err
	}
	return assessments, nil
}

// SetAssessmentLevel writes one level column (self, manager or final)
// for an (employee, skill) pair in a cycle.
func (r *CycleRepository) SetAssessmentLevel(ctx context.Context, cycleID, employeeID, skillID, track string, level int) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	var column string
	switch track {
	case "self":
		column = "self_level"
	case "manager":
		column = "manager_level"
	case "final":
		column = "final_level"
	default:
		return errors.BadRequest("track must be self, manager or final")
	}

	query := `
		UPDATE skill_assessments SET ` + column + ` = $5, updated_at = $6
		WHERE cycle_id = $1 AND employee_id = $2 AND skill_id = $3 AND workspace_id = $4
	`
	result, err := r.db.ExecContext(ctx, query, cycleID, employeeID, skillID, workspaceID, level, NowISO())
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("skill assessment")
	}
	return nil
}
