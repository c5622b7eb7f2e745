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

// Pilot run statuses
const (
	StatusDraft     = "draft"
	StatusPlanned   = "planned"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Step statuses
const (
	StepNotStarted = "not_started"
	StepInProgress = "in_progress"
	StepDone       = "done"
)

// PilotRun is a time-boxed trial engagement
type PilotRun struct {
	ID          string  `db:"id" json:"id"`
	WorkspaceID string  `db:"workspace_id" json:"workspace_id"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description,omitempty"`
	Status      string  `db:"status" json:"status"`
	StartDate   *string `db:"start_date" json:"start_date,omitempty"`
	EndDate     *string `db:"end_date" json:"end_date,omitempty"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at"`
}

// PilotStep is one entry of a pilot's ordered checklist
type PilotStep struct {
	ID          string `db:"id" json:"id"`
	PilotID     string `db:"pilot_id" json:"pilot_id"`
	WorkspaceID string `db:"workspace_id" json:"-"`
	OrderIndex  int    `db:"order_index" json:"order_index"`
	Title       string `db:"title" json:"title"`
	Status      string `db:"status" json:"status"`
}

// PilotParticipant links an employee to a pilot run
type PilotParticipant struct {
	ID          string `db:"id" json:"id"`
	PilotID     string `db:"pilot_id" json:"pilot_id"`
	WorkspaceID string `db:"workspace_id" json:"-"`
	EmployeeID  string `db:"employee_id" json:"employee_id"`
	AddedAt     string `db:"added_at" json:"added_at"`
}

// PilotNote is a free-form note attached to a pilot run
type PilotNote struct {
	ID          string `db:"id" json:"id"`
	PilotID     string `db:"pilot_id" json:"pilot_id"`
	WorkspaceID string `db:"workspace_id" json:"-"`
	AuthorID    string `db:"author_id" json:"author_id"`
	Body        string `db:"body" json:"body"`
	CreatedAt   string `db:"created_at" json:"created_at"`
}

// ValidStatus reports whether status is a known pilot status
func ValidStatus(status string) bool {
	switch status {
	case StatusDraft, StatusPlanned, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ValidStepStatus reports whether status is a known step status
func ValidStepStatus(status string) bool {
	switch status {
	case StepNotStarted, StepInProgress, StepDone:
		return true
	}
	return false
}

// NowISO returns the current UTC time in the stored text format
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// PilotRepository handles pilot run persistence
type PilotRepository struct {
	db *database.DB
}

// NewPilotRepository creates a new pilot repository
func NewPilotRepository(db *database.DB) *PilotRepository {
	return &PilotRepository{db: db}
}

// Create inserts a pilot run
func (r *PilotRepository) Create(ctx context.Context, p *PilotRun) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	p.WorkspaceID = workspaceID
	p.CreatedAt = NowISO()
	p.UpdatedAt = p.CreatedAt

	query := `
		INSERT INTO pilot_runs (id, workspace_id, title, description, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.WorkspaceID, p.Title, p.Description, p.Status,
		p.StartDate, p.EndDate, p.CreatedAt, p.UpdatedAt,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// GetByID gets a pilot run
func (r *PilotRepository) GetByID(ctx context.Context, id string) (*PilotRun, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var p PilotRun
	query := `
		SELECT id, workspace_id, title, description, status, start_date, end_date, created_at, updated_at
		FROM pilot_runs
		WHERE id = $1 AND workspace_id = $2
	`
	err = r.db.GetContext(ctx, &p, query, id, workspaceID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("pilot run")
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// List lists pilot runs, newest first
func (r *PilotRepository) List(ctx context.Context) ([]*PilotRun, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var pilots []*PilotRun
	query := `
		SELECT id, workspace_id, title, description, status, start_date, end_date, created_at, updated_at
		FROM pilot_runs
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &pilots, query, workspaceID); err != nil {
		return nil, err
	}
	return pilots, nil
}

// ListActiveEndingBefore lists active pilots whose end date falls on or
// before the cutoff. End dates are RFC3339 text, compared lexically.
func (r *PilotRepository) ListActiveEndingBefore(ctx context.Context, cutoff string) ([]*PilotRun, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var pilots []*PilotRun
	query := `
		SELECT id, workspace_id, title, description, status, start_date, end_date, created_at, updated_at
		FROM pilot_runs
		WHERE workspace_id = $1 AND status = 'active' AND end_date IS NOT NULL AND end_date <= $2
		ORDER BY end_date
	`
	if err := r.db.SelectContext(ctx, &pilots, query, workspaceID, cutoff); err != nil {
		return nil, err
	}
	return pilots, nil
}

// Update updates a pilot run's editable fields
func (r *PilotRepository) Update(ctx context.Context, p *PilotRun) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	p.UpdatedAt = NowISO()

	query := `
		UPDATE pilot_runs SET
			title = $3, description = $4, start_date = $5, end_date = $6, updated_at = $7
		WHERE id = $1 AND workspace_id = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		p.ID, workspaceID, p.Title, p.Description, p.StartDate, p.EndDate, p.UpdatedAt,
	)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("pilot run")
	}
	return nil
}

// UpdateStatus sets a pilot run's status
func (r *PilotRepository) UpdateStatus(ctx context.Context, id, status string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `UPDATE pilot_runs SET status = $3, updated_at = $4 WHERE id = $1 AND workspace_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, workspaceID, status, NowISO())
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("pilot run")
	}
	return nil
}

// Delete removes a pilot run and its sub-records
func (r *PilotRepository) Delete(ctx context.Context, id string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	for _, table := range []string{"pilot_steps", "pilot_participants", "pilot_notes"} {
		query := `DELETE FROM ` + table + ` WHERE pilot_id = $1 AND workspace_id = $2`
		if _, err := r.db.ExecContext(ctx, query, id, workspaceID); err != nil {
			return err
		}
	}

	query := `DELETE FROM pilot_runs WHERE id = $1 AND workspace_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, workspaceID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("pilot run")
	}
	return nil
}

// AddStep appends a checklist step
func (r *PilotRepository) AddStep(ctx context.Context, s *PilotStep) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Status == "" {
		s.Status = StepNotStarted
	}
	s.WorkspaceID = workspaceID

	query := `
		INSERT INTO pilot_steps (id, pilot_id, workspace_id, order_index, title, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, query, s.ID, s.PilotID, s.WorkspaceID, s.OrderIndex, s.Title, s.Status)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// ListSteps lists a pilot's checklist in order
func (r *PilotRepository) ListSteps(ctx context.Context, pilotID string) ([]*PilotStep, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var steps []*PilotStep
	query := `
		SELECT id, pilot_id, workspace_id, order_index, title, status
		FROM pilot_steps
		WHERE pilot_id = $1 AND workspace_id = $2
		ORDER BY order_index
	`
	if err := r.db.SelectContext(ctx, &steps, query, pilotID, workspaceID); err != nil {
		return nil, err
	}
	return steps, nil
}

// UpdateStepStatus sets one step's status
func (r *PilotRepository) UpdateStepStatus(ctx context.Context, stepID, status string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `UPDATE pilot_steps SET status = $3 WHERE id = $1 AND workspace_id = $2`
	result, err := r.db.ExecContext(ctx, query, stepID, workspaceID, status)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("pilot step")
	}
	return nil
}

// AddParticipant adds an employee to a pilot
func (r *PilotRepository) AddParticipant(ctx context.Context, p *PilotParticipant) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.WorkspaceID = workspaceID
	p.AddedAt = NowISO()

	query := `
		INSERT INTO pilot_participants (id, pilot_id, workspace_id, employee_id, added_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (pilot_id, employee_id) DO NOTHING
	`
	_, err = r.db.ExecContext(ctx, query, p.ID, p.PilotID, p.WorkspaceID, p.EmployeeID, p.AddedAt)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// ListParticipants lists a pilot's participants
func (r *PilotRepository) ListParticipants(ctx context.Context, pilotID string) ([]*PilotParticipant, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var participants []*PilotParticipant
	query := `
		SELECT id, pilot_id, workspace_id, employee_id, added_at
		FROM pilot_participants
		WHERE pilot_id = $1 AND workspace_id = $2
		ORDER BY added_at
	`
	if err := r.db.SelectContext(ctx, &participants, query, pilotID, workspaceID); err != nil {
		return nil, err
	}
	return participants, nil
}

// CountParticipants counts a pilot's participants
func (r *PilotRepository) CountParticipants(ctx context.Context, pilotID string) (int, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	query := `SELECT COUNT(*) FROM pilot_participants WHERE pilot_id = $1 AND workspace_id = $2`
	if err := r.db.GetContext(ctx, &count, query, pilotID, workspaceID); err != nil {
		return 0, err
	}
	return count, nil
}

// RemoveParticipant removes an employee from a pilot
func (r *PilotRepository) RemoveParticipant(ctx context.Context, pilotID, employeeID string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `DELETE FROM pilot_participants WHERE pilot_id = $1 AND employee_id = $2 AND workspace_id = $3`
	_, err = r.db.ExecContext(ctx, query, pilotID, employeeID, workspaceID)
	return err
}

// AddNote attaches a note to a pilot
func (r *PilotRepository) AddNote(ctx context.Context, n *PilotNote) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.WorkspaceID = workspaceID
	n.CreatedAt = NowISO()

	query := `
		INSERT INTO pilot_notes (id, pilot_id, workspace_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, query, n.ID, n.PilotID, n.WorkspaceID, n.AuthorID, n.Body, n.CreatedAt)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// ListNotes lists a pilot's notes, newest first
func (r *PilotRepository) ListNotes(ctx context.Context, pilotID string) ([]*PilotNote, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var notes []*PilotNote
	query := `
		SELECT id, pilot_id, workspace_id, author_id, body, created_at
		FROM pilot_notes
		WHERE pilot_id = $1 AND workspace_id = $2
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &notes, query, pilotID, workspaceID); err != nil {
		return nil, err
	}
	return notes, nil
}
