package repository

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

// OneOnOne is a scheduled or completed manager/employee 1:1
type OneOnOne struct {
	ID          string  `db:"id" json:"id"`
	WorkspaceID string  `db:"workspace_id" json:"-"`
	EmployeeID  string  `db:"employee_id" json:"employee_id"`
	ManagerID   string  `db:"manager_id" json:"manager_id"`
	ScheduledAt string  `db:"scheduled_at" json:"scheduled_at"`
	Status      string  `db:"status" json:"status"` // scheduled, completed, cancelled
	Notes       *string `db:"notes" json:"notes,omitempty"`
}

// DevelopmentGoal is an employee development goal with an optional due date
type DevelopmentGoal struct {
	ID          string  `db:"id" json:"id"`
	WorkspaceID string  `db:"workspace_id" json:"-"`
	EmployeeID  string  `db:"employee_id" json:"employee_id"`
	Title       string  `db:"title" json:"title"`
	Status      string  `db:"status" json:"status"` // active, completed, cancelled
	DueDate     *string `db:"due_date" json:"due_date,omitempty"`
}

// SurveyResponse is one employee's pending or submitted feedback survey answer
type SurveyResponse struct {
	ID          string  `db:"id" json:"id"`
	WorkspaceID string  `db:"workspace_id" json:"-"`
	SurveyID    string  `db:"survey_id" json:"survey_id"`
	SurveyTitle string  `db:"survey_title" json:"survey_title"`
	EmployeeID  string  `db:"employee_id" json:"employee_id"`
	SubmittedAt *string `db:"submitted_at" json:"submitted_at,omitempty"`
}

// NowISO returns the current UTC time in the stored text format
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// SourceRepository reads the tables feeding the manager agenda. These
// tables are migrated independently of the core schema, so every query
// degrades to empty results when its table does not exist yet.
type SourceRepository struct {
	db *database.DB
}

// NewSourceRepository creates a new source repository
func NewSourceRepository(db *database.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

func degrade(err error) error {
	if database.IsUndefinedTable(err) {
		return nil
	}
	return err
}

// UpcomingOneOnOnes lists scheduled 1:1s for a manager up to a cutoff,
// soonest first.
func (r *SourceRepository) UpcomingOneOnOnes(ctx context.Context, managerID, cutoff string) ([]*OneOnOne, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var meetings []*OneOnOne
	query := `
		SELECT id, workspace_id, employee_id, manager_id, scheduled_at, status, notes
		FROM one_on_ones
		WHERE workspace_id = $1 AND manager_id = $2 AND status = 'scheduled' AND scheduled_at <= $3
		ORDER BY scheduled_at
	`
	if err := r.db.SelectContext(ctx, &meetings, query, workspaceID, managerID, cutoff); err != nil {
		return nil, degrade(err)
	}
	return meetings, nil
}

// LastCompletedOneOnOnes returns the most recent completed 1:1 time per
// employee, keyed by employee ID. Employees with no completed 1:1 are
// absent from the map.
func (r *SourceRepository) LastCompletedOneOnOnes(ctx context.Context, employeeIDs []string) (map[string]string, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]string, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return latest, nil
	}

	var meetings []*OneOnOne
	query := `
		SELECT DISTINCT ON (employee_id)
			id, workspace_id, employee_id, manager_id, scheduled_at, status, notes
		FROM one_on_ones
		WHERE workspace_id = $1 AND status = 'completed' AND employee_id = ANY($2)
		ORDER BY employee_id, scheduled_at DESC
	`
	if err := r.db.SelectContext(ctx, &meetings, query, workspaceID, pq.Array(employeeIDs)); err != nil {
		return nil, degrade(err)
	}

	for _, m := range meetings {
		latest[m.EmployeeID] = m.ScheduledAt
	}
	return latest, nil
}

// ActiveGoals lists active development goals for a set of employees
func (r *SourceRepository) ActiveGoals(ctx context.Context, employeeIDs []string) ([]*DevelopmentGoal, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	if len(employeeIDs) == 0 {
		return nil, nil
	}

	var goals []*DevelopmentGoal
	query := `
		SELECT id, workspace_id, employee_id, title, status, due_date
		FROM development_goals
		WHERE workspace_id = $1 AND status = 'active' AND employee_id = ANY($2)
		ORDER BY due_date NULLS LAST
	`
	if err := r.db.SelectContext(ctx, &goals, query, workspaceID, pq.Array(employeeIDs)); err != nil {
		return nil, degrade(err)
	}
	return goals, nil
}

// QuarterReportExists reports whether a quarterly report row exists for
// the given quarter label, e.g. "2026-Q3".
func (r *SourceRepository) QuarterReportExists(ctx context.Context, quarter string) (bool, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return false, err
	}

	var count int
	query := `SELECT COUNT(*) FROM quarterly_reports WHERE workspace_id = $1 AND quarter = $2`
	if err := r.db.GetContext(ctx, &count, query, workspaceID, quarter); err != nil {
		return false, degrade(err)
	}
	return count > 0, nil
}

// PendingSurveyResponses lists unanswered responses to active feedback
// surveys for a set of employees.
func (r *SourceRepository) PendingSurveyResponses(ctx context.Context, employeeIDs []string) ([]*SurveyResponse, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	if len(employeeIDs) == 0 {
		return nil, nil
	}

	var responses []*SurveyResponse
	query := `
		SELECT sr.id, sr.workspace_id, sr.survey_id, fs.title AS survey_title, sr.employee_id, sr.submitted_at
		FROM survey_responses sr
		JOIN feedback_surveys fs ON fs.id = sr.survey_id
		WHERE sr.workspace_id = $1 AND fs.status = 'active'
			AND sr.submitted_at IS NULL AND sr.employee_id = ANY($2)
		ORDER BY fs.title, sr.employee_id
	`
	if err := r.db.SelectContext(ctx, &responses, query, workspaceID, pq.Array(employeeIDs)); err != nil {
		return nil, degrade(err)
	}
	return responses, nil
}
