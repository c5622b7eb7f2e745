package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

// EmployeeRepository handles employee persistence
type EmployeeRepository struct {
	db *database.DB
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *database.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create creates a new employee in the workspace
func (r *EmployeeRepository) Create(ctx context.Context, emp *Employee) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if emp.ID == "" {
		emp.ID = uuid.New().String()
	}
	if emp.Level == "" {
		emp.Level = "Junior"
	}
	emp.WorkspaceID = workspaceID
	emp.CreatedAt = NowISO()
	emp.UpdatedAt = emp.CreatedAt

	query := `
		INSERT INTO employees (id, workspace_id, name, position, level, track_id, track_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		emp.ID, emp.WorkspaceID, emp.Name, emp.Position, emp.Level,
		emp.TrackID, emp.TrackLevel, emp.CreatedAt, emp.UpdatedAt,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// GetByID gets an employee by ID within the workspace
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*Employee, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var emp Employee
	query := `
		SELECT id, workspace_id, name, position, level, track_id, track_level, created_at, updated_at
		FROM employees
		WHERE id = $1 AND workspace_id = $2
	`
	err = r.db.GetContext(ctx, &emp, query, id, workspaceID)
	if err == sql.ErrNoRows {
		return nil, errors.EmployeeNotFound()
	}
	if err != nil {
		return nil, err
	}

	return &emp, nil
}

// List lists employees in the workspace
func (r *EmployeeRepository) List(ctx context.Context) ([]*Employee, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var employees []*Employee
	query := `
		SELECT id, workspace_id, name, position, level, track_id, track_level, created_at, updated_at
		FROM employees
		WHERE workspace_id = $1
		ORDER BY name
	`
	if err := r.db.SelectContext(ctx, &employees, query, workspaceID); err != nil {
		return nil, err
	}
	return employees, nil
}

// ListByTrack lists employees whose primary track matches
func (r *EmployeeRepository) ListByTrack(ctx context.Context, trackID string) ([]*Employee, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var employees []*Employee
	query := `
		SELECT id, workspace_id, name, position, level, track_id, track_level, created_at, updated_at
		FROM employees
		WHERE workspace_id = $1 AND track_id = $2
		ORDER BY name
	`
	if err := r.db.SelectContext(ctx, &employees, query, workspaceID, trackID); err != nil {
		return nil, err
	}
	return employees, nil
}

// Update updates an employee
func (r *EmployeeRepository) Update(ctx context.Context, emp *Employee) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	emp.UpdatedAt = NowISO()

	query := `
		UPDATE employees SET
			name = $3, position = $4, level = $5, track_id = $6, track_level = $7, updated_at = $8
		WHERE id = $1 AND workspace_id = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		emp.ID, workspaceID, emp.Name, emp.Position, emp.Level,
		emp.TrackID, emp.TrackLevel, emp.UpdatedAt,
	)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.EmployeeNotFound()
	}
	return nil
}

// Delete removes an employee and its skill assignments
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `DELETE FROM employee_skills WHERE employee_id = $1 AND workspace_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, workspaceID); err != nil {
		return err
	}

	query = `DELETE FROM employees WHERE id = $1 AND workspace_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, workspaceID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.EmployeeNotFound()
	}
	return nil
}

// UpsertSkill sets an employee's level for a skill (1-5)
func (r *EmployeeRepository) UpsertSkill(ctx context.Context, es *EmployeeSkill) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}
	es.WorkspaceID = workspaceID

	query := `
		INSERT INTO employee_skills (employee_id, skill_id, workspace_id, level)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (employee_id, skill_id)
		DO UPDATE SET level = $4
	`
	_, err = r.db.ExecContext(ctx, query, es.EmployeeID, es.SkillID, es.WorkspaceID, es.Level)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// RemoveSkill removes a skill assignment from an employee
func (r *EmployeeRepository) RemoveSkill(ctx context.Context, employeeID, skillID string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `DELETE FROM employee_skills WHERE employee_id = $1 AND skill_id = $2 AND workspace_id = $3`
	_, err = r.db.ExecContext(ctx, query, employeeID, skillID, workspaceID)
	return err
}
