package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

// RoleProfile is a named role with per-skill level requirements
type RoleProfile struct {
	ID           string  `db:"id" json:"id"`
	WorkspaceID  string  `db:"workspace_id" json:"workspace_id"`
	Name         string  `db:"name" json:"name"`
	TrackID      *string `db:"track_id" json:"track_id,omitempty"`
	IsLeadership bool    `db:"is_leadership" json:"is_leadership"`
	Priority     string  `db:"priority" json:"priority"` // low, normal, high
	CreatedAt    string  `db:"created_at" json:"created_at"`
	UpdatedAt    string  `db:"updated_at" json:"updated_at"`
}

// RoleSkillRequirement is the required level of one skill for a role
type RoleSkillRequirement struct {
	ID            string `db:"id" json:"id"`
	RoleID        string `db:"role_id" json:"role_id"`
	WorkspaceID   string `db:"workspace_id" json:"-"`
	SkillID       string `db:"skill_id" json:"skill_id"`
	RequiredLevel int    `db:"required_level" json:"required_level"`
	Importance    int    `db:"importance" json:"importance"`
	MustHave      bool   `db:"must_have" json:"must_have"`
}

// EmployeeRoleAssignment links an employee to a role profile
type EmployeeRoleAssignment struct {
	ID          string `db:"id" json:"id"`
	WorkspaceID string `db:"workspace_id" json:"-"`
	EmployeeID  string `db:"employee_id" json:"employee_id"`
	RoleID      string `db:"role_id" json:"role_id"`
	IsPrimary   bool   `db:"is_primary" json:"is_primary"`
	CreatedAt   string `db:"created_at" json:"created_at"`
}

// RoleRepository handles role profiles, their skill requirements and
// employee assignments.
type RoleRepository struct {
	db *database.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *database.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Create creates a role profile
func (r *RoleRepository) Create(ctx context.Context, role *RoleProfile) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if role.ID == "" {
		role.ID = uuid.New().String()
	}
	if role.Priority == "" {
		role.Priority = "normal"
	}
	role.WorkspaceID = workspaceID
	role.CreatedAt = NowISO()
	role.UpdatedAt = role.CreatedAt

	query := `
		INSERT INTO role_profiles (id, workspace_id, name, track_id, is_leadership, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		role.ID, role.WorkspaceID, role.Name, role.TrackID,
		role.IsLeadership, role.Priority, role.CreatedAt, role.UpdatedAt,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// GetByID gets a role profile by ID
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*RoleProfile, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var role RoleProfile
	query := `
		SELECT id, workspace_id, name, track_id, is_leadership, priority, created_at, updated_at
		FROM role_profiles
		WHERE id = $1 AND workspace_id = $2
	`
	err = r.db.GetContext(ctx, &role, query, id, workspaceID)
	if err == sql.ErrNoRows {
		return nil, errors.RoleNotFound()
	}
	if err != nil {
		return nil, err
	}

	return &role, nil
}

// List lists role profiles in the workspace
func (r *RoleRepository) List(ctx context.Context) ([]*RoleProfile, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var roles []*RoleProfile
	query := `
		SELECT id, workspace_id, name, track_id, is_leadership, priority, created_at, updated_at
		FROM role_profiles
		WHERE workspace_id = $1
		ORDER BY name
	`
	if err := r.db.SelectContext(ctx, &roles, query, workspaceID); err != nil {
		return nil, err
	}
	return roles, nil
}

// ListByTrack lists role profiles attached to a track
func (r *RoleRepository) ListByTrack(ctx context.Context, trackID string) ([]*RoleProfile, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var roles []*RoleProfile
	query := `
		SELECT id, workspace_id, name, track_id, is_leadership, priority, created_at, updated_at
		FROM role_profiles
		WHERE workspace_id = $1 AND track_id = $2
		ORDER BY name
	`
	if err := r.db.SelectContext(ctx, &roles, query, workspaceID, trackID); err != nil {
		return nil, err
	}
	return roles, nil
}

// Requirements lists the skill requirements of a role
func (r *RoleRepository) Requirements(ctx context.Context, roleID string) ([]*RoleSkillRequirement, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var reqs []*RoleSkillRequirement
	query := `
		SELECT id, role_id, workspace_id, skill_id, required_level, importance, must_have
		FROM role_skill_requirements
		WHERE role_id = $1 AND workspace_id = $2
		ORDER BY importance DESC, skill_id
	`
	if err := r.db.SelectContext(ctx, &reqs, query, roleID, workspaceID); err != nil {
		return nil, err
	}
	return reqs, nil
}

// SetRequirement upserts a role's required level for a skill
func (r *RoleRepository) SetRequirement(ctx context.Context, req *RoleSkillRequirement) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	req.WorkspaceID = workspaceID

	query := `
		INSERT INTO role_skill_requirements (id, role_id, workspace_id, skill_id, required_level, importance, must_have)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (role_id, skill_id)
		DO UPDATE SET required_level = $5, importance = $6, must_have = $7
	`
	_, err = r.db.ExecContext(ctx, query,
		req.ID, req.RoleID, req.WorkspaceID, req.SkillID,
		req.RequiredLevel, req.Importance, req.MustHave,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// RemoveRequirement deletes a role's requirement for a skill
func (r *RoleRepository) RemoveRequirement(ctx context.Context, roleID, skillID string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `DELETE FROM role_skill_requirements WHERE role_id = $1 AND skill_id = $2 AND workspace_id = $3`
	_, err = r.db.ExecContext(ctx, query, roleID, skillID, workspaceID)
	return err
}

// AssignEmployee links an employee to a role profile
func (r *RoleRepository) AssignEmployee(ctx context.Context, a *EmployeeRoleAssignment) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.WorkspaceID = workspaceID
	a.CreatedAt = NowISO()

	query := `
		INSERT INTO employee_role_assignments (id, workspace_id, employee_id, role_id, is_primary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (employee_id, role_id)
		DO UPDATE SET is_primary = $5
	`
	_, err = r.db.ExecContext(ctx, query,
		a.ID, a.WorkspaceID, a.EmployeeID, a.RoleID, a.IsPrimary, a.CreatedAt,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// AssignmentsForEmployee lists role assignments of one employee,
// primary first, then oldest first.
func (r *RoleRepository) AssignmentsForEmployee(ctx context.Context, employeeID string) ([]*EmployeeRoleAssignment, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var assignments []*EmployeeRoleAssignment
	query := `
		SELECT id, workspace_id, employee_id, role_id, is_primary, created_at
		FROM employee_role_assignments
		WHERE employee_id = $1 AND workspace_id = $2
		ORDER BY is_primary DESC, created_at
	`
	if err := r.db.SelectContext(ctx, &assignments, query, employeeID, workspaceID); err != nil {
		return nil, err
	}
	return assignments, nil
}

// AssignmentsForRole lists all employees assigned to a role
func (r *RoleRepository) AssignmentsForRole(ctx context.Context, roleID string) ([]*EmployeeRoleAssignment, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var assignments []*EmployeeRoleAssignment
	query := `
		SELECT id, workspace_id, employee_id, role_id, is_primary, created_at
		FROM employee_role_assignments
		WHERE role_id = $1 AND workspace_id = $2
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &assignments, query, roleID, workspaceID); err != nil {
		return nil, err
	}
	return assignments, nil
}

// UnassignEmployee removes an employee's role assignment
func (r *RoleRepository) UnassignEmployee(ctx context.Context, employeeID, roleID string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `DELETE FROM employee_role_assignments WHERE employee_id = $1 AND role_id = $2 AND workspace_id = $3`
	_, err = r.db.ExecContext(ctx, query, employeeID, roleID, workspaceID)
	return err
}
