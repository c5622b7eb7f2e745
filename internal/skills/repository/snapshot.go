package repository

import (
	"context"
	"time"

	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

// Employee represents an employee row
type Employee struct {
	ID          string  `db:"id" json:"id"`
	WorkspaceID string  `db:"workspace_id" json:"workspace_id"`
	Name        string  `db:"name" json:"name"`
	Position    *string `db:"position" json:"position,omitempty"`
	Level       string  `db:"level" json:"level"` // Junior, Middle, Senior
	TrackID     *string `db:"track_id" json:"track_id,omitempty"`
	TrackLevel  *string `db:"track_level" json:"track_level,omitempty"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at"`
}

// Skill represents a skill catalog row
type Skill struct {
	ID          string `db:"id" json:"id"`
	WorkspaceID string `db:"workspace_id" json:"workspace_id"`
	Name        string `db:"name" json:"name"`
	Type        string `db:"skill_type" json:"type"` // hard, soft, product, data
	CreatedAt   string `db:"created_at" json:"created_at"`
	UpdatedAt   string `db:"updated_at" json:"updated_at"`
}

// EmployeeSkill is the employee<->skill assignment with a 1-5 level
type EmployeeSkill struct {
	EmployeeID  string `db:"employee_id" json:"employee_id"`
	SkillID     string `db:"skill_id" json:"skill_id"`
	WorkspaceID string `db:"workspace_id" json:"-"`
	Level       int    `db:"level" json:"level"`
}

// Track represents a team and its leveling ladder
type Track struct {
	ID          string  `db:"id" json:"id"`
	WorkspaceID string  `db:"workspace_id" json:"workspace_id"`
	Name        string  `db:"name" json:"name"`
	ManagerID   *string `db:"manager_id" json:"manager_id,omitempty"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at"`
}

// Snapshot is the in-memory base dataset all analytics derive from
type Snapshot struct {
	Employees   []*Employee
	Skills      []*Skill
	Tracks      []*Track
	Assignments []*EmployeeSkill
}

// NowISO returns the current UTC time formatted the way rows store it.
// Timestamps are persisted as ISO-8601 text, not native datetime columns.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// SnapshotRepository loads the workspace dataset feeding the skill map and
// gap computations. No caching: every call hits live rows.
type SnapshotRepository struct {
	db *database.DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *database.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load loads all employees, skills, tracks and assignments for the
// workspace in context.
func (r *SnapshotRepository) Load(ctx context.Context) (*Snapshot, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{}

	query := `
		SELECT id, workspace_id, name, position, level, track_id, track_level, created_at, updated_at
		FROM employees
		WHERE workspace_id = $1
		ORDER BY name
	`
	if err := r.db.SelectContext(ctx, &snap.Employees, query, workspaceID); err != nil {
		return nil, err
	}

	query = `
		SELECT id, workspace_id, name, skill_type, created_at, updated_at
		FROM skills
		WHERE workspace_id = $1
		ORDER BY name
	`
	if err := r.db.SelectContext(ctx, &snap.Skills, query, workspaceID); err != nil {
		return nil, err
	}

	query = `
		SELECT id, workspace_id, name, manager_id, created_at, updated_at
		FROM tracks
		WHERE workspace_id = $1
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &snap.Tracks, query, workspaceID); err != nil {
		return nil, err
	}

	query = `
		SELECT employee_id, skill_id, workspace_id, level
		FROM employee_skills
		WHERE workspace_id = $1
	`
	if err := r.db.SelectContext(ctx, &snap.Assignments, query, workspaceID); err != nil {
		return nil, err
	}

	return snap, nil
}
