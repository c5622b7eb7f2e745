package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

// SkillRepository handles skill catalog persistence
type SkillRepository struct {
	db *database.DB
}

// NewSkillRepository creates a new skill repository
func NewSkillRepository(db *database.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

// Create adds a skill to the workspace catalog
func (r *SkillRepository) Create(ctx context.Context, skill *Skill) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if skill.ID == "" {
		skill.ID = uuid.New().String()
	}
	if skill.Type == "" {
		skill.Type = "hard"
	}
	skill.WorkspaceID = workspaceID
	skill.CreatedAt = NowISO()
	skill.UpdatedAt = skill.CreatedAt

	query := `
		INSERT INTO skills (id, workspace_id, name, skill_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, query,
		skill.ID, skill.WorkspaceID, skill.Name, skill.Type, skill.CreatedAt, skill.UpdatedAt,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// GetByID gets a skill by ID within the workspace
func (r *SkillRepository) GetByID(ctx context.Context, id string) (*Skill, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var skill Skill
	query := `
		SELECT id, workspace_id, name, skill_type, created_at, updated_at
		FROM skills
		WHERE id = $1 AND workspace_id = $2
	`
	err = r.db.GetContext(ctx, &skill, query, id, workspaceID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("skill")
	}
	if err != nil {
		return nil, err
	}

	return &skill, nil
}

// List lists skills in the workspace catalog
func (r *SkillRepository) List(ctx context.Context) ([]*Skill, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var skills []*Skill
	query := `
		SELECT id, workspace_id, name, skill_type, created_at, updated_at
		FROM skills
		WHERE workspace_id = $1
		ORDER BY name
	`
	if err := r.db.SelectContext(ctx, &skills, query, workspaceID); err != nil {
		return nil, err
	}
	return skills, nil
}

// Update updates a catalog skill
func (r *SkillRepository) Update(ctx context.Context, skill *Skill) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	skill.UpdatedAt = NowISO()

	query := `
		UPDATE skills SET name = $3, skill_type = $4, updated_at = $5
		WHERE id = $1 AND workspace_id = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		skill.ID, workspaceID, skill.Name, skill.Type, skill.UpdatedAt,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("skill")
	}
	return nil
}

// Delete removes a skill and its assignments
func (r *SkillRepository) Delete(ctx context.Context, id string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `DELETE FROM employee_skills WHERE skill_id = $1 AND workspace_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, workspaceID); err != nil {
		return err
	}

	query = `DELETE FROM skills WHERE id = $1 AND workspace_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, workspaceID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("skill")
	}
	return nil
}
