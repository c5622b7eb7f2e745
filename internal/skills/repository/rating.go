package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

// SkillRating is one observation of an employee's level for a skill.
// Source is self, manager or system; the gap engine only ever reads the
// latest rating per (employee, skill) pair.
type SkillRating struct {
	ID          string `db:"id" json:"id"`
	WorkspaceID string `db:"workspace_id" json:"-"`
	EmployeeID  string `db:"employee_id" json:"employee_id"`
	SkillID     string `db:"skill_id" json:"skill_id"`
	Level       int    `db:"level" json:"level"`
	Source      string `db:"source" json:"source"`
	RatedAt     string `db:"rated_at" json:"rated_at"`
}

// RatingRepository handles skill rating persistence
type RatingRepository struct {
	db *database.DB
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *database.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Record appends a new rating observation
func (r *RatingRepository) Record(ctx context.Context, rating *SkillRating) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if rating.ID == "" {
		rating.ID = uuid.New().String()
	}
	if rating.RatedAt == "" {
		rating.RatedAt = NowISO()
	}
	rating.WorkspaceID = workspaceID

	query := `
		INSERT INTO skill_ratings (id, workspace_id, employee_id, skill_id, level, source, rated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, query,
		rating.ID, rating.WorkspaceID, rating.EmployeeID, rating.SkillID,
		rating.Level, rating.Source, rating.RatedAt,
	)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// LatestForEmployee returns the most recent rating per skill for one
// employee. Rated-at values are RFC3339 UTC text, so lexicographic
// ordering matches chronological ordering.
func (r *RatingRepository) LatestForEmployee(ctx context.Context, employeeID string) (map[string]*SkillRating, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var ratings []*SkillRating
	query := `
		SELECT DISTINCT ON (skill_id)
			id, workspace_id, employee_id, skill_id, level, source, rated_at
		FROM skill_ratings
		WHERE employee_id = $1 AND workspace_id = $2
		ORDER BY skill_id, rated_at DESC
	`
	if err := r.db.SelectContext(ctx, &ratings, query, employeeID, workspaceID); err != nil {
		return nil, err
	}

	latest := make(map[string]*SkillRating, len(ratings))
	for _, rating := range ratings {
		latest[rating.SkillID] = rating
	}
	return latest, nil
}

// LatestForEmployees returns the most recent rating per (employee, skill)
// pair for a set of employees, keyed by employee then skill.
func (r *RatingRepository) LatestForEmployees(ctx context.Context, employeeIDs []string) (map[string]map[string]*SkillRating, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string]map[string]*SkillRating, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return result, nil
	}

	var ratings []*SkillRating
	query := `
		SELECT DISTINCT ON (employee_id, skill_id)
			id, workspace_id, employee_id, skill_id, level, source, rated_at
		FROM skill_ratings
		WHERE workspace_id = $1 AND employee_id = ANY($2)
		ORDER BY employee_id, skill_id, rated_at DESC
	`
	if err := r.db.SelectContext(ctx, &ratings, query, workspaceID, pq.Array(employeeIDs)); err != nil {
		return nil, err
	}

	for _, rating := range ratings {
		if _, ok := result[rating.EmployeeID]; !ok {
			result[rating.EmployeeID] = make(map[string]*SkillRating)
		}
		result[rating.EmployeeID][rating.SkillID] = rating
	}
	return result, nil
}
