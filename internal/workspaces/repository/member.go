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

// Member roles
const (
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
)

// Member is a user's membership in a workspace
type Member struct {
	ID          string `db:"id" json:"id"`
	WorkspaceID string `db:"workspace_id" json:"workspace_id"`
	UserID      string `db:"user_id" json:"user_id"`
	Role        string `db:"role" json:"role"`
	CreatedAt   string `db:"created_at" json:"created_at"`
}

// ValidRole reports whether role is a known member role
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// MemberRepository handles workspace membership persistence
type MemberRepository struct {
	db *database.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *database.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Add adds a member to the workspace
func (r *MemberRepository) Add(ctx context.Context, m *Member) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Role == "" {
		m.Role = RoleMember
	}
	m.WorkspaceID = workspaceID
	m.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	query := `
		INSERT INTO workspace_members (id, workspace_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (workspace_id, user_id)
		DO UPDATE SET role = $4
	`
	_, err = r.db.ExecContext(ctx, query, m.ID, m.WorkspaceID, m.UserID, m.Role, m.CreatedAt)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// List lists workspace members, owners first
func (r *MemberRepository) List(ctx context.Context) ([]*Member, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var members []*Member
	query := `
		SELECT id, workspace_id, user_id, role, created_at
		FROM workspace_members
		WHERE workspace_id = $1
		ORDER BY CASE role WHEN 'owner' THEN 0 WHEN 'admin' THEN 1 WHEN 'manager' THEN 2 ELSE 3 END, created_at
	`
	if err := r.db.SelectContext(ctx, &members, query, workspaceID); err != nil {
		return nil, err
	}
	return members, nil
}

// GetByUser gets one membership row
func (r *MemberRepository) GetByUser(ctx context.Context, userID string) (*Member, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return nil, err
	}

	var m Member
	query := `
		SELECT id, workspace_id, user_id, role, created_at
		FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2
	`
	err = r.db.GetContext(ctx, &m, query, workspaceID, userID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("workspace member")
	}
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// OwnerID returns the user ID of the oldest workspace owner
func (r *MemberRepository) OwnerID(ctx context.Context) (string, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return "", err
	}

	var userID string
	query := `
		SELECT user_id
		FROM workspace_members
		WHERE workspace_id = $1 AND role = 'owner'
		ORDER BY created_at
		LIMIT 1
	`
	err = r.db.GetContext(ctx, &userID, query, workspaceID)
	if err == sql.ErrNoRows {
		return "", errors.NotFound("workspace owner")
	}
	if err != nil {
		return "", err
	}

	return userID, nil
}

// CountOwners counts workspace owners
func (r *MemberRepository) CountOwners(ctx context.Context) (int, error) {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	query := `SELECT COUNT(*) FROM workspace_members WHERE workspace_id = $1 AND role = 'owner'`
	if err := r.db.GetContext(ctx, &count, query, workspaceID); err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateRole changes a member's role
func (r *MemberRepository) UpdateRole(ctx context.Context, userID, role string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `UPDATE workspace_members SET role = $3 WHERE workspace_id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, workspaceID, userID, role)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("workspace member")
	}
	return nil
}

// Remove removes a member from the workspace
func (r *MemberRepository) Remove(ctx context.Context, userID string) error {
	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		return err
	}

	query := `DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, workspaceID, userID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("workspace member")
	}
	return nil
}
