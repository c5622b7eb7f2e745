package workspace

import (
	"context"
	"errors"
)

// contextKey is a private type for context keys to prevent collisions
type contextKey string

const (
	workspaceIDKey contextKey = "workspace_id"
	userIDKey      contextKey = "user_id"
	userRoleKey    contextKey = "user_role"
)

var (
	// ErrNoWorkspaceInContext is returned when workspace context is missing
	ErrNoWorkspaceInContext = errors.New("no workspace in context")
)

// WithWorkspaceContext adds workspace and actor information to the context.
// This should be called by middleware after resolving the workspace claim.
func WithWorkspaceContext(ctx context.Context, workspaceID, userID, role string) context.Context {
	ctx = context.WithValue(ctx, workspaceIDKey, workspaceID)
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, userRoleKey, role)
	return ctx
}

// WithWorkspaceID adds only the workspace ID to context
func WithWorkspaceID(ctx context.Context, workspaceID string) context.Context {
	return context.WithValue(ctx, workspaceIDKey, workspaceID)
}

// ID extracts the workspace ID from context.
// Every repository query is filtered on this value; missing workspace
// context is a fail-fast condition.
func ID(ctx context.Context) (string, error) {
	id, ok := ctx.Value(workspaceIDKey).(string)
	if !ok || id == "" {
		return "", ErrNoWorkspaceInContext
	}
	return id, nil
}

// UserID extracts the acting user ID from context, empty when absent.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// UserRole extracts the acting user's role from context, empty when absent.
func UserRole(ctx context.Context) string {
	role, _ := ctx.Value(userRoleKey).(string)
	return role
}
