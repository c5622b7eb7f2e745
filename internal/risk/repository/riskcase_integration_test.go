//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/quadrant/quadrant-backend/pkg/testutil"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

func TestRiskCaseLifecycle(t *testing.T) {
	ctx := context.Background()

	container, err := testutil.NewPostgresContainer(ctx, testutil.DefaultPostgresConfig())
	require.NoError(t, err)
	defer container.Terminate(ctx)

	sqlxDB, err := container.Connect(ctx)
	require.NoError(t, err)
	defer sqlxDB.Close()

	require.NoError(t, container.CreateCoreSchema(ctx, sqlxDB))

	log := logger.New("test", "test")
	repo := NewRiskCaseRepository(database.NewFromSqlx(sqlxDB, log))

	workspaceID := uuid.New().String()
	employeeID := uuid.New().String()
	wsCtx := workspace.WithWorkspaceContext(ctx, workspaceID, uuid.New().String(), "owner")

	// No active case yet
	active, err := repo.ActiveForEmployee(wsCtx, employeeID)
	require.NoError(t, err)
	assert.Nil(t, active)

	reason := "single holder for GoLang"
	c := &RiskCase{
		EmployeeID: employeeID,
		Level:      LevelMedium,
		Reason:     &reason,
	}
	require.NoError(t, repo.Create(wsCtx, c))

	active, err = repo.ActiveForEmployee(wsCtx, employeeID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, c.ID, active.ID)
	assert.Equal(t, LevelMedium, active.Level)
	assert.Equal(t, StatusOpen, active.Status)

	// Upgrade in place
	active.Level = LevelHigh
	require.NoError(t, repo.Upgrade(wsCtx, active))

	fetched, err := repo.GetByID(wsCtx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, LevelHigh, fetched.Level)

	// Resolve
	now := NowISO()
	note := "cross training done"
	fetched.Status = StatusResolved
	fetched.ResolvedAt = &now
	fetched.ResolutionNote = &note
	require.NoError(t, repo.UpdateStatus(wsCtx, fetched))

	resolved, err := repo.GetByID(wsCtx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	// Resolved cases are not active
	active, err = repo.ActiveForEmployee(wsCtx, employeeID)
	require.NoError(t, err)
	assert.Nil(t, active)

	// Tenant isolation: a different workspace sees nothing
	otherCtx := workspace.WithWorkspaceContext(ctx, uuid.New().String(), uuid.New().String(), "owner")
	cases, err := repo.List(otherCtx, "")
	require.NoError(t, err)
	assert.Empty(t, cases)
}
