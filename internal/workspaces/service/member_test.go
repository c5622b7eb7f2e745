package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadrant/quadrant-backend/internal/workspaces/repository"
	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/quadrant/quadrant-backend/pkg/testutil"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

var memberColumns = []string{"id", "workspace_id", "user_id", "role", "created_at"}

func newTestService(t *testing.T) (*MemberService, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("test", "test")
	svc := NewMemberService(repository.NewMemberRepository(database.NewFromSqlx(mockDB.DB, log)), log)
	return svc, mockDB
}

func testCtx() context.Context {
	return workspace.WithWorkspaceContext(context.Background(), "ws-1", "user-1", "owner")
}

func memberRow(userID, role string) *sqlmock.Rows {
	return testutil.MockRows(memberColumns...).
		AddRow("m-1", "ws-1", userID, role, "2026-01-01T00:00:00Z")
}

func TestUpdateRoleRejectsDemotingLastOwner(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, user_id").
		WillReturnRows(memberRow("user-1", repository.RoleOwner))
	mockDB.ExpectQuery("SELECT COUNT(*) FROM workspace_members").
		WillReturnRows(testutil.MockRows("count").AddRow(1))

	err := svc.UpdateRole(testCtx(), "user-1", repository.RoleAdmin)
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CANNOT_REMOVE_LAST_OWNER", appErr.Code)
	mockDB.ExpectationsWereMet(t)
}

func TestUpdateRoleAllowsDemotionWithSecondOwner(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, user_id").
		WillReturnRows(memberRow("user-1", repository.RoleOwner))
	mockDB.ExpectQuery("SELECT COUNT(*) FROM workspace_members").
		WillReturnRows(testutil.MockRows("count").AddRow(2))
	mockDB.ExpectExec("UPDATE workspace_members SET role").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.UpdateRole(testCtx(), "user-1", repository.RoleAdmin)
	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestRemoveRejectsLastOwner(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, user_id").
		WillReturnRows(memberRow("user-1", repository.RoleOwner))
	mockDB.ExpectQuery("SELECT COUNT(*) FROM workspace_members").
		WillReturnRows(testutil.MockRows("count").AddRow(1))

	err := svc.Remove(testCtx(), "user-1")
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CANNOT_REMOVE_LAST_OWNER", appErr.Code)
	mockDB.ExpectationsWereMet(t)
}

func TestRemoveNonOwnerSkipsOwnerCount(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, user_id").
		WillReturnRows(memberRow("user-2", repository.RoleMember))
	mockDB.ExpectExec("DELETE FROM workspace_members").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Remove(testCtx(), "user-2")
	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestUpdateRoleRejectsUnknownRole(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	err := svc.UpdateRole(testCtx(), "user-1", "superuser")
	require.Error(t, err)
}
