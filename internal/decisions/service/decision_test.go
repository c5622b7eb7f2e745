package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadrant/quadrant-backend/internal/decisions/repository"
	skillsrepo "github.com/quadrant/quadrant-backend/internal/skills/repository"
	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/quadrant/quadrant-backend/pkg/testutil"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

var decisionColumns = []string{
	"id", "workspace_id", "employee_id", "employee_name",
	"decision", "rationale", "quarter", "decided_at", "created_at",
}

func newTestService(t *testing.T) (*DecisionService, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("test", "test")
	db := database.NewFromSqlx(mockDB.DB, log)
	svc := NewDecisionService(repository.NewDecisionRepository(db), skillsrepo.NewEmployeeRepository(db), log)
	return svc, mockDB
}

func testCtx() context.Context {
	return workspace.WithWorkspaceContext(context.Background(), "ws-1", "user-1", "owner")
}

func TestExportCSVEmptyQuarter(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, employee_id").
		WillReturnRows(testutil.MockRows(decisionColumns...))

	out, err := svc.ExportCSV(testCtx(), "2026-Q1")
	require.NoError(t, err)
	assert.Equal(t, "id,employee,decision,rationale,quarter,decided_at\n", out)
	mockDB.ExpectationsWereMet(t)
}

func TestExportCSVQuotesAllFields(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	rows := testutil.MockRows(decisionColumns...).
		AddRow("d-1", "ws-1", "emp-1", "Anna Schmidt",
			"promote", `strong "lead" signals`, "2026-Q3",
			"2026-08-10T00:00:00Z", "2026-08-10T00:00:00Z")
	mockDB.ExpectQuery("SELECT id, workspace_id, employee_id").
		WillReturnRows(rows)

	out, err := svc.ExportCSV(testCtx(), "2026-Q3")
	require.NoError(t, err)

	expected := "id,employee,decision,rationale,quarter,decided_at\n" +
		`"d-1","Anna Schmidt","promote","strong ""lead"" signals","2026-Q3","2026-08-10T00:00:00Z"` + "\n"
	assert.Equal(t, expected, out)
	mockDB.ExpectationsWereMet(t)
}

func TestExportCSVRequiresQuarter(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	_, err := svc.ExportCSV(testCtx(), "")
	require.Error(t, err)
}
