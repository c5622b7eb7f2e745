package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadrant/quadrant-backend/internal/assessments/repository"
	skillsrepo "github.com/quadrant/quadrant-backend/internal/skills/repository"
	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/quadrant/quadrant-backend/pkg/messaging"
	"github.com/quadrant/quadrant-backend/pkg/testutil"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

var cycleColumns = []string{"id", "workspace_id", "name", "status", "due_date", "created_at", "updated_at"}

func newTestService(t *testing.T) (*CycleService, *testutil.MockDB, *testutil.MockPublisher) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("test", "test")
	db := database.NewFromSqlx(mockDB.DB, log)
	publisher := testutil.NewMockPublisher()
	svc := NewCycleService(
		repository.NewCycleRepository(db),
		skillsrepo.NewSnapshotRepository(db),
		skillsrepo.NewRatingRepository(db),
		publisher,
		log,
	)
	return svc, mockDB, publisher
}

func testCtx() context.Context {
	return workspace.WithWorkspaceContext(context.Background(), "ws-1", "user-1", "owner")
}

func cycleRow(id, status string) *sqlmock.Rows {
	return testutil.MockRows(cycleColumns...).
		AddRow(id, "ws-1", "H2 review", status, nil, "2026-08-01T00:00:00Z", "2026-08-01T00:00:00Z")
}

func TestActivateFansOutParticipantsAndSheets(t *testing.T) {
	svc, mockDB, publisher := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, name, status").
		WillReturnRows(cycleRow("cyc-1", repository.StatusDraft))

	// Snapshot load: employees, skills, tracks, assignments
	mockDB.ExpectQuery("FROM employees").WillReturnRows(
		testutil.MockRows("id", "workspace_id", "name", "position", "level", "track_id", "track_level", "created_at", "updated_at").
			AddRow("emp-1", "ws-1", "Anna", nil, "Senior", nil, nil, "2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z").
			AddRow("emp-2", "ws-1", "Boris", nil, "Middle", nil, nil, "2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z"))
	mockDB.ExpectQuery("FROM skills").WillReturnRows(
		testutil.MockRows("id", "workspace_id", "name", "skill_type", "created_at", "updated_at").
			AddRow("s1", "ws-1", "GoLang", "hard", "2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z"))
	mockDB.ExpectQuery("FROM tracks").WillReturnRows(
		testutil.MockRows("id", "workspace_id", "name", "manager_id", "created_at", "updated_at"))
	mockDB.ExpectQuery("FROM employee_skills").WillReturnRows(
		testutil.MockRows("employee_id", "skill_id", "workspace_id", "level").
			AddRow("emp-1", "s1", "ws-1", 4))

	// One participant row per employee, one sheet row per assignment
	mockDB.ExpectExec("INSERT INTO cycle_participants").WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectExec("INSERT INTO cycle_participants").WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectExec("INSERT INTO skill_assessments").WillReturnResult(sqlmock.NewResult(0, 1))

	mockDB.ExpectExec("UPDATE assessment_cycles SET status").WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := svc.Activate(testCtx(), "cyc-1")
	require.NoError(t, err)
	assert.Equal(t, repository.StatusActive, c.Status)

	publisher.AssertEventPublished(t, messaging.EventCycleActivated)
	mockDB.ExpectationsWereMet(t)
}

func TestActivateAlreadyActiveDoesNotFlipStatus(t *testing.T) {
	svc, mockDB, publisher := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, name, status").
		WillReturnRows(cycleRow("cyc-1", repository.StatusActive))

	// Empty workspace: nothing to fan out, and conflicts would be
	// dropped anyway on re-activation
	mockDB.ExpectQuery("FROM employees").WillReturnRows(
		testutil.MockRows("id", "workspace_id", "name", "position", "level", "track_id", "track_level", "created_at", "updated_at"))
	mockDB.ExpectQuery("FROM skills").WillReturnRows(
		testutil.MockRows("id", "workspace_id", "name", "skill_type", "created_at", "updated_at"))
	mockDB.ExpectQuery("FROM tracks").WillReturnRows(
		testutil.MockRows("id", "workspace_id", "name", "manager_id", "created_at", "updated_at"))
	mockDB.ExpectQuery("FROM employee_skills").WillReturnRows(
		testutil.MockRows("employee_id", "skill_id", "workspace_id", "level"))

	c, err := svc.Activate(testCtx(), "cyc-1")
	require.NoError(t, err)
	assert.Equal(t, repository.StatusActive, c.Status)

	publisher.AssertEventPublished(t, messaging.EventCycleActivated)
	mockDB.ExpectationsWereMet(t)
}

func TestActivateRejectsClosedCycle(t *testing.T) {
	svc, mockDB, publisher := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, name, status").
		WillReturnRows(cycleRow("cyc-1", repository.StatusClosed))

	_, err := svc.Activate(testCtx(), "cyc-1")
	require.Error(t, err)
	publisher.AssertNoEventsPublished(t)
	mockDB.ExpectationsWereMet(t)
}

func TestCloseActiveCycle(t *testing.T) {
	svc, mockDB, publisher := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, name, status").
		WillReturnRows(cycleRow("cyc-1", repository.StatusActive))
	mockDB.ExpectExec("UPDATE assessment_cycles SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := svc.Close(testCtx(), "cyc-1")
	require.NoError(t, err)
	assert.Equal(t, repository.StatusClosed, c.Status)

	publisher.AssertEventPublished(t, messaging.EventCycleClosed)
	mockDB.ExpectationsWereMet(t)
}

func TestCloseRejectsDraftCycle(t *testing.T) {
	svc, mockDB, publisher := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, name, status").
		WillReturnRows(cycleRow("cyc-1", repository.StatusDraft))

	_, err := svc.Close(testCtx(), "cyc-1")
	require.Error(t, err)
	publisher.AssertNoEventsPublished(t)
	mockDB.ExpectationsWereMet(t)
}

func TestSubmitLevelsRejectsOutOfRange(t *testing.T) {
	svc, mockDB, _ := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, name, status").
		WillReturnRows(cycleRow("cyc-1", repository.StatusActive))
	mockDB.ExpectQuery("SELECT id, cycle_id, workspace_id, employee_id").
		WillReturnRows(testutil.MockRows("id", "cycle_id", "workspace_id", "employee_id", "self_status", "manager_status", "final_status", "created_at").
			AddRow("p-1", "cyc-1", "ws-1", "emp-1", "pending", "pending", "pending", "2026-08-01T00:00:00Z"))

	err := svc.SubmitLevels(testCtx(), "cyc-1", "emp-1", "self", map[string]int{"s1": 6})
	require.Error(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestFinalizeRecordsRatings(t *testing.T) {
	svc, mockDB, _ := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, name, status").
		WillReturnRows(cycleRow("cyc-1", repository.StatusActive))
	mockDB.ExpectQuery("SELECT id, cycle_id, workspace_id, employee_id").
		WillReturnRows(testutil.MockRows("id", "cycle_id", "workspace_id", "employee_id", "self_status", "manager_status", "final_status", "created_at").
			AddRow("p-1", "cyc-1", "ws-1", "emp-1", "submitted", "submitted", "pending", "2026-08-01T00:00:00Z"))

	mockDB.ExpectExec("UPDATE skill_assessments SET final_level").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectExec("INSERT INTO skill_ratings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectExec("UPDATE cycle_participants SET final_status").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Finalize(testCtx(), "cyc-1", "emp-1", map[string]int{"s1": 4})
	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}
