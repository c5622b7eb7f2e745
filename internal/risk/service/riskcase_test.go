package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadrant/quadrant-backend/internal/risk/events"
	"github.com/quadrant/quadrant-backend/internal/risk/repository"
	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/quadrant/quadrant-backend/pkg/messaging"
	"github.com/quadrant/quadrant-backend/pkg/testutil"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

type stubOwnerResolver struct {
	ownerID string
}

func (s *stubOwnerResolver) WorkspaceOwnerID(ctx context.Context) (string, error) {
	return s.ownerID, nil
}

var caseColumns = []string{
	"id", "workspace_id", "employee_id", "level", "status",
	"source", "reason", "recommendation", "owner_id",
	"resolved_at", "resolution_note", "created_at", "updated_at",
}

func newTestService(t *testing.T) (*RiskCaseService, *testutil.MockDB, *testutil.MockPublisher) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("test", "test")
	publisher := testutil.NewMockPublisher()
	repo := repository.NewRiskCaseRepository(database.NewFromSqlx(mockDB.DB, log))
	svc := NewRiskCaseService(repo, events.NewRiskEventPublisher(publisher, log), &stubOwnerResolver{ownerID: "owner-1"}, log)
	return svc, mockDB, publisher
}

func testCtx() context.Context {
	return workspace.WithWorkspaceContext(context.Background(), "ws-1", "user-1", "owner")
}

func errNoRows() error {
	return sql.ErrNoRows
}

func undefinedTableError() error {
	return &pq.Error{Code: "42P01"}
}

func activeCaseRow(id, level string) *sqlmock.Rows {
	return testutil.MockRows(caseColumns...).AddRow(
		id, "ws-1", "emp-1", level, "open",
		nil, "low coverage", nil, nil,
		nil, nil, "2026-08-01T00:00:00Z", "2026-08-01T00:00:00Z",
	)
}

func TestEnsureRiskCaseCreatesNewCase(t *testing.T) {
	svc, mockDB, publisher := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, employee_id").
		WillReturnError(errNoRows())

	mockDB.ExpectExec("INSERT INTO risk_cases").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := svc.EnsureRiskCase(testCtx(), &EnsureRiskCaseInput{
		EmployeeID: "emp-1",
		Level:      repository.LevelHigh,
		Reason:     "bus factor 1",
	})
	require.NoError(t, err)
	assert.Equal(t, repository.LevelHigh, c.Level)
	assert.Equal(t, repository.StatusOpen, c.Status)

	publisher.AssertEventPublished(t, messaging.EventRiskCaseOpened)
	assert.Equal(t, 1, publisher.CountEvents(messaging.EventNotificationCreated))
	mockDB.ExpectationsWereMet(t)
}

func TestEnsureRiskCaseIdempotentAtSameLevel(t *testing.T) {
	svc, mockDB, publisher := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, employee_id").
		WillReturnRows(activeCaseRow("case-1", "medium"))

	c, err := svc.EnsureRiskCase(testCtx(), &EnsureRiskCaseInput{
		EmployeeID: "emp-1",
		Level:      repository.LevelMedium,
	})
	require.NoError(t, err)
	assert.Equal(t, "case-1", c.ID)
	assert.Equal(t, "medium", c.Level)

	publisher.AssertNoEventsPublished(t)
	mockDB.ExpectationsWereMet(t)
}

func TestEnsureRiskCaseLowerLevelReturnsExisting(t *testing.T) {
	svc, mockDB, publisher := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, employee_id").
		WillReturnRows(activeCaseRow("case-1", "high"))

	c, err := svc.EnsureRiskCase(testCtx(), &EnsureRiskCaseInput{
		EmployeeID: "emp-1",
		Level:      repository.LevelLow,
	})
	require.NoError(t, err)
	assert.Equal(t, "case-1", c.ID)
	assert.Equal(t, "high", c.Level)

	publisher.AssertNoEventsPublished(t)
	mockDB.ExpectationsWereMet(t)
}

func TestEnsureRiskCaseEscalatesInPlace(t *testing.T) {
	svc, mockDB, publisher := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, employee_id").
		WillReturnRows(activeCaseRow("case-1", "low"))

	mockDB.ExpectExec("UPDATE risk_cases SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := svc.EnsureRiskCase(testCtx(), &EnsureRiskCaseInput{
		EmployeeID:     "emp-1",
		Level:          repository.LevelHigh,
		Reason:         "lost backup holder",
		Recommendation: "start cross training",
	})
	require.NoError(t, err)
	assert.Equal(t, "case-1", c.ID)
	assert.Equal(t, repository.LevelHigh, c.Level)
	require.NotNil(t, c.Reason)
	assert.Equal(t, "low coverage\nlost backup holder", *c.Reason)

	publisher.AssertEventPublished(t, messaging.EventRiskCaseEscalated)
	assert.Equal(t, 1, publisher.CountEvents(messaging.EventNotificationCreated))
	assert.Equal(t, 0, publisher.CountEvents(messaging.EventRiskCaseOpened))
	mockDB.ExpectationsWereMet(t)
}

func TestEnsureRiskCaseRejectsUnknownLevel(t *testing.T) {
	svc, mockDB, publisher := newTestService(t)
	defer mockDB.Close()

	_, err := svc.EnsureRiskCase(testCtx(), &EnsureRiskCaseInput{
		EmployeeID: "emp-1",
		Level:      "critical",
	})
	require.Error(t, err)
	publisher.AssertNoEventsPublished(t)
}

func TestUpdateStatusResolvedNotifiesOwner(t *testing.T) {
	svc, mockDB, publisher := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, employee_id").
		WillReturnRows(activeCaseRow("case-1", "high"))

	mockDB.ExpectExec("UPDATE risk_cases SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := svc.UpdateStatus(testCtx(), "case-1", repository.StatusResolved, "cross training complete")
	require.NoError(t, err)
	assert.Equal(t, repository.StatusResolved, c.Status)
	require.NotNil(t, c.ResolvedAt)
	require.NotNil(t, c.ResolutionNote)
	assert.Equal(t, "cross training complete", *c.ResolutionNote)

	publisher.AssertEventPublished(t, messaging.EventRiskCaseResolved)
	assert.Equal(t, 1, publisher.CountEvents(messaging.EventNotificationCreated))
	mockDB.ExpectationsWereMet(t)
}

func TestListDegradesWhenTableMissing(t *testing.T) {
	svc, mockDB, _ := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, employee_id").
		WillReturnError(undefinedTableError())

	cases, err := svc.List(testCtx(), "")
	require.NoError(t, err)
	assert.Empty(t, cases)
	mockDB.ExpectationsWereMet(t)
}
