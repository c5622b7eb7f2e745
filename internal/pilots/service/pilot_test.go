package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadrant/quadrant-backend/internal/pilots/repository"
	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/quadrant/quadrant-backend/pkg/messaging"
	"github.com/quadrant/quadrant-backend/pkg/testutil"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

var pilotColumns = []string{"id", "workspace_id", "title", "description", "status", "start_date", "end_date", "created_at", "updated_at"}

func newTestService(t *testing.T) (*PilotService, *testutil.MockDB, *testutil.MockPublisher) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("test", "test")
	db := database.NewFromSqlx(mockDB.DB, log)
	publisher := testutil.NewMockPublisher()
	svc := NewPilotService(repository.NewPilotRepository(db), repository.NewQuestRepository(db), publisher, log)
	return svc, mockDB, publisher
}

func testCtx() context.Context {
	return workspace.WithWorkspaceContext(context.Background(), "ws-1", "user-1", "owner")
}

func pilotRow(id, status string) *sqlmock.Rows {
	return testutil.MockRows(pilotColumns...).
		AddRow(id, "ws-1", "Mentoring pilot", nil, status, nil, nil, "2026-08-01T00:00:00Z", "2026-08-01T00:00:00Z")
}

func TestSetStatusPublishesChange(t *testing.T) {
	svc, mockDB, publisher := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, title").
		WillReturnRows(pilotRow("pil-1", repository.StatusPlanned))
	mockDB.ExpectExec("UPDATE pilot_runs SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))

	p, err := svc.SetStatus(testCtx(), "pil-1", repository.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusActive, p.Status)

	publisher.AssertEventPublished(t, messaging.EventPilotStatusChanged)
	mockDB.ExpectationsWereMet(t)
}

func TestSetStatusNoOpWhenUnchanged(t *testing.T) {
	svc, mockDB, publisher := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, title").
		WillReturnRows(pilotRow("pil-1", repository.StatusActive))

	p, err := svc.SetStatus(testCtx(), "pil-1", repository.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusActive, p.Status)

	publisher.AssertNoEventsPublished(t)
	mockDB.ExpectationsWereMet(t)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	svc, mockDB, publisher := newTestService(t)
	defer mockDB.Close()

	_, err := svc.SetStatus(testCtx(), "pil-1", "paused")
	require.Error(t, err)
	publisher.AssertNoEventsPublished(t)
}

func TestAddStepRejectsUnknownStepStatus(t *testing.T) {
	svc, mockDB, _ := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, workspace_id, title").
		WillReturnRows(pilotRow("pil-1", repository.StatusDraft))

	err := svc.AddStep(testCtx(), &repository.PilotStep{
		PilotID: "pil-1",
		Title:   "Kickoff",
		Status:  "blocked",
	})
	require.Error(t, err)
	mockDB.ExpectationsWereMet(t)
}
