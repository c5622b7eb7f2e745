package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadrant/quadrant-backend/internal/skills/repository"
	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/quadrant/quadrant-backend/pkg/testutil"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

func newGapService(t *testing.T) (*SkillGapService, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("test", "test")
	db := database.NewFromSqlx(mockDB.DB, log)
	svc := NewSkillGapService(
		repository.NewRoleRepository(db),
		repository.NewRatingRepository(db),
		repository.NewSkillRepository(db),
		repository.NewEmployeeRepository(db),
		log,
	)
	return svc, mockDB
}

func gapCtx() context.Context {
	return workspace.WithWorkspaceContext(context.Background(), "ws-1", "user-1", "owner")
}

func TestGapEntryUnrated(t *testing.T) {
	req := &repository.RoleSkillRequirement{
		SkillID:       "s1",
		RequiredLevel: 4,
		Importance:    3,
		MustHave:      true,
	}

	entry := gapEntry(req, nil, map[string]string{"s1": "GoLang"})

	assert.Equal(t, "GoLang", entry.SkillName)
	assert.Equal(t, 4, entry.RequiredLevel)
	assert.Nil(t, entry.CurrentLevel)
	assert.Nil(t, entry.Gap)
	assert.True(t, entry.MustHave)
}

func TestGapEntryRated(t *testing.T) {
	req := &repository.RoleSkillRequirement{
		SkillID:       "s1",
		RequiredLevel: 4,
		Importance:    2,
	}
	rating := &repository.SkillRating{SkillID: "s1", Level: 2}

	entry := gapEntry(req, rating, map[string]string{"s1": "GoLang"})

	require.NotNil(t, entry.CurrentLevel)
	require.NotNil(t, entry.Gap)
	assert.Equal(t, 2, *entry.CurrentLevel)
	assert.Equal(t, -2, *entry.Gap)
}

func TestRoleGapsOrderingAndLimit(t *testing.T) {
	svc, mockDB := newGapService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("FROM role_profiles").WillReturnRows(
		testutil.MockRows("id", "workspace_id", "name", "track_id", "is_leadership", "priority", "created_at", "updated_at").
			AddRow("r1", "ws-1", "Backend Engineer", nil, false, "normal", "2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z"))

	// Six requirements so the default limit of five truncates one.
	// sA/sB/sC share the top importance, sE/sF share the bottom one.
	reqRows := testutil.MockRows("id", "role_id", "workspace_id", "skill_id", "required_level", "importance", "must_have")
	for _, r := range []struct {
		skillID    string
		level      int
		importance int
	}{
		{"sA", 4, 3},
		{"sB", 4, 3},
		{"sC", 4, 3},
		{"sD", 2, 2},
		{"sE", 1, 1},
		{"sF", 1, 1},
	} {
		reqRows.AddRow("req-"+r.skillID, "r1", "ws-1", r.skillID, r.level, r.importance, false)
	}
	mockDB.ExpectQuery("FROM role_skill_requirements").WillReturnRows(reqRows)

	mockDB.ExpectQuery("FROM employee_role_assignments").WillReturnRows(
		testutil.MockRows("id", "workspace_id", "employee_id", "role_id", "is_primary", "created_at").
			AddRow("a1", "ws-1", "emp-1", "r1", true, "2026-01-01T00:00:00Z").
			AddRow("a2", "ws-1", "emp-2", "r1", false, "2026-01-02T00:00:00Z"))

	// emp-2 has no rating for sC and sF, so those count as level 0
	ratingRows := testutil.MockRows("id", "workspace_id", "employee_id", "skill_id", "level", "source", "rated_at")
	for _, r := range []struct {
		employeeID string
		skillID    string
		level      int
	}{
		{"emp-1", "sA", 2}, {"emp-1", "sB", 3}, {"emp-1", "sC", 3},
		{"emp-1", "sD", 2}, {"emp-1", "sE", 1}, {"emp-1", "sF", 1},
		{"emp-2", "sA", 4}, {"emp-2", "sB", 3},
		{"emp-2", "sD", 2}, {"emp-2", "sE", 1},
	} {
		ratingRows.AddRow("rt-"+r.employeeID+"-"+r.skillID, "ws-1", r.employeeID, r.skillID, r.level, "manager", "2026-08-01T00:00:00Z")
	}
	mockDB.ExpectQuery("FROM skill_ratings").WillReturnRows(ratingRows)

	skillRows := testutil.MockRows("id", "workspace_id", "name", "skill_type", "created_at", "updated_at")
	for _, id := range []string{"sA", "sB", "sC", "sD", "sE", "sF"} {
		skillRows.AddRow(id, "ws-1", "Skill "+id, "hard", "2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z")
	}
	mockDB.ExpectQuery("FROM skills").WillReturnRows(skillRows)

	report, err := svc.RoleGaps(gapCtx(), "r1", 0)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", report.RoleName)
	assert.Equal(t, 2, report.Employees)

	// Importance desc, then avg gap asc, then affected employees desc.
	// sC leads its importance tier through emp-2's missing rating, sB
	// beats sA on affected employees at the same average gap, and the
	// default limit of five drops sE.
	require.Len(t, report.TopGaps, DefaultTopGapLimit)

	ids := make([]string, 0, len(report.TopGaps))
	for _, g := range report.TopGaps {
		ids = append(ids, g.SkillID)
	}
	assert.Equal(t, []string{"sC", "sB", "sA", "sD", "sF"}, ids)

	assert.Equal(t, -2.5, report.TopGaps[0].AvgGap)
	assert.Equal(t, 2, report.TopGaps[0].AffectedEmployees)
	assert.Equal(t, -1.0, report.TopGaps[1].AvgGap)
	assert.Equal(t, 2, report.TopGaps[1].AffectedEmployees)
	assert.Equal(t, -1.0, report.TopGaps[2].AvgGap)
	assert.Equal(t, 1, report.TopGaps[2].AffectedEmployees)
	assert.Equal(t, "Skill sC", report.TopGaps[0].SkillName)

	mockDB.ExpectationsWereMet(t)
}

func TestRoleGapsNoAssignedEmployees(t *testing.T) {
	svc, mockDB := newGapService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("FROM role_profiles").WillReturnRows(
		testutil.MockRows("id", "workspace_id", "name", "track_id", "is_leadership", "priority", "created_at", "updated_at").
			AddRow("r1", "ws-1", "Backend Engineer", nil, false, "normal", "2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z"))
	mockDB.ExpectQuery("FROM role_skill_requirements").WillReturnRows(
		testutil.MockRows("id", "role_id", "workspace_id", "skill_id", "required_level", "importance", "must_have").
			AddRow("req-1", "r1", "ws-1", "sA", 4, 3, true))
	mockDB.ExpectQuery("FROM employee_role_assignments").WillReturnRows(
		testutil.MockRows("id", "workspace_id", "employee_id", "role_id", "is_primary", "created_at"))
	mockDB.ExpectQuery("FROM skills").WillReturnRows(
		testutil.MockRows("id", "workspace_id", "name", "skill_type", "created_at", "updated_at").
			AddRow("sA", "ws-1", "GoLang", "hard", "2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z"))

	report, err := svc.RoleGaps(gapCtx(), "r1", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Employees)
	require.Len(t, report.TopGaps, 1)
	assert.Equal(t, 0.0, report.TopGaps[0].AvgGap)
	assert.Equal(t, 0, report.TopGaps[0].AffectedEmployees)

	mockDB.ExpectationsWereMet(t)
}

func TestGapEntryExceedsRequirement(t *testing.T) {
	req := &repository.RoleSkillRequirement{SkillID: "s1", RequiredLevel: 2}
	rating := &repository.SkillRating{SkillID: "s1", Level: 5}

	entry := gapEntry(req, rating, map[string]string{})

	require.NotNil(t, entry.Gap)
	assert.Equal(t, 3, *entry.Gap)
}
