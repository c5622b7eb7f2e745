package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadrant/quadrant-backend/internal/skills/repository"
)

func strPtr(s string) *string { return &s }

func emp(id, name, level string, trackID *string) *repository.Employee {
	return &repository.Employee{ID: id, Name: name, Level: level, TrackID: trackID}
}

func skill(id, name string) *repository.Skill {
	return &repository.Skill{ID: id, Name: name, Type: "hard"}
}

func assign(employeeID, skillID string, level int) *repository.EmployeeSkill {
	return &repository.EmployeeSkill{EmployeeID: employeeID, SkillID: skillID, Level: level}
}

func TestBuildSkillMapSingleHolder(t *testing.T) {
	snap := &repository.Snapshot{
		Employees: []*repository.Employee{
			emp("a", "Anna", "Senior", nil),
			emp("b", "Boris", "Middle", nil),
			emp("c", "Clara", "Junior", nil),
		},
		Skills: []*repository.Skill{skill("s1", "GoLang")},
		Assignments: []*repository.EmployeeSkill{
			assign("a", "s1", 4),
		},
	}

	m := buildSkillMap(snap)

	require.Len(t, m.Skills, 1)
	entry := m.Skills[0]
	assert.Equal(t, 3, m.TotalEmployees)
	assert.Equal(t, 1, entry.PeopleCount)
	assert.Equal(t, 1, entry.BusFactor)
	assert.Equal(t, 33.3, entry.Coverage)
	assert.Equal(t, 4.0, entry.AverageLevel)
	assert.Equal(t, "high", entry.RiskLevel)
	assert.Equal(t, 100, entry.RiskScore)
	require.Len(t, entry.KeyHolders, 1)
	assert.Equal(t, "a", entry.KeyHolders[0].EmployeeID)
}

func TestBuildSkillMapUnassignedSkill(t *testing.T) {
	snap := &repository.Snapshot{
		Employees: []*repository.Employee{emp("a", "Anna", "Senior", nil)},
		Skills:    []*repository.Skill{skill("s1", "Kubernetes")},
	}

	m := buildSkillMap(snap)

	require.Len(t, m.Skills, 1)
	entry := m.Skills[0]
	assert.Equal(t, 0, entry.PeopleCount)
	assert.Equal(t, 0.0, entry.AverageLevel)
	assert.Equal(t, 0.0, entry.Coverage)
	assert.Equal(t, "high", entry.RiskLevel)
	assert.Equal(t, 100, entry.RiskScore)
	assert.Empty(t, entry.KeyHolders)
}

func TestBuildSkillMapRiskLevels(t *testing.T) {
	snap := &repository.Snapshot{
		Employees: []*repository.Employee{
			emp("a", "Anna", "Senior", nil),
			emp("b", "Boris", "Middle", nil),
			emp("c", "Clara", "Junior", nil),
		},
		Skills: []*repository.Skill{
			skill("s1", "One"),
			skill("s2", "Two"),
			skill("s3", "Three"),
		},
		Assignments: []*repository.EmployeeSkill{
			assign("a", "s1", 3),
			assign("a", "s2", 3), assign("b", "s2", 3),
			assign("a", "s3", 3), assign("b", "s3", 3), assign("c", "s3", 3),
		},
	}

	m := buildSkillMap(snap)

	byName := map[string]SkillMapEntry{}
	for _, e := range m.Skills {
		byName[e.Name] = e
	}

	assert.Equal(t, "high", byName["One"].RiskLevel)
	assert.Equal(t, 100, byName["One"].RiskScore)
	assert.Equal(t, "medium", byName["Two"].RiskLevel)
	assert.Equal(t, 50, byName["Two"].RiskScore)
	assert.Equal(t, "low", byName["Three"].RiskLevel)
	assert.Equal(t, 33, byName["Three"].RiskScore)
}

func TestBuildSkillMapKeyHolderOrdering(t *testing.T) {
	snap := &repository.Snapshot{
		Employees: []*repository.Employee{
			emp("a", "Anna", "Junior", nil),
			emp("b", "Boris", "Senior", nil),
			emp("c", "Clara", "Middle", nil),
			emp("d", "Dmitry", "Senior", nil),
		},
		Skills: []*repository.Skill{skill("s1", "GoLang")},
		Assignments: []*repository.EmployeeSkill{
			assign("a", "s1", 5),
			assign("b", "s1", 3),
			assign("c", "s1", 3),
			assign("d", "s1", 2),
		},
	}

	m := buildSkillMap(snap)

	require.Len(t, m.Skills, 1)
	holders := m.Skills[0].KeyHolders
	require.Len(t, holders, 3)

	// level desc, then seniority desc
	assert.Equal(t, "a", holders[0].EmployeeID)
	assert.Equal(t, "b", holders[1].EmployeeID)
	assert.Equal(t, "c", holders[2].EmployeeID)
}

func TestBuildSkillMapAverageLevelRounding(t *testing.T) {
	snap := &repository.Snapshot{
		Employees: []*repository.Employee{
			emp("a", "Anna", "Senior", nil),
			emp("b", "Boris", "Middle", nil),
			emp("c", "Clara", "Junior", nil),
		},
		Skills: []*repository.Skill{skill("s1", "GoLang")},
		Assignments: []*repository.EmployeeSkill{
			assign("a", "s1", 4),
			assign("b", "s1", 3),
			assign("c", "s1", 3),
		},
	}

	m := buildSkillMap(snap)

	assert.Equal(t, 3.3, m.Skills[0].AverageLevel)
}

func TestBuildSkillMapTeamProfiles(t *testing.T) {
	trackID := "t1"
	snap := &repository.Snapshot{
		Employees: []*repository.Employee{
			emp("a", "Anna", "Senior", strPtr(trackID)),
			emp("b", "Boris", "Middle", strPtr(trackID)),
			emp("c", "Clara", "Junior", nil),
		},
		Skills: []*repository.Skill{skill("s1", "GoLang"), skill("s2", "SQL")},
		Tracks: []*repository.Track{{ID: trackID, Name: "Platform"}},
		Assignments: []*repository.EmployeeSkill{
			assign("a", "s1", 4),
			assign("b", "s1", 3),
			assign("c", "s2", 2),
		},
	}

	m := buildSkillMap(snap)

	require.Len(t, m.Teams, 2)
	platform := m.Teams[0]
	pool := m.Teams[1]

	assert.Equal(t, "Platform", platform.TeamName)
	assert.Equal(t, 2, platform.PeopleCount)
	require.Len(t, platform.DominantSkills, 1)
	assert.Equal(t, "GoLang", platform.DominantSkills[0].SkillName)
	assert.Equal(t, 100.0, platform.DominantSkills[0].Coverage)
	assert.Equal(t, 3.5, platform.DominantSkills[0].AverageLevel)

	assert.Equal(t, UnassignedPool, pool.TeamName)
	assert.Equal(t, 1, pool.PeopleCount)
}

func TestBuildSkillMapTeamRiskSuppression(t *testing.T) {
	// Four employees all on one team holding the same skill: busFactor 4
	// makes the skill low risk workspace-wide, and 100% team coverage
	// suppresses the team risk entry entirely.
	trackID := "t1"
	employees := []*repository.Employee{
		emp("a", "Anna", "Senior", strPtr(trackID)),
		emp("b", "Boris", "Middle", strPtr(trackID)),
		emp("c", "Clara", "Junior", strPtr(trackID)),
		emp("d", "Dmitry", "Middle", strPtr(trackID)),
	}
	snap := &repository.Snapshot{
		Employees: employees,
		Skills:    []*repository.Skill{skill("s1", "GoLang"), skill("s2", "SQL")},
		Tracks:    []*repository.Track{{ID: trackID, Name: "Platform"}},
		Assignments: []*repository.EmployeeSkill{
			assign("a", "s1", 4), assign("b", "s1", 3), assign("c", "s1", 3), assign("d", "s1", 2),
			assign("a", "s2", 4),
		},
	}

	m := buildSkillMap(snap)

	require.Len(t, m.Teams, 1)
	risks := m.Teams[0].Risks
	require.Len(t, risks, 1)
	assert.Equal(t, "SQL", risks[0].SkillName)
	assert.Equal(t, "high", risks[0].Severity)
}

func TestBuildSkillMapTeamRisksCapped(t *testing.T) {
	trackID := "t1"
	snap := &repository.Snapshot{
		Employees: []*repository.Employee{emp("a", "Anna", "Senior", strPtr(trackID))},
		Skills: []*repository.Skill{
			skill("s1", "A"), skill("s2", "B"), skill("s3", "C"), skill("s4", "D"),
		},
		Tracks: []*repository.Track{{ID: trackID, Name: "Platform"}},
		Assignments: []*repository.EmployeeSkill{
			assign("a", "s1", 3), assign("a", "s2", 3), assign("a", "s3", 3), assign("a", "s4", 3),
		},
	}

	m := buildSkillMap(snap)

	require.Len(t, m.Teams, 1)
	assert.Len(t, m.Teams[0].Risks, 3)
}
