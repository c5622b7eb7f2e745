package service

import (
	"context"
	"math"
	"sort"

	"github.com/quadrant/quadrant-backend/internal/skills/repository"
	"github.com/quadrant/quadrant-backend/pkg/logger"
)

// KeyHolder is an employee holding a skill, shown on the skill map
type KeyHolder struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
	Seniority  string `json:"seniority"`
}

// SkillMapEntry is the per-skill aggregate of the skill map
type SkillMapEntry struct {
	SkillID      string      `json:"skill_id"`
	Name         string      `json:"name"`
	Type         string      `json:"type"`
	PeopleCount  int         `json:"people_count"`
	AverageLevel float64     `json:"average_level"`
	Coverage     float64     `json:"coverage"`
	BusFactor    int         `json:"bus_factor"`
	RiskLevel    string      `json:"risk_level"`
	RiskScore    int         `json:"risk_score"`
	KeyHolders   []KeyHolder `json:"key_holders"`
}

// TeamRisk is a per-team risk entry derived from skill coverage
type TeamRisk struct {
	SkillID   string  `json:"skill_id"`
	SkillName string  `json:"skill_name"`
	Severity  string  `json:"severity"`
	Coverage  float64 `json:"coverage"`
	Holders   int     `json:"holders"`
}

// TeamSkill is one of a team's dominant skills
type TeamSkill struct {
	SkillID      string  `json:"skill_id"`
	SkillName    string  `json:"skill_name"`
	Coverage     float64 `json:"coverage"`
	AverageLevel float64 `json:"average_level"`
}

// TeamProfile aggregates one team's skill picture
type TeamProfile struct {
	TrackID        string      `json:"track_id,omitempty"`
	TeamName       string      `json:"team_name"`
	PeopleCount    int         `json:"people_count"`
	DominantSkills []TeamSkill `json:"dominant_skills"`
	Risks          []TeamRisk  `json:"risks"`
}

// SkillMap is the full workspace skill picture
type SkillMap struct {
	TotalEmployees int             `json:"total_employees"`
	Skills         []SkillMapEntry `json:"skills"`
	Teams          []TeamProfile   `json:"teams"`
}

// UnassignedPool is the team name grouping employees without a primary track
const UnassignedPool = "Общий пул"

const (
	maxKeyHolders    = 3
	maxDominantSkill = 5
	maxTeamRisks     = 3
)

// SkillMapService builds the workspace skill map from a live snapshot.
// No caching: each call reloads the snapshot and recomputes.
type SkillMapService struct {
	snapshots *repository.SnapshotRepository
	logger    *logger.Logger
}

// NewSkillMapService creates a new skill map service
func NewSkillMapService(snapshots *repository.SnapshotRepository, log *logger.Logger) *SkillMapService {
	return &SkillMapService{
		snapshots: snapshots,
		logger:    log.WithComponent("skillmap-service"),
	}
}

// BuildSkillMap computes per-skill coverage, bus factor risk and key
// holders, plus per-team profiles, for the workspace in context.
func (s *SkillMapService) BuildSkillMap(ctx context.Context) (*SkillMap, error) {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	return buildSkillMap(snap), nil
}

func buildSkillMap(snap *repository.Snapshot) *SkillMap {
	total := len(snap.Employees)

	employeesByID := make(map[string]*repository.Employee, total)
	for _, emp := range snap.Employees {
		employeesByID[emp.ID] = emp
	}

	holdersBySkill := make(map[string][]*repository.EmployeeSkill)
	for _, a := range snap.Assignments {
		if _, ok := employeesByID[a.EmployeeID]; !ok {
			continue
		}
		holdersBySkill[a.SkillID] = append(holdersBySkill[a.SkillID], a)
	}

	skillMap := &SkillMap{
		TotalEmployees: total,
		Skills:         make([]SkillMapEntry, 0, len(snap.Skills)),
	}

	entryBySkill := make(map[string]*SkillMapEntry, len(snap.Skills))
	for _, skill := range snap.Skills {
		holders := holdersBySkill[skill.ID]
		entry := buildSkillEntry(skill, holders, employeesByID, total)
		skillMap.Skills = append(skillMap.Skills, entry)
		entryBySkill[skill.ID] = &skillMap.Skills[len(skillMap.Skills)-1]
	}

	skillMap.Teams = buildTeamProfiles(snap, entryBySkill)
	return skillMap
}

func buildSkillEntry(skill *repository.Skill, holders []*repository.EmployeeSkill, employeesByID map[string]*repository.Employee, total int) SkillMapEntry {
	entry := SkillMapEntry{
		SkillID:    skill.ID,
		Name:       skill.Name,
		Type:       skill.Type,
		KeyHolders: []KeyHolder{},
	}

	entry.PeopleCount = len(holders)
	entry.BusFactor = entry.PeopleCount

	if entry.PeopleCount > 0 {
		sum := 0
		for _, h := range holders {
			sum += h.Level
		}
		entry.AverageLevel = round1(float64(sum) / float64(entry.PeopleCount))
	}
	if total > 0 {
		entry.Coverage = round1(float64(entry.PeopleCount) / float64(total) * 100)
	}

	switch {
	case entry.BusFactor <= 1:
		entry.RiskLevel = "high"
	case entry.BusFactor == 2:
		entry.RiskLevel = "medium"
	default:
		entry.RiskLevel = "low"
	}

	if entry.BusFactor == 0 {
		entry.RiskScore = 100
	} else {
		entry.RiskScore = int(math.Round(100 / float64(entry.BusFactor)))
	}

	sorted := make([]*repository.EmployeeSkill, len(holders))
	copy(sorted, holders)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Level != sorted[j].Level {
			return sorted[i].Level > sorted[j].Level
		}
		return seniorityWeight(employeesByID[sorted[i].EmployeeID].Level) >
			seniorityWeight(employeesByID[sorted[j].EmployeeID].Level)
	})

	for _, h := range sorted {
		if len(entry.KeyHolders) == maxKeyHolders {
			break
		}
		emp := employeesByID[h.EmployeeID]
		entry.KeyHolders = append(entry.KeyHolders, KeyHolder{
			EmployeeID: emp.ID,
			Name:       emp.Name,
			Level:      h.Level,
			Seniority:  emp.Level,
		})
	}

	return entry
}

func buildTeamProfiles(snap *repository.Snapshot, entryBySkill map[string]*SkillMapEntry) []TeamProfile {
	skillsByID := make(map[string]*repository.Skill, len(snap.Skills))
	for _, skill := range snap.Skills {
		skillsByID[skill.ID] = skill
	}

	assignmentsByEmployee := make(map[string][]*repository.EmployeeSkill)
	for _, a := range snap.Assignments {
		assignmentsByEmployee[a.EmployeeID] = append(assignmentsByEmployee[a.EmployeeID], a)
	}

	type teamGroup struct {
		trackID string
		name    string
		members []*repository.Employee
	}

	groups := make([]*teamGroup, 0, len(snap.Tracks)+1)
	groupByTrack := make(map[string]*teamGroup, len(snap.Tracks))
	for _, track := range snap.Tracks {
		g := &teamGroup{trackID: track.ID, name: track.Name}
		groups = append(groups, g)
		groupByTrack[track.ID] = g
	}
	pool := &teamGroup{name: UnassignedPool}

	for _, emp := range snap.Employees {
		if emp.TrackID != nil {
			if g, ok := groupByTrack[*emp.TrackID]; ok {
				g.members = append(g.members, emp)
				continue
			}
		}
		pool.members = append(pool.members, emp)
	}
	if len(pool.members) > 0 {
		groups = append(groups, pool)
	}

	profiles := make([]TeamProfile, 0, len(groups))
	for _, g := range groups {
		profiles = append(profiles, buildTeamProfile(g.trackID, g.name, g.members, assignmentsByEmployee, skillsByID, entryBySkill))
	}
	return profiles
}

func buildTeamProfile(trackID, name string, members []*repository.Employee, assignmentsByEmployee map[string][]*repository.EmployeeSkill, skillsByID map[string]*repository.Skill, entryBySkill map[string]*SkillMapEntry) TeamProfile {
	profile := TeamProfile{
		TrackID:        trackID,
		TeamName:       name,
		PeopleCount:    len(members),
		DominantSkills: []TeamSkill{},
		Risks:          []TeamRisk{},
	}

	type teamSkillAgg struct {
		holders int
		sum     int
	}
	agg := make(map[string]*teamSkillAgg)
	for _, emp := range members {
		for _, a := range assignmentsByEmployee[emp.ID] {
			t, ok := agg[a.SkillID]
			if !ok {
				t = &teamSkillAgg{}
				agg[a.SkillID] = t
			}
			t.holders++
			t.sum += a.Level
		}
	}

	teamSkills := make([]TeamSkill, 0, len(agg))
	for skillID, t := range agg {
		skill, ok := skillsByID[skillID]
		if !ok {
			continue
		}
		coverage := 0.0
		if len(members) > 0 {
			coverage = round1(float64(t.holders) / float64(len(members)) * 100)
		}
		teamSkills = append(teamSkills, TeamSkill{
			SkillID:      skillID,
			SkillName:    skill.Name,
			Coverage:     coverage,
			AverageLevel: round1(float64(t.sum) / float64(t.holders)),
		})
	}

	sort.SliceStable(teamSkills, func(i, j int) bool {
		if teamSkills[i].Coverage != teamSkills[j].Coverage {
			return teamSkills[i].Coverage > teamSkills[j].Coverage
		}
		return teamSkills[i].SkillName < teamSkills[j].SkillName
	})
	if len(teamSkills) > maxDominantSkill {
		teamSkills = teamSkills[:maxDominantSkill]
	}
	profile.DominantSkills = teamSkills

	risks := make([]TeamRisk, 0)
	for skillID, t := range agg {
		entry, ok := entryBySkill[skillID]
		if !ok {
			continue
		}
		coverage := 0.0
		if len(members) > 0 {
			coverage = round1(float64(t.holders) / float64(len(members)) * 100)
		}
		// Low-severity entries with healthy coverage are noise, drop them
		if entry.RiskLevel == "low" && coverage > 30 {
			continue
		}
		risks = append(risks, TeamRisk{
			SkillID:   skillID,
			SkillName: entry.Name,
			Severity:  entry.RiskLevel,
			Coverage:  coverage,
			Holders:   t.holders,
		})
	}

	sort.SliceStable(risks, func(i, j int) bool {
		wi, wj := severityWeight(risks[i].Severity), severityWeight(risks[j].Severity)
		if wi != wj {
			return wi > wj
		}
		return risks[i].SkillName < risks[j].SkillName
	})
	if len(risks) > maxTeamRisks {
		risks = risks[:maxTeamRisks]
	}
	profile.Risks = risks

	return profile
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func seniorityWeight(level string) int {
	switch level {
	case "Senior":
		return 3
	case "Middle":
		return 2
	case "Junior":
		return 1
	default:
		return 0
	}
}

func severityWeight(severity string) int {
	switch severity {
	case "high":
		return 3
	case "medium":
		return 2
	case "low":
		return 1
	default:
		return 0
	}
}
