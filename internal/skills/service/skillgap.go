package service

import (
	"context"
	"sort"

	"github.com/quadrant/quadrant-backend/internal/skills/repository"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/logger"
)

// SkillGapEntry is one (skill, requirement) comparison for an employee.
// Gap is nil when the employee has never been rated on the skill.
type SkillGapEntry struct {
	SkillID       string `json:"skill_id"`
	SkillName     string `json:"skill_name"`
	RequiredLevel int    `json:"required_level"`
	CurrentLevel  *int   `json:"current_level"`
	Gap           *int   `json:"gap"`
	Importance    int    `json:"importance"`
	MustHave      bool   `json:"must_have"`
}

// EmployeeGapReport is the per-employee gap computation against the
// employee's primary role profile.
type EmployeeGapReport struct {
	EmployeeID string          `json:"employee_id"`
	RoleID     string          `json:"role_id"`
	RoleName   string          `json:"role_name"`
	Gaps       []SkillGapEntry `json:"gaps"`
}

// RoleGapSummary aggregates one skill requirement across all employees
// assigned to a role.
type RoleGapSummary struct {
	SkillID           string  `json:"skill_id"`
	SkillName         string  `json:"skill_name"`
	RequiredLevel     int     `json:"required_level"`
	Importance        int     `json:"importance"`
	AvgGap            float64 `json:"avg_gap"`
	AffectedEmployees int     `json:"affected_employees"`
}

// RoleGapReport is the per-role broadcast of the gap computation
type RoleGapReport struct {
	RoleID    string           `json:"role_id"`
	RoleName  string           `json:"role_name"`
	Employees int              `json:"employees"`
	TopGaps   []RoleGapSummary `json:"top_gaps"`
}

// DefaultTopGapLimit caps the role report's top gap list
const DefaultTopGapLimit = 5

// SkillGapService computes employee and role level gaps from role
// requirements and the latest ratings. Recomputed on every call.
type SkillGapService struct {
	roles     *repository.RoleRepository
	ratings   *repository.RatingRepository
	skills    *repository.SkillRepository
	employees *repository.EmployeeRepository
	logger    *logger.Logger
}

// NewSkillGapService creates a new skill gap service
func NewSkillGapService(
	roles *repository.RoleRepository,
	ratings *repository.RatingRepository,
	skills *repository.SkillRepository,
	employees *repository.EmployeeRepository,
	log *logger.Logger,
) *SkillGapService {
	return &SkillGapService{
		roles:     roles,
		ratings:   ratings,
		skills:    skills,
		employees: employees,
		logger:    log.WithComponent("skillgap-service"),
	}
}

// EmployeeGaps resolves the employee's primary role assignment (or the
// first assignment when none is marked primary) and compares the latest
// rating per skill against the role's requirements.
func (s *SkillGapService) EmployeeGaps(ctx context.Context, employeeID string) (*EmployeeGapReport, error) {
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	assignments, err := s.roles.AssignmentsForEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, errors.RoleNotFound()
	}
	// Assignments come back primary first, so the head is the target role
	roleID := assignments[0].RoleID

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}

	reqs, err := s.roles.Requirements(ctx, roleID)
	if err != nil {
		return nil, err
	}

	latest, err := s.ratings.LatestForEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	skillNames, err := s.skillNames(ctx)
	if err != nil {
		return nil, err
	}

	report := &EmployeeGapReport{
		EmployeeID: employeeID,
		RoleID:     role.ID,
		RoleName:   role.Name,
		Gaps:       make([]SkillGapEntry, 0, len(reqs)),
	}
	for _, req := range reqs {
		report.Gaps = append(report.Gaps, gapEntry(req, latest[req.SkillID], skillNames))
	}
	return report, nil
}

// RoleGaps broadcasts the gap computation across every employee assigned
// to the role and returns the top gaps, ordered by importance desc, then
// average gap asc, then affected employees desc.
func (s *SkillGapService) RoleGaps(ctx context.Context, roleID string, limit int) (*RoleGapReport, error) {
	if limit <= 0 {
		limit = DefaultTopGapLimit
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}

	reqs, err := s.roles.Requirements(ctx, roleID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.roles.AssignmentsForRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	employeeIDs := make([]string, 0, len(assignments))
	for _, a := range assignments {
		employeeIDs = append(employeeIDs, a.EmployeeID)
	}

	latest, err := s.ratings.LatestForEmployees(ctx, employeeIDs)
	if err != nil {
		return nil, err
	}

	skillNames, err := s.skillNames(ctx)
	if err != nil {
		return nil, err
	}

	report := &RoleGapReport{
		RoleID:    role.ID,
		RoleName:  role.Name,
		Employees: len(employeeIDs),
		TopGaps:   []RoleGapSummary{},
	}

	for _, req := range reqs {
		summary := RoleGapSummary{
			SkillID:       req.SkillID,
			SkillName:     skillNames[req.SkillID],
			RequiredLevel: req.RequiredLevel,
			Importance:    req.Importance,
		}

		gapSum := 0
		for _, empID := range employeeIDs {
			// Unrated employees count as level 0: fully affected
			current := 0
			if rating, ok := latest[empID][req.SkillID]; ok {
				current = rating.Level
			}
			gap := current - req.RequiredLevel
			gapSum += gap
			if gap < 0 {
				summary.AffectedEmployees++
			}
		}
		if len(employeeIDs) > 0 {
			summary.AvgGap = round1(float64(gapSum) / float64(len(employeeIDs)))
		}
		report.TopGaps = append(report.TopGaps, summary)
	}

	sort.SliceStable(report.TopGaps, func(i, j int) bool {
		a, b := report.TopGaps[i], report.TopGaps[j]
		if a.Importance != b.Importance {
			return a.Importance > b.Importance
		}
		if a.AvgGap != b.AvgGap {
			return a.AvgGap < b.AvgGap
		}
		return a.AffectedEmployees > b.AffectedEmployees
	})
	if len(report.TopGaps) > limit {
		report.TopGaps = report.TopGaps[:limit]
	}

	return report, nil
}

func (s *SkillGapService) skillNames(ctx context.Context) (map[string]string, error) {
	skills, err := s.skills.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(skills))
	for _, skill := range skills {
		names[skill.ID] = skill.Name
	}
	return names, nil
}

func gapEntry(req *repository.RoleSkillRequirement, rating *repository.SkillRating, skillNames map[string]string) SkillGapEntry {
	entry := SkillGapEntry{
		SkillID:       req.SkillID,
		SkillName:     skillNames[req.SkillID],
		RequiredLevel: req.RequiredLevel,
		Importance:    req.Importance,
		MustHave:      req.MustHave,
	}
	if rating != nil {
		current := rating.Level
		gap := current - req.RequiredLevel
		entry.CurrentLevel = &current
		entry.Gap = &gap
	}
	return entry
}
