package service

import (
	"context"

	"github.com/quadrant/quadrant-backend/internal/skills/repository"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/logger"
)

// CatalogService covers the HR CRUD surface: employees, the skill
// catalog, tracks, role profiles and skill ratings.
type CatalogService struct {
	employees *repository.EmployeeRepository
	skills    *repository.SkillRepository
	tracks    *repository.TrackRepository
	roles     *repository.RoleRepository
	ratings   *repository.RatingRepository
	logger    *logger.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	employees *repository.EmployeeRepository,
	skills *repository.SkillRepository,
	tracks *repository.TrackRepository,
	roles *repository.RoleRepository,
	ratings *repository.RatingRepository,
	log *logger.Logger,
) *CatalogService {
	return &CatalogService{
		employees: employees,
		skills:    skills,
		tracks:    tracks,
		roles:     roles,
		ratings:   ratings,
		logger:    log.WithComponent("catalog-service"),
	}
}

// CreateEmployee creates an employee
func (s *CatalogService) CreateEmployee(ctx context.Context, emp *repository.Employee) error {
	if emp.TrackID != nil {
		if _, err := s.tracks.GetByID(ctx, *emp.TrackID); err != nil {
			return err
		}
	}
	return s.employees.Create(ctx, emp)
}

// GetEmployee gets an employee by ID
func (s *CatalogService) GetEmployee(ctx context.Context, id string) (*repository.Employee, error) {
	return s.employees.GetByID(ctx, id)
}

// ListEmployees lists workspace employees
func (s *CatalogService) ListEmployees(ctx context.Context) ([]*repository.Employee, error) {
	return s.employees.List(ctx)
}

// UpdateEmployee updates an employee
func (s *CatalogService) UpdateEmployee(ctx context.Context, emp *repository.Employee) error {
	if emp.TrackID != nil {
		if _, err := s.tracks.GetByID(ctx, *emp.TrackID); err != nil {
			return err
		}
	}
	return s.employees.Update(ctx, emp)
}

// DeleteEmployee removes an employee
func (s *CatalogService) DeleteEmployee(ctx context.Context, id string) error {
	return s.employees.Delete(ctx, id)
}

// SetEmployeeSkill sets an employee's level for a skill and records a
// system rating so the gap engine sees the change.
func (s *CatalogService) SetEmployeeSkill(ctx context.Context, es *repository.EmployeeSkill) error {
	if es.Level < 1 || es.Level > 5 {
		return errors.BadRequest("skill level must be between 1 and 5")
	}
	if _, err := s.employees.GetByID(ctx, es.EmployeeID); err != nil {
		return err
	}
	if _, err := s.skills.GetByID(ctx, es.SkillID); err != nil {
		return err
	}
	if err := s.employees.UpsertSkill(ctx, es); err != nil {
		return err
	}

	rating := &repository.SkillRating{
		EmployeeID: es.EmployeeID,
		SkillID:    es.SkillID,
		Level:      es.Level,
		Source:     "system",
	}
	if err := s.ratings.Record(ctx, rating); err != nil {
		// Profile edit already landed; a missed rating only delays the
		// gap engine until the next assessment.
		s.logger.Warn().Err(err).
			Str("employee_id", es.EmployeeID).
			Str("skill_id", es.SkillID).
			Msg("failed to record system rating for profile edit")
	}
	return nil
}

// RemoveEmployeeSkill removes a skill from an employee's profile
func (s *CatalogService) RemoveEmployeeSkill(ctx context.Context, employeeID, skillID string) error {
	return s.employees.RemoveSkill(ctx, employeeID, skillID)
}

// CreateSkill adds a skill to the catalog
func (s *CatalogService) CreateSkill(ctx context.Context, skill *repository.Skill) error {
	return s.skills.Create(ctx, skill)
}

// ListSkills lists catalog skills
func (s *CatalogService) ListSkills(ctx context.Context) ([]*repository.Skill, error) {
	return s.skills.List(ctx)
}

// UpdateSkill updates a catalog skill
func (s *CatalogService) UpdateSkill(ctx context.Context, skill *repository.Skill) error {
	return s.skills.Update(ctx, skill)
}

// DeleteSkill removes a catalog skill
func (s *CatalogService) DeleteSkill(ctx context.Context, id string) error {
	return s.skills.Delete(ctx, id)
}

// CreateTrack creates a track
func (s *CatalogService) CreateTrack(ctx context.Context, track *repository.Track) error {
	return s.tracks.Create(ctx, track)
}

// ListTracks lists workspace tracks
func (s *CatalogService) ListTracks(ctx context.Context) ([]*repository.Track, error) {
	return s.tracks.List(ctx)
}

// UpdateTrack updates a track
func (s *CatalogService) UpdateTrack(ctx context.Context, track *repository.Track) error {
	if track.ManagerID != nil {
		if _, err := s.employees.GetByID(ctx, *track.ManagerID); err != nil {
			return err
		}
	}
	return s.tracks.Update(ctx, track)
}

// DeleteTrack removes a track
func (s *CatalogService) DeleteTrack(ctx context.Context, id string) error {
	return s.tracks.Delete(ctx, id)
}

// CreateRole creates a role profile
func (s *CatalogService) CreateRole(ctx context.Context, role *repository.RoleProfile) error {
	return s.roles.Create(ctx, role)
}

// GetRole gets a role profile with its requirements
func (s *CatalogService) GetRole(ctx context.Context, id string) (*repository.RoleProfile, []*repository.RoleSkillRequirement, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	reqs, err := s.roles.Requirements(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return role, reqs, nil
}

// ListRoles lists role profiles
func (s *CatalogService) ListRoles(ctx context.Context) ([]*repository.RoleProfile, error) {
	return s.roles.List(ctx)
}

// SetRoleRequirement upserts a role's skill requirement
func (s *CatalogService) SetRoleRequirement(ctx context.Context, req *repository.RoleSkillRequirement) error {
	if req.RequiredLevel < 1 || req.RequiredLevel > 5 {
		return errors.BadRequest("required level must be between 1 and 5")
	}
	if _, err := s.roles.GetByID(ctx, req.RoleID); err != nil {
		return err
	}
	if _, err := s.skills.GetByID(ctx, req.SkillID); err != nil {
		return err
	}
	return s.roles.SetRequirement(ctx, req)
}

// AssignRole links an employee to a role profile
func (s *CatalogService) AssignRole(ctx context.Context, a *repository.EmployeeRoleAssignment) error {
	if _, err := s.employees.GetByID(ctx, a.EmployeeID); err != nil {
		return err
	}
	if _, err := s.roles.GetByID(ctx, a.RoleID); err != nil {
		return err
	}
	return s.roles.AssignEmployee(ctx, a)
}

// UnassignRole removes an employee's role assignment
func (s *CatalogService) UnassignRole(ctx context.Context, employeeID, roleID string) error {
	return s.roles.UnassignEmployee(ctx, employeeID, roleID)
}

// RecordRating appends a skill rating observation
func (s *CatalogService) RecordRating(ctx context.Context, rating *repository.SkillRating) error {
	if rating.Level < 1 || rating.Level > 5 {
		return errors.BadRequest("rating level must be between 1 and 5")
	}
	switch rating.Source {
	case "self", "manager", "system":
	default:
		return errors.BadRequest("rating source must be self, manager or system")
	}
	return s.ratings.Record(ctx, rating)
}
