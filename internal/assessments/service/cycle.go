package service

import (
	"context"

	"github.com/quadrant/quadrant-backend/internal/assessments/repository"
	skillsrepo "github.com/quadrant/quadrant-backend/internal/skills/repository"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/quadrant/quadrant-backend/pkg/messaging"
)

// CycleService runs assessment cycles. A cycle moves draft -> active ->
// closed; activation fans the cycle out into participant rows and
// per-skill assessment sheets, and finalized levels are written back as
// skill ratings so the gap engine picks them up.
type CycleService struct {
	cycles    *repository.CycleRepository
	snapshots *skillsrepo.SnapshotRepository
	ratings   *skillsrepo.RatingRepository
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewCycleService creates a new cycle service
func NewCycleService(
	cycles *repository.CycleRepository,
	snapshots *skillsrepo.SnapshotRepository,
	ratings *skillsrepo.RatingRepository,
	publisher messaging.EventPublisher,
	log *logger.Logger,
) *CycleService {
	return &CycleService{
		cycles:    cycles,
		snapshots: snapshots,
		ratings:   ratings,
		publisher: publisher,
		logger:    log.WithComponent("cycle-service"),
	}
}

// Create creates a draft cycle
func (s *CycleService) Create(ctx context.Context, c *repository.AssessmentCycle) error {
	if c.Name == "" {
		return errors.BadRequest("cycle name is required")
	}
	if c.Status != "" && c.Status != repository.StatusDraft {
		return errors.BadRequest("new cycles must start in draft status")
	}
	return s.cycles.Create(ctx, c)
}

// Get returns a cycle with its participants
func (s *CycleService) Get(ctx context.Context, id string) (*repository.AssessmentCycle, []*repository.CycleParticipant, error) {
	c, err := s.cycles.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	participants, err := s.cycles.ListParticipants(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return c, participants, nil
}

// List lists workspace cycles
func (s *CycleService) List(ctx context.Context) ([]*repository.AssessmentCycle, error) {
	return s.cycles.List(ctx)
}

// Activate moves a cycle from draft to active and initializes it. The
// initialization is idempotent, so re-activating after a partial
// failure fills in whatever rows are missing without duplicating ones
// that already exist.
func (s *CycleService) Activate(ctx context.Context, id string) (*repository.AssessmentCycle, error) {
	c, err := s.cycles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == repository.StatusClosed {
		return nil, errors.BadRequest("cannot activate a closed cycle")
	}

	count, err := s.initializeCycle(ctx, c)
	if err != nil {
		return nil, err
	}

	if c.Status != repository.StatusActive {
		if err := s.cycles.UpdateStatus(ctx, id, repository.StatusActive); err != nil {
			return nil, err
		}
		c.Status = repository.StatusActive
	}

	data := messaging.CycleActivatedEvent{
		CycleID:      c.ID,
		WorkspaceID:  c.WorkspaceID,
		Participants: count,
	}
	if err := s.publisher.Publish(ctx, messaging.EventCycleActivated, data); err != nil {
		s.logger.Error().Err(err).Str("cycle_id", c.ID).Msg("failed to publish cycle activation")
	}

	return c, nil
}

// initializeCycle fans a cycle out into one participant row per
// workspace employee and one assessment sheet row per assigned skill.
// Inserts use ON CONFLICT DO NOTHING so repeated calls converge.
func (s *CycleService) initializeCycle(ctx context.Context, c *repository.AssessmentCycle) (int, error) {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return 0, err
	}

	for _, emp := range snap.Employees {
		participant := &repository.CycleParticipant{
			CycleID:    c.ID,
			EmployeeID: emp.ID,
		}
		if err := s.cycles.AddParticipant(ctx, participant); err != nil {
			return 0, err
		}
	}

	for _, assignment := range snap.Assignments {
		sheet := &repository.SkillAssessment{
			CycleID:    c.ID,
			EmployeeID: assignment.EmployeeID,
			SkillID:    assignment.SkillID,
		}
		if err := s.cycles.AddAssessment(ctx, sheet); err != nil {
			return 0, err
		}
	}

	return len(snap.Employees), nil
}

// Close moves an active cycle to closed
func (s *CycleService) Close(ctx context.Context, id string) (*repository.AssessmentCycle, error) {
	c, err := s.cycles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != repository.StatusActive {
		return nil, errors.BadRequest("only active cycles can be closed")
	}

	if err := s.cycles.UpdateStatus(ctx, id, repository.StatusClosed); err != nil {
		return nil, err
	}
	c.Status = repository.StatusClosed

	data := messaging.CycleClosedEvent{
		CycleID:     c.ID,
		WorkspaceID: c.WorkspaceID,
	}
	if err := s.publisher.Publish(ctx, messaging.EventCycleClosed, data); err != nil {
		s.logger.Error().Err(err).Str("cycle_id", c.ID).Msg("failed to publish cycle close")
	}

	return c, nil
}

// Sheet returns a participant's per-skill assessment rows
func (s *CycleService) Sheet(ctx context.Context, cycleID, employeeID string) ([]*repository.SkillAssessment, error) {
	if _, err := s.cycles.GetParticipant(ctx, cycleID, employeeID); err != nil {
		return nil, err
	}
	return s.cycles.ListAssessments(ctx, cycleID, employeeID)
}

// SubmitLevels writes one track's levels (self or manager) for a
// participant and marks that sub-status submitted. Levels are keyed by
// skill ID and must be 1-5.
func (s *CycleService) SubmitLevels(ctx context.Context, cycleID, employeeID, track string, levels map[string]int) error {
	if track != "self" && track != "manager" {
		return errors.BadRequest("track must be self or manager")
	}
	if len(levels) == 0 {
		return errors.BadRequest("at least one skill level is required")
	}

	c, err := s.cycles.GetByID(ctx, cycleID)
	if err != nil {
		return err
	}
	if c.Status != repository.StatusActive {
		return errors.BadRequest("cycle is not active")
	}
	if _, err := s.cycles.GetParticipant(ctx, cycleID, employeeID); err != nil {
		return err
	}

	for skillID, level := range levels {
		if level < 1 || level > 5 {
			return errors.BadRequest("skill level must be between 1 and 5")
		}
		if err := s.cycles.SetAssessmentLevel(ctx, cycleID, employeeID, skillID, track, level); err != nil {
			return err
		}
	}

	return s.cycles.UpdateParticipantStatus(ctx, cycleID, employeeID, track, repository.SubStatusSubmitted)
}

// Finalize writes final levels for a participant, marks the final
// sub-status submitted and records each level as a manager-sourced
// skill rating. Gap reports read those ratings on the next request.
func (s *CycleService) Finalize(ctx context.Context, cycleID, employeeID string, levels map[string]int) error {
	if len(levels) == 0 {
		return errors.BadRequest("at least one skill level is required")
	}

	c, err := s.cycles.GetByID(ctx, cycleID)
	if err != nil {
		return err
	}
	if c.Status != repository.StatusActive {
		return errors.BadRequest("cycle is not active")
	}
	if _, err := s.cycles.GetParticipant(ctx, cycleID, employeeID); err != nil {
		return err
	}

	for skillID, level := range levels {
		if level < 1 || level > 5 {
			return errors.BadRequest("skill level must be between 1 and 5")
		}
		if err := s.cycles.SetAssessmentLevel(ctx, cycleID, employeeID, skillID, "final", level); err != nil {
			return err
		}

		rating := &skillsrepo.SkillRating{
			EmployeeID: employeeID,
			SkillID:    skillID,
			Level:      level,
			Source:     "manager",
		}
		if err := s.ratings.Record(ctx, rating); err != nil {
			s.logger.Error().Err(err).
				Str("cycle_id", cycleID).
				Str("employee_id", employeeID).
				Str("skill_id", skillID).
				Msg("failed to record finalized rating")
		}
	}

	return s.cycles.UpdateParticipantStatus(ctx, cycleID, employeeID, "final", repository.SubStatusSubmitted)
}
