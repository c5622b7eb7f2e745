package service

import (
	"context"

	"github.com/quadrant/quadrant-backend/internal/pilots/repository"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/quadrant/quadrant-backend/pkg/messaging"
)

// PilotService manages pilot runs, their checklists, participants and
// notes, plus quest CRUD. Status transitions are explicit set calls;
// notifications on transitions are best effort.
type PilotService struct {
	pilots    *repository.PilotRepository
	quests    *repository.QuestRepository
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewPilotService creates a new pilot service
func NewPilotService(pilots *repository.PilotRepository, quests *repository.QuestRepository, publisher messaging.EventPublisher, log *logger.Logger) *PilotService {
	return &PilotService{
		pilots:    pilots,
		quests:    quests,
		publisher: publisher,
		logger:    log.WithComponent("pilot-service"),
	}
}

// Create creates a pilot run
func (s *PilotService) Create(ctx context.Context, p *repository.PilotRun) error {
	if p.Status != "" && !repository.ValidStatus(p.Status) {
		return errors.BadRequest("status must be draft, planned, active, completed or cancelled")
	}
	return s.pilots.Create(ctx, p)
}

// Get returns a pilot with its steps, participants and notes
func (s *PilotService) Get(ctx context.Context, id string) (*repository.PilotRun, []*repository.PilotStep, []*repository.PilotParticipant, []*repository.PilotNote, error) {
	p, err := s.pilots.GetByID(ctx, id)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	steps, err := s.pilots.ListSteps(ctx, id)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	participants, err := s.pilots.ListParticipants(ctx, id)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	notes, err := s.pilots.ListNotes(ctx, id)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return p, steps, participants, notes, nil
}

// List lists workspace pilot runs
func (s *PilotService) List(ctx context.Context) ([]*repository.PilotRun, error) {
	return s.pilots.List(ctx)
}

// Update updates a pilot's editable fields
func (s *PilotService) Update(ctx context.Context, p *repository.PilotRun) error {
	return s.pilots.Update(ctx, p)
}

// SetStatus moves a pilot to a new status and publishes the change
func (s *PilotService) SetStatus(ctx context.Context, id, status string) (*repository.PilotRun, error) {
	if !repository.ValidStatus(status) {
		return nil, errors.BadRequest("status must be draft, planned, active, completed or cancelled")
	}

	p, err := s.pilots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := p.Status
	if oldStatus == status {
		return p, nil
	}

	if err := s.pilots.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	p.Status = status

	data := messaging.PilotStatusChangedEvent{
		PilotID:     p.ID,
		WorkspaceID: p.WorkspaceID,
		OldStatus:   oldStatus,
		NewStatus:   status,
	}
	if err := s.publisher.Publish(ctx, messaging.EventPilotStatusChanged, data); err != nil {
		s.logger.Error().Err(err).Str("pilot_id", p.ID).Msg("failed to publish pilot status change")
	}

	return p, nil
}

// Delete removes a pilot and its sub-records
func (s *PilotService) Delete(ctx context.Context, id string) error {
	return s.pilots.Delete(ctx, id)
}

// AddStep appends a checklist step
func (s *PilotService) AddStep(ctx context.Context, step *repository.PilotStep) error {
	if _, err := s.pilots.GetByID(ctx, step.PilotID); err != nil {
		return err
	}
	if step.Status != "" && !repository.ValidStepStatus(step.Status) {
		return errors.BadRequest("step status must be not_started, in_progress or done")
	}
	return s.pilots.AddStep(ctx, step)
}

// SetStepStatus sets one step's status
func (s *PilotService) SetStepStatus(ctx context.Context, stepID, status string) error {
	if !repository.ValidStepStatus(status) {
		return errors.BadRequest("step status must be not_started, in_progress or done")
	}
	return s.pilots.UpdateStepStatus(ctx, stepID, status)
}

// AddParticipant adds an employee to a pilot
func (s *PilotService) AddParticipant(ctx context.Context, p *repository.PilotParticipant) error {
	if _, err := s.pilots.GetByID(ctx, p.PilotID); err != nil {
		return err
	}
	return s.pilots.AddParticipant(ctx, p)
}

// RemoveParticipant removes an employee from a pilot
func (s *PilotService) RemoveParticipant(ctx context.Context, pilotID, employeeID string) error {
	return s.pilots.RemoveParticipant(ctx, pilotID, employeeID)
}

// AddNote attaches a note to a pilot
func (s *PilotService) AddNote(ctx context.Context, n *repository.PilotNote) error {
	if _, err := s.pilots.GetByID(ctx, n.PilotID); err != nil {
		return err
	}
	if n.Body == "" {
		return errors.BadRequest("note body is required")
	}
	return s.pilots.AddNote(ctx, n)
}

// CreateQuest creates a quest
func (s *PilotService) CreateQuest(ctx context.Context, q *repository.Quest) error {
	if q.Status != "" && !repository.ValidQuestStatus(q.Status) {
		return errors.BadRequest("status must be draft, active or completed")
	}
	return s.quests.Create(ctx, q)
}

// GetQuest gets a quest
func (s *PilotService) GetQuest(ctx context.Context, id string) (*repository.Quest, error) {
	return s.quests.GetByID(ctx, id)
}

// ListQuests lists workspace quests
func (s *PilotService) ListQuests(ctx context.Context) ([]*repository.Quest, error) {
	return s.quests.List(ctx)
}

// SetQuestStatus sets a quest's status
func (s *PilotService) SetQuestStatus(ctx context.Context, id, status string) error {
	if !repository.ValidQuestStatus(status) {
		return errors.BadRequest("status must be draft, active or completed")
	}
	if _, err := s.quests.GetByID(ctx, id); err != nil {
		return err
	}
	return s.quests.UpdateStatus(ctx, id, status)
}

// DeleteQuest removes a quest
func (s *PilotService) DeleteQuest(ctx context.Context, id string) error {
	return s.quests.Delete(ctx, id)
}
