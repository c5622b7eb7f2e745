package service

import (
	"context"
	"fmt"

	"github.com/quadrant/quadrant-backend/internal/planning/repository"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/logger"
)

// maxDevelopCandidates caps develop/promote suggestions per role
const maxDevelopCandidates = 2

// promoteGapCeiling: candidates at or under this gap are promotion-ready
// rather than development cases.
const promoteGapCeiling = 1

// ScenarioService turns team risk summaries into persisted move
// scenarios and manages the scenario lifecycle.
type ScenarioService struct {
	repo    *repository.ScenarioRepository
	planner *RiskPlannerService
	logger  *logger.Logger
}

// NewScenarioService creates a new scenario service
func NewScenarioService(repo *repository.ScenarioRepository, planner *RiskPlannerService, log *logger.Logger) *ScenarioService {
	return &ScenarioService{
		repo:    repo,
		planner: planner,
		logger:  log.WithComponent("scenario-service"),
	}
}

// SuggestFromRisks builds a draft scenario for a track from its risk
// summary: a hire action per uncovered role, develop or promote actions
// for the best internal candidates.
func (s *ScenarioService) SuggestFromRisks(ctx context.Context, trackID string) (*repository.MoveScenario, []*repository.MoveScenarioAction, error) {
	summary, err := s.planner.TeamSummary(ctx, trackID)
	if err != nil {
		return nil, nil, err
	}

	scenario := &repository.MoveScenario{
		TrackID: &trackID,
		Title:   fmt.Sprintf("Risk mitigation: %s", summary.TeamName),
		Status:  repository.StatusDraft,
	}
	if err := s.repo.Create(ctx, scenario); err != nil {
		return nil, nil, err
	}

	singlePointOfFailure := false
	for _, krs := range summary.KeyRiskSkills {
		if krs.Holders <= 1 {
			singlePointOfFailure = true
			break
		}
	}

	actions := make([]*repository.MoveScenarioAction, 0)
	for i := range summary.Roles {
		role := &summary.Roles[i]
		if role.HireRequired {
			roleID := role.RoleID
			action := &repository.MoveScenarioAction{
				ScenarioID:    scenario.ID,
				ActionType:    repository.ActionHire,
				RoleID:        &roleID,
				Description:   fmt.Sprintf("Hire externally for %s: no internal candidate within reach", role.RoleName),
				EstimatedCost: s.planner.HireCost(role, singlePointOfFailure),
			}
			if err := s.repo.AddAction(ctx, action); err != nil {
				return nil, nil, err
			}
			actions = append(actions, action)
			continue
		}

		candidates := role.Candidates
		if len(candidates) > maxDevelopCandidates {
			candidates = candidates[:maxDevelopCandidates]
		}
		for _, candidate := range candidates {
			roleID := role.RoleID
			employeeID := candidate.EmployeeID

			actionType := repository.ActionDevelop
			description := fmt.Sprintf("Develop %s toward %s (gap score %d)", candidate.Name, role.RoleName, candidate.GapScore)
			if candidate.GapScore <= promoteGapCeiling {
				actionType = repository.ActionPromote
				description = fmt.Sprintf("Promote %s into %s (gap score %d)", candidate.Name, role.RoleName, candidate.GapScore)
			}

			action := &repository.MoveScenarioAction{
				ScenarioID:  scenario.ID,
				ActionType:  actionType,
				RoleID:      &roleID,
				EmployeeID:  &employeeID,
				Description: description,
			}
			if months, cost, ok := s.planner.DevelopEstimate(candidate.GapScore); ok {
				action.EstimatedMonths = &months
				action.EstimatedCost = cost
			}
			if err := s.repo.AddAction(ctx, action); err != nil {
				return nil, nil, err
			}
			actions = append(actions, action)
		}
	}

	return scenario, actions, nil
}

// Create creates an empty scenario
func (s *ScenarioService) Create(ctx context.Context, scenario *repository.MoveScenario) error {
	if scenario.Status != "" && !repository.ValidStatus(scenario.Status) {
		return errors.BadRequest("status must be draft, review, approved or archived")
	}
	return s.repo.Create(ctx, scenario)
}

// Get returns a scenario with its actions
func (s *ScenarioService) Get(ctx context.Context, id string) (*repository.MoveScenario, []*repository.MoveScenarioAction, error) {
	return s.repo.GetByID(ctx, id)
}

// List lists workspace scenarios
func (s *ScenarioService) List(ctx context.Context) ([]*repository.MoveScenario, error) {
	return s.repo.List(ctx)
}

// UpdateStatus moves a scenario to a new lifecycle status
func (s *ScenarioService) UpdateStatus(ctx context.Context, id, status string) error {
	if !repository.ValidStatus(status) {
		return errors.BadRequest("status must be draft, review, approved or archived")
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// AddAction appends a manual action to a scenario
func (s *ScenarioService) AddAction(ctx context.Context, a *repository.MoveScenarioAction) error {
	if !repository.ValidActionType(a.ActionType) {
		return errors.BadRequest("action_type must be hire, develop, reassign, promote or backfill")
	}
	if _, _, err := s.repo.GetByID(ctx, a.ScenarioID); err != nil {
		return err
	}
	return s.repo.AddAction(ctx, a)
}

// RemoveAction removes an action from a scenario
func (s *ScenarioService) RemoveAction(ctx context.Context, scenarioID, actionID string) error {
	return s.repo.RemoveAction(ctx, scenarioID, actionID)
}

// Delete removes a scenario and its actions
func (s *ScenarioService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
