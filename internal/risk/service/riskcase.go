package service

import (
	"context"
	"fmt"

	"github.com/quadrant/quadrant-backend/internal/risk/events"
	"github.com/quadrant/quadrant-backend/internal/risk/repository"
	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

// OwnerResolver resolves the workspace owner used as the notification
// fallback when a case has no explicit owner.
type OwnerResolver interface {
	WorkspaceOwnerID(ctx context.Context) (string, error)
}

// EnsureRiskCaseInput is the ensure/escalate upsert request
type EnsureRiskCaseInput struct {
	EmployeeID     string
	Level          string
	Source         string
	Reason         string
	Recommendation string
	OwnerID        string
}

// RiskCaseService implements the ensure/escalate upsert over risk cases.
// Workspaces mid-migration may not have the risk tables yet; reads
// degrade to empty results in that situation instead of failing.
type RiskCaseService struct {
	repo      *repository.RiskCaseRepository
	publisher *events.RiskEventPublisher
	owners    OwnerResolver
	logger    *logger.Logger
}

// NewRiskCaseService creates a new risk case service
func NewRiskCaseService(repo *repository.RiskCaseRepository, publisher *events.RiskEventPublisher, owners OwnerResolver, log *logger.Logger) *RiskCaseService {
	return &RiskCaseService{
		repo:      repo,
		publisher: publisher,
		owners:    owners,
		logger:    log.WithComponent("riskcase-service"),
	}
}

// EnsureRiskCase is the idempotent upsert:
//   - an active case at the same level is returned unchanged
//   - an active case at a lower level is upgraded in place when the new
//     level is higher (reason and recommendation merged, escalation
//     notification fired)
//   - an active case at a higher level is returned unchanged
//   - otherwise a new case is created and a notification fired
func (s *RiskCaseService) EnsureRiskCase(ctx context.Context, in *EnsureRiskCaseInput) (*repository.RiskCase, error) {
	if !repository.ValidLevel(in.Level) {
		return nil, errors.BadRequest("risk level must be low, medium or high")
	}

	existing, err := s.repo.ActiveForEmployee(ctx, in.EmployeeID)
	if err != nil {
		if database.IsUndefinedTable(err) {
			return nil, errors.RiskCasesNotAvailable()
		}
		return nil, err
	}

	if existing != nil {
		if repository.LevelRank(existing.Level) >= repository.LevelRank(in.Level) {
			return existing, nil
		}
		return s.escalate(ctx, existing, in)
	}

	c := &repository.RiskCase{
		EmployeeID: in.EmployeeID,
		Level:      in.Level,
		Status:     repository.StatusOpen,
	}
	if in.Source != "" {
		c.Source = &in.Source
	}
	if in.Reason != "" {
		c.Reason = &in.Reason
	}
	if in.Recommendation != "" {
		c.Recommendation = &in.Recommendation
	}
	if in.OwnerID != "" {
		c.OwnerID = &in.OwnerID
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if database.IsUndefinedTable(err) {
			return nil, errors.RiskCasesNotAvailable()
		}
		return nil, err
	}

	s.publisher.PublishCaseOpened(ctx, c)
	s.notifyOwner(ctx, c, "risk_case_opened",
		"New risk case",
		fmt.Sprintf("A %s risk case was opened for employee %s", c.Level, c.EmployeeID))

	return c, nil
}

func (s *RiskCaseService) escalate(ctx context.Context, existing *repository.RiskCase, in *EnsureRiskCaseInput) (*repository.RiskCase, error) {
	oldLevel := existing.Level

	existing.Level = in.Level
	if in.Source != "" {
		existing.Source = &in.Source
	}
	existing.Reason = mergeText(existing.Reason, in.Reason)
	existing.Recommendation = mergeText(existing.Recommendation, in.Recommendation)

	if err := s.repo.Upgrade(ctx, existing); err != nil {
		return nil, err
	}

	s.publisher.PublishCaseEscalated(ctx, existing, oldLevel)
	s.notifyOwner(ctx, existing, "risk_case_escalated",
		"Risk case escalated",
		fmt.Sprintf("Risk case for employee %s escalated from %s to %s", existing.EmployeeID, oldLevel, existing.Level))

	return existing, nil
}

// UpdateStatus moves a case to a new status. Resolving stamps the
// resolution fields and notifies the case owner, falling back to the
// workspace owner.
func (s *RiskCaseService) UpdateStatus(ctx context.Context, id, status, resolutionNote string) (*repository.RiskCase, error) {
	if !repository.ValidStatus(status) {
		return nil, errors.BadRequest("status must be open, monitoring or resolved")
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if database.IsUndefinedTable(err) {
			return nil, errors.RiskCasesNotAvailable()
		}
		return nil, err
	}

	c.Status = status
	if status == repository.StatusResolved {
		now := repository.NowISO()
		c.ResolvedAt = &now
		if resolutionNote != "" {
			c.ResolutionNote = &resolutionNote
		}
	}

	if err := s.repo.UpdateStatus(ctx, c); err != nil {
		return nil, err
	}

	if status == repository.StatusResolved {
		s.publisher.PublishCaseResolved(ctx, c)
		s.notifyOwner(ctx, c, "risk_case_resolved",
			"Risk case resolved",
			fmt.Sprintf("Risk case for employee %s was resolved", c.EmployeeID))
	}

	return c, nil
}

// Get returns one risk case
func (s *RiskCaseService) Get(ctx context.Context, id string) (*repository.RiskCase, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil && database.IsUndefinedTable(err) {
		return nil, errors.RiskCasesNotAvailable()
	}
	return c, err
}

// List lists workspace risk cases. When the risk tables are not
// migrated yet the result is an empty list, not an error.
func (s *RiskCaseService) List(ctx context.Context, status string) ([]*repository.RiskCase, error) {
	if status != "" && !repository.ValidStatus(status) {
		return nil, errors.BadRequest("status must be open, monitoring or resolved")
	}

	cases, err := s.repo.List(ctx, status)
	if err != nil {
		if database.IsUndefinedTable(err) {
			s.logger.Warn().Msg("risk_cases table missing, returning empty list")
			return []*repository.RiskCase{}, nil
		}
		return nil, err
	}
	return cases, nil
}

// notifyOwner resolves the notification recipient: the case owner when
// set, the workspace owner otherwise. Failures are logged and swallowed.
func (s *RiskCaseService) notifyOwner(ctx context.Context, c *repository.RiskCase, notifType, title, body string) {
	recipientID := ""
	if c.OwnerID != nil {
		recipientID = *c.OwnerID
	} else {
		ownerID, err := s.owners.WorkspaceOwnerID(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Str("case_id", c.ID).Msg("failed to resolve workspace owner for notification")
			return
		}
		recipientID = ownerID
	}
	if recipientID == "" {
		return
	}

	workspaceID, err := workspace.ID(ctx)
	if err != nil {
		workspaceID = c.WorkspaceID
	}

	s.publisher.Notify(ctx, workspaceID, recipientID, notifType, title, body)
}

func mergeText(existing *string, addition string) *string {
	if addition == "" {
		return existing
	}
	if existing == nil || *existing == "" {
		return &addition
	}
	merged := *existing + "\n" + addition
	return &merged
}
