package events

import (
	"context"

	"github.com/quadrant/quadrant-backend/internal/risk/repository"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/quadrant/quadrant-backend/pkg/messaging"
)

// RiskEventPublisher publishes risk case lifecycle events and the
// notifications that ride along with them. All methods are fire and
// forget: failures are logged, never returned.
type RiskEventPublisher struct {
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewRiskEventPublisher creates a new risk event publisher
func NewRiskEventPublisher(publisher messaging.EventPublisher, log *logger.Logger) *RiskEventPublisher {
	return &RiskEventPublisher{
		publisher: publisher,
		logger:    log,
	}
}

// PublishCaseOpened publishes a risk case opened event
func (p *RiskEventPublisher) PublishCaseOpened(ctx context.Context, c *repository.RiskCase) {
	source := ""
	if c.Source != nil {
		source = *c.Source
	}

	data := messaging.RiskCaseOpenedEvent{
		CaseID:      c.ID,
		WorkspaceID: c.WorkspaceID,
		EmployeeID:  c.EmployeeID,
		Level:       c.Level,
		Source:      source,
	}

	if err := p.publisher.Publish(ctx, messaging.EventRiskCaseOpened, data); err != nil {
		p.logger.Error().Err(err).Str("case_id", c.ID).Msg("failed to publish risk case opened event")
	}
}

// PublishCaseEscalated publishes a risk case escalated event
func (p *RiskEventPublisher) PublishCaseEscalated(ctx context.Context, c *repository.RiskCase, oldLevel string) {
	data := messaging.RiskCaseEscalatedEvent{
		CaseID:      c.ID,
		WorkspaceID: c.WorkspaceID,
		EmployeeID:  c.EmployeeID,
		OldLevel:    oldLevel,
		NewLevel:    c.Level,
	}

	if err := p.publisher.Publish(ctx, messaging.EventRiskCaseEscalated, data); err != nil {
		p.logger.Error().Err(err).Str("case_id", c.ID).Msg("failed to publish risk case escalated event")
	}
}

// PublishCaseResolved publishes a risk case resolved event
func (p *RiskEventPublisher) PublishCaseResolved(ctx context.Context, c *repository.RiskCase) {
	note := ""
	if c.ResolutionNote != nil {
		note = *c.ResolutionNote
	}

	data := messaging.RiskCaseResolvedEvent{
		CaseID:      c.ID,
		WorkspaceID: c.WorkspaceID,
		EmployeeID:  c.EmployeeID,
		Note:        note,
	}

	if err := p.publisher.Publish(ctx, messaging.EventRiskCaseResolved, data); err != nil {
		p.logger.Error().Err(err).Str("case_id", c.ID).Msg("failed to publish risk case resolved event")
	}
}

// Notify sends a best-effort notification to a recipient
func (p *RiskEventPublisher) Notify(ctx context.Context, workspaceID, recipientID, notifType, title, body string) {
	data := messaging.NotificationCreatedEvent{
		WorkspaceID: workspaceID,
		RecipientID: recipientID,
		Type:        notifType,
		Title:       title,
		Body:        body,
	}

	if err := p.publisher.Publish(ctx, messaging.EventNotificationCreated, data); err != nil {
		p.logger.Error().Err(err).Str("recipient_id", recipientID).Msg("failed to publish notification")
	}
}
