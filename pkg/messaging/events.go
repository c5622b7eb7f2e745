package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	// Notification events: the best-effort side channel used by risk,
	// pilot and assessment services.
	EventNotificationCreated = "notification.created"

	// Risk case events
	EventRiskCaseOpened    = "risk.case.opened"
	EventRiskCaseEscalated = "risk.case.escalated"
	EventRiskCaseResolved  = "risk.case.resolved"

	// Pilot events
	EventPilotStatusChanged = "pilot.status.changed"

	// Assessment events
	EventCycleActivated = "assessment.cycle.activated"
	EventCycleClosed    = "assessment.cycle.closed"
)

// Exchange names
const (
	ExchangeQuadrantEvents = "quadrant.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// NotificationCreatedEvent carries a notification destined for a recipient.
// Consumers persist it as an inbox row; publishers never wait for that.
type NotificationCreatedEvent struct {
	WorkspaceID string `json:"workspace_id"`
	RecipientID string `json:"recipient_id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Body        string `json:"body"`
}

// RiskCaseOpenedEvent is published when a new risk case is created
type RiskCaseOpenedEvent struct {
	CaseID      string `json:"case_id"`
	WorkspaceID string `json:"workspace_id"`
	EmployeeID  string `json:"employee_id"`
	Level       string `json:"level"`
	Source      string `json:"source"`
}

// RiskCaseEscalatedEvent is published when an open case is upgraded in place
type RiskCaseEscalatedEvent struct {
	CaseID      string `json:"case_id"`
	WorkspaceID string `json:"workspace_id"`
	EmployeeID  string `json:"employee_id"`
	OldLevel    string `json:"old_level"`
	NewLevel    string `json:"new_level"`
}

// RiskCaseResolvedEvent is published when a case is marked resolved
type RiskCaseResolvedEvent struct {
	CaseID      string `json:"case_id"`
	WorkspaceID string `json:"workspace_id"`
	EmployeeID  string `json:"employee_id"`
	Note        string `json:"note,omitempty"`
}

// PilotStatusChangedEvent is published on pilot run status transitions
type PilotStatusChangedEvent struct {
	PilotID     string `json:"pilot_id"`
	WorkspaceID string `json:"workspace_id"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
}

// CycleActivatedEvent is published when an assessment cycle goes active
type CycleActivatedEvent struct {
	CycleID      string `json:"cycle_id"`
	WorkspaceID  string `json:"workspace_id"`
	Participants int    `json:"participants"`
}

// CycleClosedEvent is published when an assessment cycle is closed
type CycleClosedEvent struct {
	CycleID     string `json:"cycle_id"`
	WorkspaceID string `json:"workspace_id"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%10000)
}
