package service

import (
	"context"
	"strings"

	"github.com/quadrant/quadrant-backend/internal/decisions/repository"
	skillsrepo "github.com/quadrant/quadrant-backend/internal/skills/repository"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/logger"
)

// CSVHeader is the fixed export header. Consumers parse by position, so
// the column set and order never change.
const CSVHeader = "id,employee,decision,rationale,quarter,decided_at"

// DecisionService manages talent decisions and their quarterly CSV export
type DecisionService struct {
	decisions *repository.DecisionRepository
	employees *skillsrepo.EmployeeRepository
	logger    *logger.Logger
}

// NewDecisionService creates a new decision service
func NewDecisionService(decisions *repository.DecisionRepository, employees *skillsrepo.EmployeeRepository, log *logger.Logger) *DecisionService {
	return &DecisionService{
		decisions: decisions,
		employees: employees,
		logger:    log.WithComponent("decision-service"),
	}
}

// Create records a decision, denormalizing the employee name so exports
// survive later employee deletion.
func (s *DecisionService) Create(ctx context.Context, d *repository.TalentDecision) error {
	if d.Decision == "" {
		return errors.BadRequest("decision is required")
	}
	if d.Quarter == "" {
		return errors.BadRequest("quarter is required")
	}

	emp, err := s.employees.GetByID(ctx, d.EmployeeID)
	if err != nil {
		return err
	}
	d.EmployeeName = emp.Name

	return s.decisions.Create(ctx, d)
}

// Get gets a decision
func (s *DecisionService) Get(ctx context.Context, id string) (*repository.TalentDecision, error) {
	return s.decisions.GetByID(ctx, id)
}

// List lists decisions, optionally filtered by quarter
func (s *DecisionService) List(ctx context.Context, quarter string) ([]*repository.TalentDecision, error) {
	return s.decisions.List(ctx, quarter)
}

// Update updates a decision's editable fields
func (s *DecisionService) Update(ctx context.Context, d *repository.TalentDecision) error {
	existing, err := s.decisions.GetByID(ctx, d.ID)
	if err != nil {
		return err
	}

	if d.Decision == "" {
		d.Decision = existing.Decision
	}
	if d.Rationale == "" {
		d.Rationale = existing.Rationale
	}
	if d.Quarter == "" {
		d.Quarter = existing.Quarter
	}
	if d.DecidedAt == "" {
		d.DecidedAt = existing.DecidedAt
	}

	return s.decisions.Update(ctx, d)
}

// Delete removes a decision
func (s *DecisionService) Delete(ctx context.Context, id string) error {
	return s.decisions.Delete(ctx, id)
}

// ExportCSV renders one quarter's decisions as CSV. Every data field is
// double-quoted regardless of content; a quarter with no decisions
// yields exactly the header row.
func (s *DecisionService) ExportCSV(ctx context.Context, quarter string) (string, error) {
	if quarter == "" {
		return "", errors.BadRequest("quarter is required")
	}

	decisions, err := s.decisions.ListForExport(ctx, quarter)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(CSVHeader)
	b.WriteString("\n")

	for _, d := range decisions {
		fields := []string{d.ID, d.EmployeeName, d.Decision, d.Rationale, d.Quarter, d.DecidedAt}
		for i, f := range fields {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(quoteField(f))
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

// quoteField wraps a value in double quotes, doubling embedded quotes
func quoteField(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
