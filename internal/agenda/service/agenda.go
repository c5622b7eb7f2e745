package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/quadrant/quadrant-backend/internal/agenda/repository"
	pilotsrepo "github.com/quadrant/quadrant-backend/internal/pilots/repository"
	skillsrepo "github.com/quadrant/quadrant-backend/internal/skills/repository"
	skillssvc "github.com/quadrant/quadrant-backend/internal/skills/service"
	"github.com/quadrant/quadrant-backend/pkg/config"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/logger"
)

// Priorities
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Item sources
const (
	SourceOneOnOne = "one_on_one"
	SourceGoal     = "goal"
	SourcePilot    = "pilot"
	SourceReport   = "report"
	SourceSkillGap = "skill_gap"
	SourceSurvey   = "survey"
)

// An employee with no completed 1:1 in this many days gets a reminder item
const staleOneOnOneDays = 30

// AgendaItem is one prioritized entry in the manager's weekly view
type AgendaItem struct {
	Source     string  `json:"source"`
	Title      string  `json:"title"`
	Priority   string  `json:"priority"`
	DueDate    *string `json:"due_date,omitempty"`
	EmployeeID *string `json:"employee_id,omitempty"`
	RefID      *string `json:"ref_id,omitempty"`
}

// Agenda is the denormalized command-center snapshot. It is rebuilt on
// every request and never persisted.
type Agenda struct {
	ManagerID   string       `json:"manager_id"`
	TrackID     *string      `json:"track_id,omitempty"`
	TrackName   string       `json:"track_name,omitempty"`
	TeamSize    int          `json:"team_size"`
	GeneratedAt string       `json:"generated_at"`
	Items       []AgendaItem `json:"items"`
}

// AgendaService builds the manager agenda by aggregating 1:1s, goals,
// pilots, quarterly reports, skill gaps and feedback surveys.
type AgendaService struct {
	sources   *repository.SourceRepository
	tracks    *skillsrepo.TrackRepository
	employees *skillsrepo.EmployeeRepository
	pilots    *pilotsrepo.PilotRepository
	gaps      *skillssvc.SkillGapService
	cfg       config.AgendaConfig
	logger    *logger.Logger
}

// NewAgendaService creates a new agenda service
func NewAgendaService(
	sources *repository.SourceRepository,
	tracks *skillsrepo.TrackRepository,
	employees *skillsrepo.EmployeeRepository,
	pilots *pilotsrepo.PilotRepository,
	gaps *skillssvc.SkillGapService,
	cfg config.AgendaConfig,
	log *logger.Logger,
) *AgendaService {
	return &AgendaService{
		sources:   sources,
		tracks:    tracks,
		employees: employees,
		pilots:    pilots,
		gaps:      gaps,
		cfg:       cfg,
		logger:    log.WithComponent("agenda-service"),
	}
}

// BuildAgenda assembles the agenda for one manager. The manager's team
// is the track listing them as manager, falling back to the first
// workspace track when none does.
func (s *AgendaService) BuildAgenda(ctx context.Context, managerID string) (*Agenda, error) {
	now := time.Now().UTC()
	agenda := &Agenda{
		ManagerID:   managerID,
		GeneratedAt: now.Format(time.RFC3339),
		Items:       []AgendaItem{},
	}

	track, err := s.tracks.GetByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	if track == nil {
		track, err = s.tracks.First(ctx)
		if err != nil {
			return nil, err
		}
	}
	if track == nil {
		return agenda, nil
	}
	agenda.TrackID = &track.ID
	agenda.TrackName = track.Name

	team, err := s.employees.ListByTrack(ctx, track.ID)
	if err != nil {
		return nil, err
	}
	agenda.TeamSize = len(team)

	teamIDs := make([]string, 0, len(team))
	for _, emp := range team {
		teamIDs = append(teamIDs, emp.ID)
	}

	if err := s.addOneOnOneItems(ctx, agenda, managerID, teamIDs, now); err != nil {
		return nil, err
	}
	if err := s.addGoalItems(ctx, agenda, teamIDs, now); err != nil {
		return nil, err
	}
	if err := s.addPilotItems(ctx, agenda, now); err != nil {
		return nil, err
	}
	if err := s.addReportItem(ctx, agenda, now); err != nil {
		return nil, err
	}
	s.addSkillGapItems(ctx, agenda, teamIDs)
	if err := s.addSurveyItems(ctx, agenda, teamIDs); err != nil {
		return nil, err
	}

	sortItems(agenda.Items)
	return agenda, nil
}

func (s *AgendaService) addOneOnOneItems(ctx context.Context, agenda *Agenda, managerID string, teamIDs []string, now time.Time) error {
	cutoff := now.AddDate(0, 0, s.cfg.MediumPriorityDays).Format(time.RFC3339)
	upcoming, err := s.sources.UpcomingOneOnOnes(ctx, managerID, cutoff)
	if err != nil {
		return err
	}

	for _, m := range upcoming {
		due := m.ScheduledAt
		agenda.Items = append(agenda.Items, AgendaItem{
			Source:     SourceOneOnOne,
			Title:      "Upcoming 1:1",
			Priority:   s.priorityForDue(due, now),
			DueDate:    &due,
			EmployeeID: strptr(m.EmployeeID),
			RefID:      strptr(m.ID),
		})
	}

	last, err := s.sources.LastCompletedOneOnOnes(ctx, teamIDs)
	if err != nil {
		return err
	}

	staleCutoff := now.AddDate(0, 0, -staleOneOnOneDays).Format(time.RFC3339)
	for _, id := range teamIDs {
		at, ok := last[id]
		if ok && at >= staleCutoff {
			continue
		}
		agenda.Items = append(agenda.Items, AgendaItem{
			Source:     SourceOneOnOne,
			Title:      "No recent 1:1, schedule one",
			Priority:   PriorityMedium,
			EmployeeID: strptr(id),
		})
	}
	return nil
}

func (s *AgendaService) addGoalItems(ctx context.Context, agenda *Agenda, teamIDs []string, now time.Time) error {
	goals, err := s.sources.ActiveGoals(ctx, teamIDs)
	if err != nil {
		return err
	}

	nowText := now.Format(time.RFC3339)
	for _, g := range goals {
		item := AgendaItem{
			Source:     SourceGoal,
			Title:      "Development goal: " + g.Title,
			Priority:   PriorityLow,
			DueDate:    g.DueDate,
			EmployeeID: strptr(g.EmployeeID),
			RefID:      strptr(g.ID),
		}
		if g.DueDate != nil {
			if *g.DueDate < nowText {
				item.Title = "Overdue goal: " + g.Title
				item.Priority = PriorityHigh
			} else {
				item.Priority = s.priorityForDue(*g.DueDate, now)
			}
		}
		agenda.Items = append(agenda.Items, item)
	}
	return nil
}

func (s *AgendaService) addPilotItems(ctx context.Context, agenda *Agenda, now time.Time) error {
	cutoff := now.AddDate(0, 0, s.cfg.MediumPriorityDays).Format(time.RFC3339)
	ending, err := s.pilots.ListActiveEndingBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, p := range ending {
		item := AgendaItem{
			Source:   SourcePilot,
			Title:    "Pilot ending soon: " + p.Title,
			Priority: PriorityMedium,
			RefID:    strptr(p.ID),
		}
		if p.EndDate != nil {
			item.DueDate = p.EndDate
			item.Priority = s.priorityForDue(*p.EndDate, now)
		}
		agenda.Items = append(agenda.Items, item)

		count, err := s.pilots.CountParticipants(ctx, p.ID)
		if err != nil {
			return err
		}
		if count == 0 {
			agenda.Items = append(agenda.Items, AgendaItem{
				Source:   SourcePilot,
				Title:    "Pilot has no participants: " + p.Title,
				Priority: PriorityHigh,
				RefID:    strptr(p.ID),
			})
		}
	}
	return nil
}

func (s *AgendaService) addReportItem(ctx context.Context, agenda *Agenda, now time.Time) error {
	quarter := quarterLabel(now)
	exists, err := s.sources.QuarterReportExists(ctx, quarter)
	if err != nil {
		return err
	}
	if !exists {
		agenda.Items = append(agenda.Items, AgendaItem{
			Source:   SourceReport,
			Title:    "Prepare quarterly report for " + quarter,
			Priority: PriorityMedium,
		})
	}
	return nil
}

// addSkillGapItems surveys team gap reports. Employees without a role
// assignment are skipped; other per-employee failures are logged and do
// not fail the agenda.
func (s *AgendaService) addSkillGapItems(ctx context.Context, agenda *Agenda, teamIDs []string) {
	limit := s.cfg.MaxGapEmployees
	if len(teamIDs) < limit {
		limit = len(teamIDs)
	}

	for _, id := range teamIDs[:limit] {
		report, err := s.gaps.EmployeeGaps(ctx, id)
		if err != nil {
			var appErr *errors.AppError
			if errors.As(err, &appErr) && appErr.Code == "ROLE_NOT_FOUND" {
				continue
			}
			s.logger.Error().Err(err).Str("employee_id", id).Msg("skipping gap report")
			continue
		}

		below := 0
		for _, gap := range report.Gaps {
			if gap.Gap != nil && *gap.Gap < 0 {
				below++
			}
		}
		if below == 0 {
			continue
		}

		priority := PriorityLow
		if below >= 3 {
			priority = PriorityMedium
		}
		agenda.Items = append(agenda.Items, AgendaItem{
			Source:     SourceSkillGap,
			Title:      fmt.Sprintf("%d skills below %s target", below, report.RoleName),
			Priority:   priority,
			EmployeeID: strptr(id),
		})
	}
}

func (s *AgendaService) addSurveyItems(ctx context.Context, agenda *Agenda, teamIDs []string) error {
	pending, err := s.sources.PendingSurveyResponses(ctx, teamIDs)
	if err != nil {
		return err
	}

	for _, resp := range pending {
		agenda.Items = append(agenda.Items, AgendaItem{
			Source:     SourceSurvey,
			Title:      "Pending survey response: " + resp.SurveyTitle,
			Priority:   PriorityLow,
			EmployeeID: strptr(resp.EmployeeID),
			RefID:      strptr(resp.ID),
		})
	}
	return nil
}

// priorityForDue maps due-date proximity to a priority using the
// configured windows.
func (s *AgendaService) priorityForDue(due string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, due)
	if err != nil {
		return PriorityLow
	}

	days := int(t.Sub(now).Hours() / 24)
	switch {
	case days <= s.cfg.HighPriorityDays:
		return PriorityHigh
	case days <= s.cfg.MediumPriorityDays:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func sortItems(items []AgendaItem) {
	sort.SliceStable(items, func(i, j int) bool {
		wi, wj := priorityWeight(items[i].Priority), priorityWeight(items[j].Priority)
		if wi != wj {
			return wi > wj
		}
		di, dj := items[i].DueDate, items[j].DueDate
		if di != nil && dj != nil {
			return *di < *dj
		}
		return di != nil && dj == nil
	})
}

func priorityWeight(p string) int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

func quarterLabel(t time.Time) string {
	return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
}

func strptr(s string) *string {
	return &s
}
