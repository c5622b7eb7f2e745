package service

import (
	"context"
	"sort"

	skillsrepo "github.com/quadrant/quadrant-backend/internal/skills/repository"
	"github.com/quadrant/quadrant-backend/pkg/config"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// Risk scores assigned to key risk skills by holder count
const (
	singleHolderRiskScore = 90
	dualHolderRiskScore   = 65
)

// KeyRiskSkill is a skill held by too few team members
type KeyRiskSkill struct {
	SkillID   string `json:"skill_id"`
	SkillName string `json:"skill_name"`
	Holders   int    `json:"holders"`
	RiskScore int    `json:"risk_score"`
}

// InternalCandidate is an employee close enough to a role to develop
// into it. GapScore is the sum of positive must-have deficits.
type InternalCandidate struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	GapScore   int    `json:"gap_score"`
}

// RoleCoverage is the hire-or-develop picture for one role
type RoleCoverage struct {
	RoleID       string              `json:"role_id"`
	RoleName     string              `json:"role_name"`
	IsLeadership bool                `json:"is_leadership"`
	Priority     string              `json:"priority"`
	HireRequired bool                `json:"hire_required"`
	Candidates   []InternalCandidate `json:"candidates"`
}

// TeamRiskHiringSummary combines key risk skills and role coverage for
// one team.
type TeamRiskHiringSummary struct {
	TrackID       string         `json:"track_id"`
	TeamName      string         `json:"team_name"`
	Members       int            `json:"members"`
	KeyRiskSkills []KeyRiskSkill `json:"key_risk_skills"`
	Roles         []RoleCoverage `json:"roles"`
}

// RiskPlannerService computes team risk/hiring summaries feeding the
// move scenario generator.
type RiskPlannerService struct {
	snapshots *skillsrepo.SnapshotRepository
	tracks    *skillsrepo.TrackRepository
	roles     *skillsrepo.RoleRepository
	ratings   *skillsrepo.RatingRepository
	cfg       config.PlanningConfig
	logger    *logger.Logger
}

// NewRiskPlannerService creates a new risk planner service
func NewRiskPlannerService(
	snapshots *skillsrepo.SnapshotRepository,
	tracks *skillsrepo.TrackRepository,
	roles *skillsrepo.RoleRepository,
	ratings *skillsrepo.RatingRepository,
	cfg config.PlanningConfig,
	log *logger.Logger,
) *RiskPlannerService {
	return &RiskPlannerService{
		snapshots: snapshots,
		tracks:    tracks,
		roles:     roles,
		ratings:   ratings,
		cfg:       cfg,
		logger:    log.WithComponent("riskplanner-service"),
	}
}

// TeamSummary builds the risk/hiring summary for one track
func (s *RiskPlannerService) TeamSummary(ctx context.Context, trackID string) (*TeamRiskHiringSummary, error) {
	track, err := s.tracks.GetByID(ctx, trackID)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}

	return s.buildSummary(ctx, track, snap)
}

// AllTeamsSummary builds summaries for up to MaxTeamsPerScenario tracks
func (s *RiskPlannerService) AllTeamsSummary(ctx context.Context) ([]*TeamRiskHiringSummary, error) {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}

	tracks := snap.Tracks
	if len(tracks) > s.cfg.MaxTeamsPerScenario {
		tracks = tracks[:s.cfg.MaxTeamsPerScenario]
	}

	summaries := make([]*TeamRiskHiringSummary, 0, len(tracks))
	for _, track := range tracks {
		summary, err := s.buildSummary(ctx, track, snap)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *RiskPlannerService) buildSummary(ctx context.Context, track *skillsrepo.Track, snap *skillsrepo.Snapshot) (*TeamRiskHiringSummary, error) {
	summary := &TeamRiskHiringSummary{
		TrackID:       track.ID,
		TeamName:      track.Name,
		KeyRiskSkills: []KeyRiskSkill{},
		Roles:         []RoleCoverage{},
	}

	members := make([]*skillsrepo.Employee, 0)
	memberIDs := make(map[string]bool)
	for _, emp := range snap.Employees {
		if emp.TrackID != nil && *emp.TrackID == track.ID {
			members = append(members, emp)
			memberIDs[emp.ID] = true
		}
	}
	summary.Members = len(members)

	skillNames := make(map[string]string, len(snap.Skills))
	for _, skill := range snap.Skills {
		skillNames[skill.ID] = skill.Name
	}

	holders := make(map[string]int)
	for _, a := range snap.Assignments {
		if memberIDs[a.EmployeeID] {
			holders[a.SkillID]++
		}
	}
	for skillID, count := range holders {
		if count > 2 {
			continue
		}
		score := dualHolderRiskScore
		if count == 1 {
			score = singleHolderRiskScore
		}
		summary.KeyRiskSkills = append(summary.KeyRiskSkills, KeyRiskSkill{
			SkillID:   skillID,
			SkillName: skillNames[skillID],
			Holders:   count,
			RiskScore: score,
		})
	}
	sort.SliceStable(summary.KeyRiskSkills, func(i, j int) bool {
		a, b := summary.KeyRiskSkills[i], summary.KeyRiskSkills[j]
		if a.RiskScore != b.RiskScore {
			return a.RiskScore > b.RiskScore
		}
		return a.SkillName < b.SkillName
	})

	roles, err := s.roles.ListByTrack(ctx, track.ID)
	if err != nil {
		return nil, err
	}

	employeeIDs := make([]string, 0, len(snap.Employees))
	for _, emp := range snap.Employees {
		employeeIDs = append(employeeIDs, emp.ID)
	}
	latest, err := s.ratings.LatestForEmployees(ctx, employeeIDs)
	if err != nil {
		return nil, err
	}

	for _, role := range roles {
		coverage, err := s.roleCoverage(ctx, role, snap.Employees, latest)
		if err != nil {
			return nil, err
		}
		summary.Roles = append(summary.Roles, *coverage)
	}

	return summary, nil
}

// roleCoverage finds internal candidates for a role. Candidates are any
// workspace employees whose summed must-have deficits stay within the
// configured threshold; the role is flagged hire-required when no one
// qualifies.
func (s *RiskPlannerService) roleCoverage(ctx context.Context, role *skillsrepo.RoleProfile, employees []*skillsrepo.Employee, latest map[string]map[string]*skillsrepo.SkillRating) (*RoleCoverage, error) {
	reqs, err := s.roles.Requirements(ctx, role.ID)
	if err != nil {
		return nil, err
	}

	coverage := &RoleCoverage{
		RoleID:       role.ID,
		RoleName:     role.Name,
		IsLeadership: role.IsLeadership,
		Priority:     role.Priority,
		Candidates:   []InternalCandidate{},
	}

	mustHaves := make([]*skillsrepo.RoleSkillRequirement, 0, len(reqs))
	for _, req := range reqs {
		if req.MustHave {
			mustHaves = append(mustHaves, req)
		}
	}

	for _, emp := range employees {
		score := mustHaveGapScore(mustHaves, latest[emp.ID])
		if score <= s.cfg.InternalCandidateGapThreshold {
			coverage.Candidates = append(coverage.Candidates, InternalCandidate{
				EmployeeID: emp.ID,
				Name:       emp.Name,
				GapScore:   score,
			})
		}
	}

	sort.SliceStable(coverage.Candidates, func(i, j int) bool {
		a, b := coverage.Candidates[i], coverage.Candidates[j]
		if a.GapScore != b.GapScore {
			return a.GapScore < b.GapScore
		}
		return a.Name < b.Name
	})

	coverage.HireRequired = len(coverage.Candidates) == 0
	return coverage, nil
}

// mustHaveGapScore sums positive deficits against must-have
// requirements. Unrated skills count their full required level.
func mustHaveGapScore(mustHaves []*skillsrepo.RoleSkillRequirement, ratings map[string]*skillsrepo.SkillRating) int {
	score := 0
	for _, req := range mustHaves {
		current := 0
		if rating, ok := ratings[req.SkillID]; ok {
			current = rating.Level
		}
		if deficit := req.RequiredLevel - current; deficit > 0 {
			score += deficit
		}
	}
	return score
}

// HireCost estimates the cost of an external hire for a role.
// singlePointOfFailure marks roles guarding a one-holder skill.
func (s *RiskPlannerService) HireCost(role *RoleCoverage, singlePointOfFailure bool) decimal.Decimal {
	cost := decimal.NewFromInt(s.cfg.HireBaseCost)
	if role.IsLeadership {
		cost = cost.Mul(decimal.NewFromFloat(s.cfg.LeadershipCostMultiplier))
	}
	if role.Priority == "high" || singlePointOfFailure {
		cost = cost.Mul(decimal.NewFromFloat(s.cfg.PriorityCostMultiplier))
	}
	return cost.Round(2)
}

// DevelopEstimate maps a candidate's gap score to a development time and
// cost. Gaps beyond the estimable range return ok=false.
func (s *RiskPlannerService) DevelopEstimate(gapScore int) (months int, cost decimal.Decimal, ok bool) {
	switch {
	case gapScore <= 3:
		months = 6
	case gapScore <= 7:
		months = 12
	default:
		return 0, decimal.Zero, false
	}
	cost = decimal.NewFromInt(int64(months)).Mul(decimal.NewFromInt(s.cfg.DevelopMonthlyCost))
	return months, cost, true
}
