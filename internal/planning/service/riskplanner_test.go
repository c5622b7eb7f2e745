package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skillsrepo "github.com/quadrant/quadrant-backend/internal/skills/repository"
	"github.com/quadrant/quadrant-backend/pkg/config"
	"github.com/quadrant/quadrant-backend/pkg/logger"
)

func testPlanningConfig() config.PlanningConfig {
	return config.PlanningConfig{
		HireBaseCost:                  50000,
		LeadershipCostMultiplier:      1.5,
		PriorityCostMultiplier:        1.2,
		InternalCandidateGapThreshold: 6,
		DevelopMonthlyCost:            3000,
		MaxTeamsPerScenario:           5,
	}
}

func newPlanner() *RiskPlannerService {
	return NewRiskPlannerService(nil, nil, nil, nil, testPlanningConfig(), logger.New("test", "test"))
}

func TestHireCostBase(t *testing.T) {
	s := newPlanner()
	role := &RoleCoverage{Priority: "normal"}

	cost := s.HireCost(role, false)
	assert.True(t, cost.Equal(decimal.NewFromInt(50000)), "got %s", cost)
}

func TestHireCostLeadership(t *testing.T) {
	s := newPlanner()
	role := &RoleCoverage{IsLeadership: true, Priority: "normal"}

	cost := s.HireCost(role, false)
	assert.True(t, cost.Equal(decimal.NewFromInt(75000)), "got %s", cost)
}

func TestHireCostHighPriority(t *testing.T) {
	s := newPlanner()
	role := &RoleCoverage{Priority: "high"}

	cost := s.HireCost(role, false)
	assert.True(t, cost.Equal(decimal.NewFromInt(60000)), "got %s", cost)
}

func TestHireCostSinglePointOfFailureStacksWithLeadership(t *testing.T) {
	s := newPlanner()
	role := &RoleCoverage{IsLeadership: true, Priority: "normal"}

	cost := s.HireCost(role, true)
	assert.True(t, cost.Equal(decimal.NewFromInt(90000)), "got %s", cost)
}

func TestDevelopEstimateSmallGap(t *testing.T) {
	s := newPlanner()

	months, cost, ok := s.DevelopEstimate(3)
	require.True(t, ok)
	assert.Equal(t, 6, months)
	assert.True(t, cost.Equal(decimal.NewFromInt(18000)), "got %s", cost)
}

func TestDevelopEstimateMediumGap(t *testing.T) {
	s := newPlanner()

	months, cost, ok := s.DevelopEstimate(7)
	require.True(t, ok)
	assert.Equal(t, 12, months)
	assert.True(t, cost.Equal(decimal.NewFromInt(36000)), "got %s", cost)
}

func TestDevelopEstimateBeyondRange(t *testing.T) {
	s := newPlanner()

	_, _, ok := s.DevelopEstimate(8)
	assert.False(t, ok)
}

func TestMustHaveGapScoreUnratedCountsFullLevel(t *testing.T) {
	mustHaves := []*skillsrepo.RoleSkillRequirement{
		{SkillID: "s1", RequiredLevel: 4, MustHave: true},
		{SkillID: "s2", RequiredLevel: 3, MustHave: true},
	}
	ratings := map[string]*skillsrepo.SkillRating{
		"s1": {SkillID: "s1", Level: 3},
	}

	// s1 deficit 1, s2 unrated counts its full required level 3
	assert.Equal(t, 4, mustHaveGapScore(mustHaves, ratings))
}

func TestMustHaveGapScoreIgnoresSurplus(t *testing.T) {
	mustHaves := []*skillsrepo.RoleSkillRequirement{
		{SkillID: "s1", RequiredLevel: 2, MustHave: true},
	}
	ratings := map[string]*skillsrepo.SkillRating{
		"s1": {SkillID: "s1", Level: 5},
	}

	assert.Equal(t, 0, mustHaveGapScore(mustHaves, ratings))
}
