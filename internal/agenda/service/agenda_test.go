package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quadrant/quadrant-backend/pkg/config"
	"github.com/quadrant/quadrant-backend/pkg/logger"
)

func testAgendaService() *AgendaService {
	cfg := config.AgendaConfig{
		HighPriorityDays:   3,
		MediumPriorityDays: 14,
		MaxGapEmployees:    20,
	}
	return NewAgendaService(nil, nil, nil, nil, nil, cfg, logger.New("test", "test"))
}

func TestPriorityForDue(t *testing.T) {
	s := testAgendaService()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	due := func(days int) string {
		return now.AddDate(0, 0, days).Format(time.RFC3339)
	}

	assert.Equal(t, PriorityHigh, s.priorityForDue(due(1), now))
	assert.Equal(t, PriorityHigh, s.priorityForDue(due(3), now))
	assert.Equal(t, PriorityMedium, s.priorityForDue(due(4), now))
	assert.Equal(t, PriorityMedium, s.priorityForDue(due(14), now))
	assert.Equal(t, PriorityLow, s.priorityForDue(due(15), now))
}

func TestPriorityForDueUnparseable(t *testing.T) {
	s := testAgendaService()
	assert.Equal(t, PriorityLow, s.priorityForDue("not-a-date", time.Now().UTC()))
}

func TestSortItemsByPriorityThenDue(t *testing.T) {
	later := "2026-08-20T00:00:00Z"
	sooner := "2026-08-05T00:00:00Z"

	items := []AgendaItem{
		{Title: "low", Priority: PriorityLow},
		{Title: "medium-later", Priority: PriorityMedium, DueDate: &later},
		{Title: "high", Priority: PriorityHigh},
		{Title: "medium-sooner", Priority: PriorityMedium, DueDate: &sooner},
		{Title: "medium-undated", Priority: PriorityMedium},
	}

	sortItems(items)

	assert.Equal(t, "high", items[0].Title)
	assert.Equal(t, "medium-sooner", items[1].Title)
	assert.Equal(t, "medium-later", items[2].Title)
	assert.Equal(t, "medium-undated", items[3].Title)
	assert.Equal(t, "low", items[4].Title)
}

func TestQuarterLabel(t *testing.T) {
	assert.Equal(t, "2026-Q1", quarterLabel(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-Q1", quarterLabel(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-Q2", quarterLabel(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-Q3", quarterLabel(time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-Q4", quarterLabel(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)))
}
