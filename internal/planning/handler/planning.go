package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quadrant/quadrant-backend/internal/planning/repository"
	"github.com/quadrant/quadrant-backend/internal/planning/service"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/httputil"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// PlanningHandler serves team risk summaries and move scenarios
type PlanningHandler struct {
	planner   *service.RiskPlannerService
	scenarios *service.ScenarioService
	logger    *logger.Logger
}

// NewPlanningHandler creates a new planning handler
func NewPlanningHandler(planner *service.RiskPlannerService, scenarios *service.ScenarioService, log *logger.Logger) *PlanningHandler {
	return &PlanningHandler{
		planner:   planner,
		scenarios: scenarios,
		logger:    log,
	}
}

// TeamSummary builds the risk/hiring summary for one track
func (h *PlanningHandler) TeamSummary(w http.ResponseWriter, r *http.Request) {
	trackID := chi.URLParam(r, "trackID")

	summary, err := h.planner.TeamSummary(r.Context(), trackID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, summary)
}

// AllTeamsSummary builds summaries for the workspace's teams
func (h *PlanningHandler) AllTeamsSummary(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.planner.AllTeamsSummary(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, summaries)
}

// Suggest generates a draft scenario from a track's risk summary
func (h *PlanningHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrackID string `json:"track_id" validate:"required"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	scenario, actions, err := h.scenarios.SuggestFromRisks(r.Context(), req.TrackID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, map[string]interface{}{
		"scenario": scenario,
		"actions":  actions,
	})
}

// List lists move scenarios
func (h *PlanningHandler) List(w http.ResponseWriter, r *http.Request) {
	scenarios, err := h.scenarios.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, scenarios)
}

// Get gets a scenario with its actions
func (h *PlanningHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	scenario, actions, err := h.scenarios.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"scenario": scenario,
		"actions":  actions,
	})
}

// Create creates an empty scenario
func (h *PlanningHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrackID *string `json:"track_id"`
		Title   string  `json:"title" validate:"required"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	scenario := repository.MoveScenario{
		TrackID: req.TrackID,
		Title:   req.Title,
	}
	if err := h.scenarios.Create(r.Context(), &scenario); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, scenario)
}

// UpdateStatus moves a scenario through its lifecycle
func (h *PlanningHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status string `json:"status" validate:"required,oneof=draft review approved archived"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.scenarios.UpdateStatus(r.Context(), id, req.Status); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// AddAction appends a manual action to a scenario
func (h *PlanningHandler) AddAction(w http.ResponseWriter, r *http.Request) {
	scenarioID := chi.URLParam(r, "id")

	var req struct {
		ActionType      string  `json:"action_type" validate:"required,oneof=hire develop reassign promote backfill"`
		RoleID          *string `json:"role_id"`
		EmployeeID      *string `json:"employee_id"`
		Description     string  `json:"description" validate:"required"`
		EstimatedCost   string  `json:"estimated_cost"`
		EstimatedMonths *int    `json:"estimated_months"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	action := repository.MoveScenarioAction{
		ScenarioID:      scenarioID,
		ActionType:      req.ActionType,
		RoleID:          req.RoleID,
		EmployeeID:      req.EmployeeID,
		Description:     req.Description,
		EstimatedMonths: req.EstimatedMonths,
	}
	if req.EstimatedCost != "" {
		cost, err := decimal.NewFromString(req.EstimatedCost)
		if err != nil {
			httputil.Error(w, errors.BadRequest("estimated_cost must be a decimal number"))
			return
		}
		action.EstimatedCost = cost
	}

	if err := h.scenarios.AddAction(r.Context(), &action); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, action)
}

// RemoveAction deletes one action from a scenario
func (h *PlanningHandler) RemoveAction(w http.ResponseWriter, r *http.Request) {
	scenarioID := chi.URLParam(r, "id")
	actionID := chi.URLParam(r, "actionID")

	if err := h.scenarios.RemoveAction(r.Context(), scenarioID, actionID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Delete removes a scenario
func (h *PlanningHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.scenarios.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
