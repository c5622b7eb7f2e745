package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/quadrant/quadrant-backend/internal/skills/service"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/httputil"
	"github.com/quadrant/quadrant-backend/pkg/logger"
)

// AnalyticsHandler serves the skill map and gap reports
type AnalyticsHandler struct {
	skillMap *service.SkillMapService
	skillGap *service.SkillGapService
	logger   *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(skillMap *service.SkillMapService, skillGap *service.SkillGapService, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		skillMap: skillMap,
		skillGap: skillGap,
		logger:   log,
	}
}

// SkillMap builds the workspace skill map
func (h *AnalyticsHandler) SkillMap(w http.ResponseWriter, r *http.Request) {
	skillMap, err := h.skillMap.BuildSkillMap(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, skillMap)
}

// EmployeeGaps computes gap entries for one employee
func (h *AnalyticsHandler) EmployeeGaps(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	report, err := h.skillGap.EmployeeGaps(r.Context(), employeeID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}

// RoleGaps computes the top gap summary for a role
func (h *AnalyticsHandler) RoleGaps(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "id")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.Error(w, errors.BadRequest("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	report, err := h.skillGap.RoleGaps(r.Context(), roleID, limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}
