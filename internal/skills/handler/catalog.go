package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quadrant/quadrant-backend/internal/skills/repository"
	"github.com/quadrant/quadrant-backend/internal/skills/service"
	"github.com/quadrant/quadrant-backend/pkg/httputil"
	"github.com/quadrant/quadrant-backend/pkg/logger"
)

// CatalogHandler handles employee, skill and track endpoints
type CatalogHandler struct {
	service *service.CatalogService
	logger  *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc *service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  log,
	}
}

// ListEmployees lists workspace employees
func (h *CatalogHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.service.ListEmployees(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, employees)
}

// GetEmployee gets an employee by ID
func (h *CatalogHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.service.GetEmployee(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, emp)
}

// CreateEmployee creates a new employee
func (h *CatalogHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var emp repository.Employee
	if err := httputil.DecodeJSON(r, &emp); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.CreateEmployee(r.Context(), &emp); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, emp)
}

// UpdateEmployee updates an employee
func (h *CatalogHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var emp repository.Employee
	if err := httputil.DecodeJSON(r, &emp); err != nil {
		httputil.Error(w, err)
		return
	}

	emp.ID = id
	if err := h.service.UpdateEmployee(r.Context(), &emp); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, emp)
}

// DeleteEmployee deletes an employee
func (h *CatalogHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteEmployee(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// SetEmployeeSkill sets an employee's level for a skill
func (h *CatalogHandler) SetEmployeeSkill(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var req struct {
		SkillID string `json:"skill_id" validate:"required"`
		Level   int    `json:"level" validate:"required,min=1,max=5"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	es := repository.EmployeeSkill{
		EmployeeID: employeeID,
		SkillID:    req.SkillID,
		Level:      req.Level,
	}
	if err := h.service.SetEmployeeSkill(r.Context(), &es); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, es)
}

// RemoveEmployeeSkill removes a skill from an employee's profile
func (h *CatalogHandler) RemoveEmployeeSkill(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	skillID := chi.URLParam(r, "skillID")

	if err := h.service.RemoveEmployeeSkill(r.Context(), employeeID, skillID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// ListSkills lists catalog skills
func (h *CatalogHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.service.ListSkills(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, skills)
}

// CreateSkill adds a skill to the catalog
func (h *CatalogHandler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	var skill repository.Skill
	if err := httputil.DecodeJSON(r, &skill); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.CreateSkill(r.Context(), &skill); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, skill)
}

// UpdateSkill updates a catalog skill
func (h *CatalogHandler) UpdateSkill(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var skill repository.Skill
	if err := httputil.DecodeJSON(r, &skill); err != nil {
		httputil.Error(w, err)
		return
	}

	skill.ID = id
	if err := h.service.UpdateSkill(r.Context(), &skill); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, skill)
}

// DeleteSkill removes a catalog skill
func (h *CatalogHandler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteSkill(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// ListTracks lists workspace tracks
func (h *CatalogHandler) ListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.service.ListTracks(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, tracks)
}

// CreateTrack creates a track
func (h *CatalogHandler) CreateTrack(w http.ResponseWriter, r *http.Request) {
	var track repository.Track
	if err := httputil.DecodeJSON(r, &track); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.CreateTrack(r.Context(), &track); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, track)
}

// UpdateTrack updates a track
func (h *CatalogHandler) UpdateTrack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var track repository.Track
	if err := httputil.DecodeJSON(r, &track); err != nil {
		httputil.Error(w, err)
		return
	}

	track.ID = id
	if err := h.service.UpdateTrack(r.Context(), &track); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, track)
}

// DeleteTrack removes a track
func (h *CatalogHandler) DeleteTrack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteTrack(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
