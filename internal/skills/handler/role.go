package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quadrant/quadrant-backend/internal/skills/repository"
	"github.com/quadrant/quadrant-backend/internal/skills/service"
	"github.com/quadrant/quadrant-backend/pkg/httputil"
	"github.com/quadrant/quadrant-backend/pkg/logger"
)

// RoleHandler handles role profile and rating endpoints
type RoleHandler struct {
	service *service.CatalogService
	logger  *logger.Logger
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(svc *service.CatalogService, log *logger.Logger) *RoleHandler {
	return &RoleHandler{
		service: svc,
		logger:  log,
	}
}

// ListRoles lists role profiles
func (h *RoleHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, roles)
}

// GetRole gets a role profile with its requirements
func (h *RoleHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	role, reqs, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"role":         role,
		"requirements": reqs,
	})
}

// CreateRole creates a role profile
func (h *RoleHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var role repository.RoleProfile
	if err := httputil.DecodeJSON(r, &role); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.CreateRole(r.Context(), &role); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, role)
}

// SetRequirement upserts a role's skill requirement
func (h *RoleHandler) SetRequirement(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "id")

	var req struct {
		SkillID       string `json:"skill_id" validate:"required"`
		RequiredLevel int    `json:"required_level" validate:"required,min=1,max=5"`
		Importance    int    `json:"importance" validate:"min=0,max=10"`
		MustHave      bool   `json:"must_have"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	requirement := repository.RoleSkillRequirement{
		RoleID:        roleID,
		SkillID:       req.SkillID,
		RequiredLevel: req.RequiredLevel,
		Importance:    req.Importance,
		MustHave:      req.MustHave,
	}
	if err := h.service.SetRoleRequirement(r.Context(), &requirement); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, requirement)
}

// AssignEmployee links an employee to the role
func (h *RoleHandler) AssignEmployee(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "id")

	var req struct {
		EmployeeID string `json:"employee_id" validate:"required"`
		IsPrimary  bool   `json:"is_primary"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	assignment := repository.EmployeeRoleAssignment{
		EmployeeID: req.EmployeeID,
		RoleID:     roleID,
		IsPrimary:  req.IsPrimary,
	}
	if err := h.service.AssignRole(r.Context(), &assignment); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, assignment)
}

// UnassignEmployee removes an employee's role assignment
func (h *RoleHandler) UnassignEmployee(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "id")
	employeeID := chi.URLParam(r, "employeeID")

	if err := h.service.UnassignRole(r.Context(), employeeID, roleID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// RecordRating appends a skill rating observation for an employee
func (h *RoleHandler) RecordRating(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var req struct {
		SkillID string `json:"skill_id" validate:"required"`
		Level   int    `json:"level" validate:"required,min=1,max=5"`
		Source  string `json:"source" validate:"required,oneof=self manager system"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	rating := repository.SkillRating{
		EmployeeID: employeeID,
		SkillID:    req.SkillID,
		Level:      req.Level,
		Source:     req.Source,
	}
	if err := h.service.RecordRating(r.Context(), &rating); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, rating)
}
