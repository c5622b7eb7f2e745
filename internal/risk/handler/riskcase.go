package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quadrant/quadrant-backend/internal/risk/service"
	"github.com/quadrant/quadrant-backend/pkg/httputil"
	"github.com/quadrant/quadrant-backend/pkg/logger"
)

// RiskCaseHandler handles risk case endpoints
type RiskCaseHandler struct {
	service *service.RiskCaseService
	logger  *logger.Logger
}

// NewRiskCaseHandler creates a new risk case handler
func NewRiskCaseHandler(svc *service.RiskCaseService, log *logger.Logger) *RiskCaseHandler {
	return &RiskCaseHandler{
		service: svc,
		logger:  log,
	}
}

// List lists risk cases, optionally filtered by ?status=
func (h *RiskCaseHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	cases, err := h.service.List(r.Context(), status)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, cases)
}

// Get gets a risk case by ID
func (h *RiskCaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, c)
}

// Ensure runs the idempotent ensure/escalate upsert
func (h *RiskCaseHandler) Ensure(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID     string `json:"employee_id" validate:"required"`
		Level          string `json:"level" validate:"required,oneof=low medium high"`
		Source         string `json:"source"`
		Reason         string `json:"reason"`
		Recommendation string `json:"recommendation"`
		OwnerID        string `json:"owner_id"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	c, err := h.service.EnsureRiskCase(r.Context(), &service.EnsureRiskCaseInput{
		EmployeeID:     req.EmployeeID,
		Level:          req.Level,
		Source:         req.Source,
		Reason:         req.Reason,
		Recommendation: req.Recommendation,
		OwnerID:        req.OwnerID,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, c)
}

// UpdateStatus moves a case to a new status
func (h *RiskCaseHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status         string `json:"status" validate:"required,oneof=open monitoring resolved"`
		ResolutionNote string `json:"resolution_note"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	c, err := h.service.UpdateStatus(r.Context(), id, req.Status, req.ResolutionNote)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, c)
}
