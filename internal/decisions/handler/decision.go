package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quadrant/quadrant-backend/internal/decisions/repository"
	"github.com/quadrant/quadrant-backend/internal/decisions/service"
	"github.com/quadrant/quadrant-backend/pkg/httputil"
	"github.com/quadrant/quadrant-backend/pkg/logger"
)

// DecisionHandler handles talent decision endpoints
type DecisionHandler struct {
	service *service.DecisionService
	logger  *logger.Logger
}

// NewDecisionHandler creates a new decision handler
func NewDecisionHandler(svc *service.DecisionService, log *logger.Logger) *DecisionHandler {
	return &DecisionHandler{
		service: svc,
		logger:  log,
	}
}

// List lists decisions, optionally filtered with ?quarter=
func (h *DecisionHandler) List(w http.ResponseWriter, r *http.Request) {
	quarter := r.URL.Query().Get("quarter")

	decisions, err := h.service.List(r.Context(), quarter)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, decisions)
}

// Get gets a decision
func (h *DecisionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	decision, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, decision)
}

type createDecisionRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Decision   string `json:"decision" validate:"required"`
	Rationale  string `json:"rationale"`
	Quarter    string `json:"quarter" validate:"required"`
	DecidedAt  string `json:"decided_at"`
}

// Create records a decision
func (h *DecisionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDecisionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	decision := repository.TalentDecision{
		EmployeeID: req.EmployeeID,
		Decision:   req.Decision,
		Rationale:  req.Rationale,
		Quarter:    req.Quarter,
		DecidedAt:  req.DecidedAt,
	}
	if err := h.service.Create(r.Context(), &decision); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, decision)
}

// Update updates a decision
func (h *DecisionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var decision repository.TalentDecision
	if err := httputil.DecodeJSON(r, &decision); err != nil {
		httputil.Error(w, err)
		return
	}

	decision.ID = id
	if err := h.service.Update(r.Context(), &decision); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, decision)
}

// Delete removes a decision
func (h *DecisionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// ExportCSV streams one quarter's decisions as text/csv
func (h *DecisionHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	quarter := r.URL.Query().Get("quarter")

	csv, err := h.service.ExportCSV(r.Context(), quarter)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="decisions-`+quarter+`.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(csv))
}
