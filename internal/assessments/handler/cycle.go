package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quadrant/quadrant-backend/internal/assessments/repository"
	"github.com/quadrant/quadrant-backend/internal/assessments/service"
	"github.com/quadrant/quadrant-backend/pkg/httputil"
	"github.com/quadrant/quadrant-backend/pkg/logger"
)

// CycleHandler handles assessment cycle endpoints
type CycleHandler struct {
	service *service.CycleService
	logger  *logger.Logger
}

// NewCycleHandler creates a new cycle handler
func NewCycleHandler(svc *service.CycleService, log *logger.Logger) *CycleHandler {
	return &CycleHandler{
		service: svc,
		logger:  log,
	}
}

// List lists cycles
func (h *CycleHandler) List(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.service.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, cycles)
}

// Get gets a cycle with its participants
func (h *CycleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	cycle, participants, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"cycle":        cycle,
		"participants": participants,
	})
}

// Create creates a draft cycle
func (h *CycleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var cycle repository.AssessmentCycle
	if err := httputil.DecodeJSON(r, &cycle); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Create(r.Context(), &cycle); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, cycle)
}

// Activate activates a cycle and fans out its participant sheets
func (h *CycleHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	cycle, err := h.service.Activate(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, cycle)
}

// Close closes an active cycle
func (h *CycleHandler) Close(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	cycle, err := h.service.Close(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, cycle)
}

// Sheet returns one participant's assessment sheet
func (h *CycleHandler) Sheet(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "id")
	employeeID := chi.URLParam(r, "employeeID")

	sheet, err := h.service.Sheet(r.Context(), cycleID, employeeID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, sheet)
}

type submitRequest struct {
	Track  string         `json:"track" validate:"required,oneof=self manager"`
	Levels map[string]int `json:"levels" validate:"required"`
}

// Submit records self or manager levels for a participant
func (h *CycleHandler) Submit(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "id")
	employeeID := chi.URLParam(r, "employeeID")

	var req submitRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.SubmitLevels(r.Context(), cycleID, employeeID, req.Track, req.Levels); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Finalize records final levels and feeds them into skill ratings
func (h *CycleHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "id")
	employeeID := chi.URLParam(r, "employeeID")

	var req struct {
		Levels map[string]int `json:"levels" validate:"required"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Finalize(r.Context(), cycleID, employeeID, req.Levels); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
