package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quadrant/quadrant-backend/internal/pilots/repository"
	"github.com/quadrant/quadrant-backend/internal/pilots/service"
	"github.com/quadrant/quadrant-backend/pkg/httputil"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

// PilotHandler handles pilot run and quest endpoints
type PilotHandler struct {
	service *service.PilotService
	logger  *logger.Logger
}

// NewPilotHandler creates a new pilot handler
func NewPilotHandler(svc *service.PilotService, log *logger.Logger) *PilotHandler {
	return &PilotHandler{
		service: svc,
		logger:  log,
	}
}

// List lists pilot runs
func (h *PilotHandler) List(w http.ResponseWriter, r *http.Request) {
	pilots, err := h.service.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, pilots)
}

// Get gets a pilot with its sub-records
func (h *PilotHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	pilot, steps, participants, notes, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"pilot":        pilot,
		"steps":        steps,
		"participants": participants,
		"notes":        notes,
	})
}

// Create creates a pilot run
func (h *PilotHandler) Create(w http.ResponseWriter, r *http.Request) {
	var pilot repository.PilotRun
	if err := httputil.DecodeJSON(r, &pilot); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Create(r.Context(), &pilot); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, pilot)
}

// Update updates a pilot run
func (h *PilotHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var pilot repository.PilotRun
	if err := httputil.DecodeJSON(r, &pilot); err != nil {
		httputil.Error(w, err)
		return
	}

	pilot.ID = id
	if err := h.service.Update(r.Context(), &pilot); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, pilot)
}

// SetStatus moves a pilot to a new status
func (h *PilotHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status string `json:"status" validate:"required,oneof=draft planned active completed cancelled"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	pilot, err := h.service.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, pilot)
}

// Delete removes a pilot run
func (h *PilotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// AddStep appends a checklist step
func (h *PilotHandler) AddStep(w http.ResponseWriter, r *http.Request) {
	pilotID := chi.URLParam(r, "id")

	var step repository.PilotStep
	if err := httputil.DecodeJSON(r, &step); err != nil {
		httputil.Error(w, err)
		return
	}

	step.PilotID = pilotID
	if err := h.service.AddStep(r.Context(), &step); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, step)
}

// SetStepStatus sets one step's status
func (h *PilotHandler) SetStepStatus(w http.ResponseWriter, r *http.Request) {
	stepID := chi.URLParam(r, "stepID")

	var req struct {
		Status string `json:"status" validate:"required,oneof=not_started in_progress done"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.SetStepStatus(r.Context(), stepID, req.Status); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// AddParticipant adds an employee to a pilot
func (h *PilotHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	pilotID := chi.URLParam(r, "id")

	var req struct {
		EmployeeID string `json:"employee_id" validate:"required"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	participant := repository.PilotParticipant{
		PilotID:    pilotID,
		EmployeeID: req.EmployeeID,
	}
	if err := h.service.AddParticipant(r.Context(), &participant); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, participant)
}

// RemoveParticipant removes an employee from a pilot
func (h *PilotHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	pilotID := chi.URLParam(r, "id")
	employeeID := chi.URLParam(r, "employeeID")

	if err := h.service.RemoveParticipant(r.Context(), pilotID, employeeID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// AddNote attaches a note to a pilot
func (h *PilotHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	pilotID := chi.URLParam(r, "id")

	var req struct {
		Body string `json:"body" validate:"required"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	note := repository.PilotNote{
		PilotID:  pilotID,
		AuthorID: workspace.UserID(r.Context()),
		Body:     req.Body,
	}
	if err := h.service.AddNote(r.Context(), &note); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, note)
}

// ListQuests lists quests
func (h *PilotHandler) ListQuests(w http.ResponseWriter, r *http.Request) {
	quests, err := h.service.ListQuests(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, quests)
}

// CreateQuest creates a quest
func (h *PilotHandler) CreateQuest(w http.ResponseWriter, r *http.Request) {
	var quest repository.Quest
	if err := httputil.DecodeJSON(r, &quest); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.CreateQuest(r.Context(), &quest); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, quest)
}

// SetQuestStatus sets a quest's status
func (h *PilotHandler) SetQuestStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status string `json:"status" validate:"required,oneof=draft active completed"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.SetQuestStatus(r.Context(), id, req.Status); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// DeleteQuest removes a quest
func (h *PilotHandler) DeleteQuest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteQuest(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
