package handler

import (
	"net/http"

	"github.com/quadrant/quadrant-backend/internal/agenda/service"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/httputil"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

// AgendaHandler handles the manager command-center endpoint
type AgendaHandler struct {
	service *service.AgendaService
	logger  *logger.Logger
}

// NewAgendaHandler creates a new agenda handler
func NewAgendaHandler(svc *service.AgendaService, log *logger.Logger) *AgendaHandler {
	return &AgendaHandler{
		service: svc,
		logger:  log,
	}
}

// Get builds the agenda for the requesting manager. A manager_id query
// parameter overrides the authenticated user, for admin views.
func (h *AgendaHandler) Get(w http.ResponseWriter, r *http.Request) {
	managerID := r.URL.Query().Get("manager_id")
	if managerID == "" {
		managerID = workspace.UserID(r.Context())
	}
	if managerID == "" {
		httputil.Error(w, errors.Unauthorized("authentication required"))
		return
	}

	agenda, err := h.service.BuildAgenda(r.Context(), managerID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, agenda)
}
