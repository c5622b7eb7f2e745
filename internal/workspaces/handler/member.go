package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quadrant/quadrant-backend/internal/workspaces/repository"
	"github.com/quadrant/quadrant-backend/internal/workspaces/service"
	"github.com/quadrant/quadrant-backend/pkg/httputil"
	"github.com/quadrant/quadrant-backend/pkg/logger"
)

// MemberHandler handles workspace membership endpoints
type MemberHandler struct {
	service *service.MemberService
	logger  *logger.Logger
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(svc *service.MemberService, log *logger.Logger) *MemberHandler {
	return &MemberHandler{
		service: svc,
		logger:  log,
	}
}

// List lists workspace members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, members)
}

// Add adds a member to the workspace
func (h *MemberHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id" validate:"required"`
		Role   string `json:"role" validate:"omitempty,oneof=owner admin manager member"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	m := repository.Member{UserID: req.UserID, Role: req.Role}
	if err := h.service.Add(r.Context(), &m); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, m)
}

// UpdateRole changes a member's role
func (h *MemberHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req struct {
		Role string `json:"role" validate:"required,oneof=owner admin manager member"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.UpdateRole(r.Context(), userID, req.Role); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Remove removes a member from the workspace
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := h.service.Remove(r.Context(), userID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
