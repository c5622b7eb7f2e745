package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quadrant/quadrant-backend/internal/notifications/service"
	"github.com/quadrant/quadrant-backend/pkg/errors"
	"github.com/quadrant/quadrant-backend/pkg/httputil"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

// NotificationHandler serves the caller's notification inbox
type NotificationHandler struct {
	service *service.NotificationService
	logger  *logger.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(svc *service.NotificationService, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: svc,
		logger:  log,
	}
}

// List lists the caller's notifications; ?unread=true filters to unread
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := workspace.UserID(r.Context())
	if userID == "" {
		httputil.Error(w, errors.Unauthorized("user identity required"))
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.service.ListForRecipient(r.Context(), userID, unreadOnly)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, notifications)
}

// MarkRead flags one notification as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.MarkRead(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// MarkAllRead flags all of the caller's notifications as read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := workspace.UserID(r.Context())
	if userID == "" {
		httputil.Error(w, errors.Unauthorized("user identity required"))
		return
	}

	if err := h.service.MarkAllRead(r.Context(), userID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
