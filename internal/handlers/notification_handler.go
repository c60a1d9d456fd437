package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ravehub/internal/store"
)

type NotificationHandler struct {
	app   *pocketbase.PocketBase
	store *store.Store
}

func NewNotificationHandler(app *pocketbase.PocketBase, store *store.Store) *NotificationHandler {
	return &NotificationHandler{
		app:   app,
		store: store,
	}
}

// ListNotifications - The caller's notifications, newest first
func (h *NotificationHandler) ListNotifications(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	limit := 50
	if raw := e.Request.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	list, err := h.store.ListUserNotifications(e.Request.Context(), e.Auth.Id, limit)
	if err != nil {
		slog.Error("h.store.ListUserNotifications()", "user_id", e.Auth.Id, "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"notifications": list})
}

// MarkRead - Flip one notification's read flag
func (h *NotificationHandler) MarkRead(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	notificationID := e.Request.PathValue("notificationId")
	if err := h.store.MarkNotificationRead(e.Request.Context(), notificationID, e.Auth.Id); err != nil {
		return apis.NewNotFoundError("Notification not found", nil)
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Notification marked as read"})
}

// MarkAllRead - Flip every unread notification of the caller
func (h *NotificationHandler) MarkAllRead(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	if err := h.store.MarkAllNotificationsRead(e.Request.Context(), e.Auth.Id); err != nil {
		slog.Error("h.store.MarkAllNotificationsRead()", "user_id", e.Auth.Id, "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "All notifications marked as read"})
}
