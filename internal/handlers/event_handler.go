package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ravehub/internal/status"
	"ravehub/internal/store"
)

type EventHandler struct {
	app   *pocketbase.PocketBase
	store *store.Store
}

func NewEventHandler(app *pocketbase.PocketBase, store *store.Store) *EventHandler {
	return &EventHandler{
		app:   app,
		store: store,
	}
}

// ListEvents - Public catalog of published events, optionally by country
func (h *EventHandler) ListEvents(e *core.RequestEvent) error {
	country := e.Request.URL.Query().Get("country")
	limit := 50
	if raw := e.Request.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	events, err := h.store.ListPublishedEvents(e.Request.Context(), country, limit)
	if err != nil {
		slog.Error("h.store.ListPublishedEvents()", "country", country, "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"events": events})
}

// GetEvent - Published event detail with its DJ lineup
func (h *EventHandler) GetEvent(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")
	ctx := e.Request.Context()

	event, err := h.store.FindPublishedEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, status.ErrEventNotFound) || errors.Is(err, status.ErrEventNotPublished) {
			return apis.NewNotFoundError("Event not found", nil)
		}
		slog.Error("h.store.FindPublishedEvent()", "event_id", eventID, "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	djs, err := h.store.ListEventDJs(ctx, event)
	if err != nil {
		slog.Error("h.store.ListEventDJs()", "event_id", eventID, "error", err)
		djs = nil
	}

	return e.JSON(http.StatusOK, map[string]any{
		"event": event,
		"djs":   djs,
	})
}
