package handlers

import (
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ravehub/internal/services/orders"
)

type OrderHandler struct {
	app    *pocketbase.PocketBase
	orders *orders.Service
}

func NewOrderHandler(app *pocketbase.PocketBase, orderService *orders.Service) *OrderHandler {
	return &OrderHandler{
		app:    app,
		orders: orderService,
	}
}

// Checkout - Create a pending merch order from the caller's cart
func (h *OrderHandler) Checkout(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req orders.CheckoutRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	req.UserID = e.Auth.Id
	ctx := e.Request.Context()

	order, err := h.orders.Checkout(ctx, &req)
	if err != nil {
		slog.Error("h.orders.Checkout()", "user_id", e.Auth.Id, "error", err)
		return apis.NewBadRequestError("Invalid order", err)
	}

	return e.JSON(http.StatusCreated, order)
}

// ListMyOrders - List the caller's orders, newest first
func (h *OrderHandler) ListMyOrders(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	list, err := h.orders.ListOrders(e.Request.Context(), e.Auth.Id)
	if err != nil {
		slog.Error("h.orders.ListOrders()", "user_id", e.Auth.Id, "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"orders": list})
}
