package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ravehub/internal/services/gateway/mercadopago"
	"ravehub/internal/services/orders"
	"ravehub/internal/status"
)

type PaymentHandler struct {
	app     *pocketbase.PocketBase
	gateway *mercadopago.Client
	orders  *orders.Service
	webhook *orders.WebhookService
}

func NewPaymentHandler(app *pocketbase.PocketBase, gateway *mercadopago.Client, orderService *orders.Service, webhook *orders.WebhookService) *PaymentHandler {
	return &PaymentHandler{
		app:     app,
		gateway: gateway,
		orders:  orderService,
		webhook: webhook,
	}
}

type webhookBody struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// MercadoPagoWebhook - Gateway payment notification entry point. The
// x-signature header is verified before anything else; the payload is
// never trusted beyond the payment id.
func (h *PaymentHandler) MercadoPagoWebhook(e *core.RequestEvent) error {
	r := e.Request

	dataID := r.URL.Query().Get("data.id")
	var body webhookBody
	if err := e.BindBody(&body); err != nil {
		return apis.NewBadRequestError("Invalid webhook payload", err)
	}
	if dataID == "" {
		dataID = body.Data.ID
	}
	if dataID == "" {
		return apis.NewBadRequestError("Missing payment id", nil)
	}

	signature := r.Header.Get("x-signature")
	requestID := r.Header.Get("x-request-id")
	if err := h.gateway.VerifySignature(signature, requestID, dataID); err != nil {
		slog.Warn("webhook signature rejected", "data_id", dataID, "request_id", requestID, "error", err)
		return apis.NewUnauthorizedError("Invalid signature", nil)
	}

	// Only payment events carry state we reconcile; everything else is
	// acknowledged so the provider stops retrying.
	if body.Type != "" && body.Type != "payment" {
		return e.JSON(http.StatusOK, map[string]any{"message": "Event ignored"})
	}

	result, err := h.webhook.HandlePaymentEvent(r.Context(), dataID)
	if err != nil {
		if errors.Is(err, status.ErrOrderNotFound) {
			// Acknowledge: retrying will not make the order appear.
			slog.Warn("webhook for unknown order", "data_id", dataID)
			return e.JSON(http.StatusOK, map[string]any{"message": "Order not found"})
		}
		slog.Error("h.webhook.HandlePaymentEvent()", "data_id", dataID, "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	return e.JSON(http.StatusOK, result)
}

// Health - Liveness probe used by the gateway's webhook configuration check
func (h *PaymentHandler) Health(e *core.RequestEvent) error {
	return e.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// CreatePreference - Register a gateway checkout preference for an order
func (h *PaymentHandler) CreatePreference(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req orders.PreferenceRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.BuyerEmail == "" {
		req.BuyerEmail = e.Auth.GetString("email")
	}
	ctx := e.Request.Context()

	result, err := h.orders.CreatePreference(ctx, &req)
	if err != nil {
		switch {
		case errors.Is(err, status.ErrOrderNotFound):
			return apis.NewNotFoundError("Order not found", nil)
		default:
			slog.Error("h.orders.CreatePreference()", "order_id", req.OrderID, "error", err)
			return apis.NewInternalServerError("internal error", err)
		}
	}

	return e.JSON(http.StatusCreated, result)
}
