package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ravehub/internal/services/review"
	"ravehub/internal/services/ticketing"
	"ravehub/internal/status"
)

type TicketHandler struct {
	app     *pocketbase.PocketBase
	tickets *ticketing.Service
	review  *review.Service
}

func NewTicketHandler(app *pocketbase.PocketBase, tickets *ticketing.Service, review *review.Service) *TicketHandler {
	return &TicketHandler{
		app:     app,
		tickets: tickets,
		review:  review,
	}
}

// Purchase - Create a ticket transaction with its installment schedule
func (h *TicketHandler) Purchase(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req ticketing.PurchaseRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	req.UserID = e.Auth.Id
	ctx := e.Request.Context()

	// Checkout responses must never land in a search index.
	e.Response.Header().Set("X-Robots-Tag", "noindex")

	result, err := h.tickets.Purchase(ctx, &req)
	if err != nil {
		var verr *ticketing.ValidationError
		switch {
		case errors.As(err, &verr):
			return apis.NewBadRequestError(verr.Reason, nil)
		case errors.Is(err, status.ErrEventNotFound), errors.Is(err, status.ErrEventNotPublished):
			return apis.NewNotFoundError("Event not found", nil)
		case errors.Is(err, status.ErrInsufficientStock), errors.Is(err, status.ErrStockNotTracked):
			return apis.NewBadRequestError("No hay suficientes entradas disponibles", nil)
		default:
			slog.Error("h.tickets.Purchase()", "user_id", req.UserID, "event_id", req.EventID, "error", err)
			return apis.NewInternalServerError("internal error", err)
		}
	}

	return e.JSON(http.StatusCreated, result)
}

// ListMyTickets - List the caller's ticket transactions
func (h *TicketHandler) ListMyTickets(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	transactions, err := h.tickets.ListTransactions(e.Request.Context(), e.Auth.Id)
	if err != nil {
		slog.Error("h.tickets.ListTransactions()", "user_id", e.Auth.Id, "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"transactions": transactions})
}

// Download - Mark a paid ticket as delivered and hand back the ticket data
func (h *TicketHandler) Download(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	transactionID := e.Request.PathValue("transactionId")
	ctx := e.Request.Context()

	tx, err := h.tickets.Download(ctx, transactionID, e.Auth.Id)
	if err != nil {
		switch {
		case errors.Is(err, status.ErrTransactionNotFound):
			return apis.NewNotFoundError("Transaction not found", nil)
		case errors.Is(err, ticketing.ErrNotOwner):
			return apis.NewForbiddenError("Access denied", nil)
		case errors.Is(err, status.ErrDownloadNotReady):
			return apis.NewBadRequestError("Tus entradas aún no están disponibles para descarga", nil)
		default:
			slog.Error("h.tickets.Download()", "transaction_id", transactionID, "error", err)
			return apis.NewInternalServerError("internal error", err)
		}
	}

	return e.JSON(http.StatusOK, map[string]any{
		"transaction": tx,
		"message":     "Entradas listas para descargar",
	})
}

// ListInstallments - List the installment schedule of one transaction
func (h *TicketHandler) ListInstallments(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	transactionID := e.Request.PathValue("transactionId")
	ctx := e.Request.Context()

	installments, err := h.review.ListForOwner(ctx, transactionID, e.Auth.Id)
	if err != nil {
		switch {
		case errors.Is(err, status.ErrTransactionNotFound):
			return apis.NewNotFoundError("Transaction not found", nil)
		default:
			slog.Error("h.review.ListForOwner()", "transaction_id", transactionID, "error", err)
			return apis.NewInternalServerError("internal error", err)
		}
	}

	return e.JSON(http.StatusOK, map[string]any{"installments": installments})
}

// UploadProof - Attach a proof of payment file to an installment
func (h *TicketHandler) UploadProof(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	installmentID := e.Request.PathValue("installmentId")
	ctx := e.Request.Context()

	if err := e.Request.ParseMultipartForm(maxProofSize); err != nil {
		return apis.NewBadRequestError("Invalid multipart form", err)
	}
	_, header, err := e.Request.FormFile("proof")
	if err != nil {
		return apis.NewBadRequestError("Missing proof file", err)
	}

	if err := h.review.UploadProof(ctx, installmentID, e.Auth.Id, header); err != nil {
		switch {
		case errors.Is(err, status.ErrInstallmentNotFound), errors.Is(err, status.ErrTransactionNotFound):
			return apis.NewNotFoundError("Installment not found", nil)
		case errors.Is(err, status.ErrInstallmentFinal):
			return apis.NewBadRequestError("Esta cuota ya fue aprobada", nil)
		default:
			slog.Error("h.review.UploadProof()", "installment_id", installmentID, "error", err)
			return apis.NewInternalServerError("internal error", err)
		}
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message": "Comprobante recibido. Lo revisaremos dentro de las próximas 24 horas.",
	})
}

// 10 MB, matches the file field limit on the installments collection.
const maxProofSize = 10 << 20
