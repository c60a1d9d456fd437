package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ravehub/internal/services/review"
	"ravehub/internal/status"
)

type AdminHandler struct {
	app    *pocketbase.PocketBase
	review *review.Service
}

func NewAdminHandler(app *pocketbase.PocketBase, review *review.Service) *AdminHandler {
	return &AdminHandler{
		app:    app,
		review: review,
	}
}

func requireAdmin(e *core.RequestEvent) error {
	if e.Auth == nil || e.Auth.GetString("role") != "admin" {
		return apis.NewUnauthorizedError("Admin access required", nil)
	}
	return nil
}

// ListPendingInstallments - Review queue of installments with uploaded proof
func (h *AdminHandler) ListPendingInstallments(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	pending, err := h.review.ListPending(e.Request.Context())
	if err != nil {
		slog.Error("h.review.ListPending()", "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"pending": pending,
		"count":   len(pending),
	})
}

// ApproveInstallment - Accept an installment's proof of payment
func (h *AdminHandler) ApproveInstallment(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	installmentID := e.Request.PathValue("installmentId")
	ctx := e.Request.Context()

	if err := h.review.Approve(ctx, installmentID); err != nil {
		switch {
		case errors.Is(err, status.ErrInstallmentNotFound):
			return apis.NewNotFoundError("Installment not found", nil)
		case errors.Is(err, status.ErrInstallmentFinal):
			return apis.NewBadRequestError("Installment is already approved", nil)
		case errors.Is(err, status.ErrProofMissing):
			return apis.NewBadRequestError("Installment has no proof of payment", nil)
		default:
			slog.Error("h.review.Approve()", "installment_id", installmentID, "admin_id", e.Auth.Id, "error", err)
			return apis.NewInternalServerError("internal error", err)
		}
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Installment approved"})
}

// RejectInstallment - Reject an installment's proof with a reason for the buyer
func (h *AdminHandler) RejectInstallment(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	installmentID := e.Request.PathValue("installmentId")

	var req struct {
		Reason string `json:"reason"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	ctx := e.Request.Context()

	if err := h.review.Reject(ctx, installmentID, req.Reason); err != nil {
		switch {
		case errors.Is(err, status.ErrInstallmentNotFound):
			return apis.NewNotFoundError("Installment not found", nil)
		case errors.Is(err, status.ErrReasonRequired):
			return apis.NewBadRequestError("A rejection reason is required", nil)
		case errors.Is(err, status.ErrInstallmentFinal):
			return apis.NewBadRequestError("Installment is already approved", nil)
		default:
			slog.Error("h.review.Reject()", "installment_id", installmentID, "admin_id", e.Auth.Id, "error", err)
			return apis.NewInternalServerError("internal error", err)
		}
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Installment rejected"})
}
