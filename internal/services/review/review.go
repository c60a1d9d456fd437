// Package review implements the admin installment review workflow:
// listing proof uploads awaiting a decision, approving or rejecting them,
// and promoting the parent transaction once its schedule is fully paid.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"ravehub/internal/status"
	"ravehub/models"
	"ravehub/monitoring"
)

type Store interface {
	FindInstallment(ctx context.Context, id string) (*models.PaymentInstallment, error)
	ListPendingInstallments(ctx context.Context) ([]*models.PaymentInstallment, error)
	ListTransactionInstallments(ctx context.Context, transactionID string) ([]*models.PaymentInstallment, error)
	ReviewInstallment(ctx context.Context, id string, st status.InstallmentStatus, approved bool, reason string) error
	AttachProof(ctx context.Context, id string, file *multipart.FileHeader) error
	FindTransaction(ctx context.Context, id string) (*models.TicketTransaction, error)
	UpdateTransactionStatus(ctx context.Context, id string, payment status.PaymentStatus, delivery status.DeliveryStatus) error
	FindEvent(ctx context.Context, id string) (*models.Event, error)
	UserDisplayName(ctx context.Context, userID string) string
}

type Notifier interface {
	NotifyUser(ctx context.Context, n *models.Notification) error
}

type Service struct {
	store  Store
	notify Notifier

	now func() time.Time
}

func NewService(store Store, notify Notifier) *Service {
	return &Service{
		store:  store,
		notify: notify,
		now:    time.Now,
	}
}

// PendingInstallment is a review-queue entry joined with its transaction,
// event and buyer for display.
type PendingInstallment struct {
	Installment   *models.PaymentInstallment `json:"installment"`
	TransactionID string                     `json:"transaction_id"`
	EventName     string                     `json:"event_name"`
	BuyerName     string                     `json:"buyer_name"`
	TotalAmount   float64                    `json:"total_amount"`
	Currency      string                     `json:"currency"`
}

// ListPending returns every installment with uploaded proof awaiting a
// decision. Entries whose transaction vanished are skipped rather than
// failing the whole queue.
func (s *Service) ListPending(ctx context.Context) ([]*PendingInstallment, error) {
	installments, err := s.store.ListPendingInstallments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}

	result := make([]*PendingInstallment, 0, len(installments))
	for _, in := range installments {
		tx, err := s.store.FindTransaction(ctx, in.TransactionID)
		if err != nil {
			continue
		}

		entry := &PendingInstallment{
			Installment:   in,
			TransactionID: tx.ID,
			BuyerName:     s.store.UserDisplayName(ctx, tx.UserID),
			TotalAmount:   tx.TotalAmount,
			Currency:      tx.Currency,
		}
		if event, err := s.store.FindEvent(ctx, tx.EventID); err == nil {
			entry.EventName = event.Name
		}
		result = append(result, entry)
	}
	return result, nil
}

// Approve marks an installment paid and admin-approved. Approval is
// terminal. When the whole schedule is approved the transaction's payment
// is approved and ticket delivery opens.
func (s *Service) Approve(ctx context.Context, installmentID string) error {
	in, err := s.store.FindInstallment(ctx, installmentID)
	if err != nil {
		return err
	}
	if !status.CanReviewInstallment(in.Status, in.AdminApproved) {
		return status.ErrInstallmentFinal
	}
	if in.ProofURL == "" {
		return status.ErrProofMissing
	}

	if err := s.store.ReviewInstallment(ctx, installmentID, status.InstallmentPaid, true, ""); err != nil {
		return fmt.Errorf("approve installment: %w", err)
	}
	monitoring.TrackReview("approved")

	tx, err := s.store.FindTransaction(ctx, in.TransactionID)
	if err != nil {
		return err
	}

	if err := s.promoteIfComplete(ctx, tx, installmentID); err != nil {
		return err
	}

	// The decision is already persisted; a failed notification must not
	// surface as a failed review.
	if err := s.notify.NotifyUser(ctx, &models.Notification{
		UserID:  tx.UserID,
		Title:   "Cuota aprobada",
		Body:    fmt.Sprintf("Tu cuota %d fue aprobada.", in.Number),
		Type:    models.NotificationInstallment,
		OrderID: tx.ID,
	}); err != nil {
		slog.Error("approval notification failed",
			"installment_id", installmentID, "user_id", tx.UserID, "error", err)
	}
	return nil
}

// Reject records a structured rejection reason. An approved installment
// cannot be rejected.
func (s *Service) Reject(ctx context.Context, installmentID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return status.ErrReasonRequired
	}

	in, err := s.store.FindInstallment(ctx, installmentID)
	if err != nil {
		return err
	}
	if in.AdminApproved {
		return status.ErrInstallmentFinal
	}

	if err := s.store.ReviewInstallment(ctx, installmentID, status.InstallmentRejected, false, reason); err != nil {
		return fmt.Errorf("reject installment: %w", err)
	}
	monitoring.TrackReview("rejected")

	tx, err := s.store.FindTransaction(ctx, in.TransactionID)
	if err != nil {
		return err
	}

	if err := s.notify.NotifyUser(ctx, &models.Notification{
		UserID:  tx.UserID,
		Title:   "Comprobante rechazado",
		Body:    fmt.Sprintf("Tu comprobante de la cuota %d fue rechazado: %s", in.Number, reason),
		Type:    models.NotificationInstallment,
		OrderID: tx.ID,
	}); err != nil {
		slog.Error("rejection notification failed",
			"installment_id", installmentID, "user_id", tx.UserID, "error", err)
	}
	return nil
}

// ListForOwner returns the installment schedule of a transaction, but
// only to the buyer who owns it. Non-owners get a not-found so the
// endpoint does not leak transaction ids.
func (s *Service) ListForOwner(ctx context.Context, transactionID, userID string) ([]*models.PaymentInstallment, error) {
	tx, err := s.store.FindTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, status.ErrTransactionNotFound
	}
	return s.store.ListTransactionInstallments(ctx, transactionID)
}

// UploadProof attaches a buyer's proof-of-payment image to their own
// installment, re-entering the review queue.
func (s *Service) UploadProof(ctx context.Context, installmentID, userID string, file *multipart.FileHeader) error {
	in, err := s.store.FindInstallment(ctx, installmentID)
	if err != nil {
		return err
	}
	if in.AdminApproved {
		return status.ErrInstallmentFinal
	}

	tx, err := s.store.FindTransaction(ctx, in.TransactionID)
	if err != nil {
		return err
	}
	if tx.UserID != userID {
		return status.ErrInstallmentNotFound
	}

	return s.store.AttachProof(ctx, installmentID, file)
}

// promoteIfComplete approves the transaction payment once every
// installment of the schedule is paid and admin approved. justApproved
// covers the read-after-write gap for the installment decided in this
// call.
func (s *Service) promoteIfComplete(ctx context.Context, tx *models.TicketTransaction, justApproved string) error {
	installments, err := s.store.ListTransactionInstallments(ctx, tx.ID)
	if err != nil {
		return err
	}

	for _, in := range installments {
		if in.ID == justApproved {
			continue
		}
		if in.Status != status.InstallmentPaid || !in.AdminApproved {
			return nil
		}
	}

	delivery := status.DeliveryAvailable
	if tx.DeliveryMode == status.DeliveryAutomatic && tx.DownloadAvailableAt != nil && tx.DownloadAvailableAt.After(s.now()) {
		delivery = status.DeliveryScheduled
	}

	return s.store.UpdateTransactionStatus(ctx, tx.ID, status.PaymentApproved, delivery)
}
