package models

import (
	"time"

	"ravehub/internal/status"
)

// PaymentInstallment is one payment of an installment plan. Number 0 is
// the reservation fee, due at purchase time.
type PaymentInstallment struct {
	ID              string                   `json:"id"`
	TransactionID   string                   `json:"transaction_id"`
	Number          int                      `json:"installment_number"`
	Amount          float64                  `json:"amount"`
	Currency        string                   `json:"currency"`
	DueDate         time.Time                `json:"due_date"`
	Status          status.InstallmentStatus `json:"status"`
	AdminApproved   bool                     `json:"admin_approved"`
	ProofURL        string                   `json:"user_uploaded_proof_url,omitempty"`
	ProofUploadedAt *time.Time               `json:"user_uploaded_at,omitempty"`
	RejectReason    string                   `json:"reject_reason,omitempty"`
}

// PendingReview reports whether the installment sits in the admin queue:
// proof uploaded, decision outstanding.
func (i *PaymentInstallment) PendingReview() bool {
	return i.Status == status.InstallmentPending && !i.AdminApproved && i.ProofURL != ""
}
