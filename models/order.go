package models

import (
	"time"

	"ravehub/internal/status"
)

type Order struct {
	ID             string               `json:"id"`
	Reference      string               `json:"reference"`
	UserID         string               `json:"user_id"`
	Items          []OrderItem          `json:"items"`
	Status         status.OrderStatus   `json:"status"`
	PaymentStatus  status.PaymentStatus `json:"payment_status"`
	PaymentMethod  string               `json:"payment_method"`
	ProviderStatus string               `json:"mercado_pago_status,omitempty"`
	StatusHistory  []StatusChange       `json:"status_history"`
	PaymentDetails *PaymentDetails      `json:"payment_details,omitempty"`
	TotalAmount    float64              `json:"total_amount"`
	Currency       string               `json:"currency"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// StatusChange is one entry of the append-only order audit log.
type StatusChange struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	UpdatedBy string    `json:"updated_by"`
	Notes     string    `json:"notes,omitempty"`
}

// PaymentDetails is the gateway snapshot persisted when a payment is
// approved.
type PaymentDetails struct {
	PaymentID     string    `json:"payment_id"`
	Method        string    `json:"method"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	PayerEmail    string    `json:"payer_email,omitempty"`
	ApprovedAt    time.Time `json:"approved_at"`
	ProviderState string    `json:"provider_state"`
}

// HasHistoryEntry reports whether the audit log already records a change
// by updatedBy carrying the given notes. Used as a secondary replay guard
// behind the dedupe key.
func (o *Order) HasHistoryEntry(updatedBy, notes string) bool {
	for _, h := range o.StatusHistory {
		if h.UpdatedBy == updatedBy && h.Notes == notes {
			return true
		}
	}
	return false
}
