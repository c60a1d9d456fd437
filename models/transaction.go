package models

import (
	"time"

	"ravehub/internal/status"
)

type TicketTransaction struct {
	ID                  string                `json:"id"`
	UserID              string                `json:"user_id"`
	EventID             string                `json:"event_id"`
	TicketItems         []TicketItem          `json:"ticket_items"`
	TotalAmount         float64               `json:"total_amount"`
	Currency            string                `json:"currency"`
	PaymentMethod       status.PaymentMethod  `json:"payment_method"`
	PaymentType         status.PaymentType    `json:"payment_type"`
	PaymentStatus       status.PaymentStatus  `json:"payment_status"`
	DeliveryMode        status.DeliveryMode   `json:"ticket_delivery_mode"`
	DeliveryStatus      status.DeliveryStatus `json:"ticket_delivery_status"`
	DownloadAvailableAt *time.Time            `json:"tickets_download_available_at,omitempty"`
	IsCourtesy          bool                  `json:"is_courtesy"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
	ExpiresAt           *time.Time            `json:"expires_at,omitempty"`
}

type TicketItem struct {
	ZoneID    string  `json:"zone_id"`
	PhaseID   string  `json:"phase_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Downloadable reports whether tickets can be downloaded at now. Delivery
// must be available, and automatic delivery additionally waits for the
// scheduled download date.
func (t *TicketTransaction) Downloadable(now time.Time) bool {
	if t.DeliveryStatus != status.DeliveryAvailable {
		return false
	}
	if t.DeliveryMode == status.DeliveryAutomatic && t.DownloadAvailableAt != nil {
		return !now.Before(*t.DownloadAvailableAt)
	}
	return true
}

// ExpiredFor reports whether a still-pending transaction has aged past its
// expiry plus the grace window and should be hidden from buyer lists.
// Offline transactions carry no payment deadline, so they age out from
// their creation time instead. Expired transactions are filtered, never
// deleted.
func (t *TicketTransaction) ExpiredFor(now time.Time, grace time.Duration) bool {
	if t.PaymentStatus != status.PaymentPending {
		return false
	}
	anchor := t.CreatedAt
	if t.ExpiresAt != nil {
		anchor = *t.ExpiresAt
	}
	if anchor.IsZero() {
		return false
	}
	return now.After(anchor.Add(grace))
}
