package models

import "time"

// Notification is a write-once document consumed by the bell UI. Only the
// read flag mutates after creation.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Type      string    `json:"type"`
	OrderID   string    `json:"order_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	NotificationPayment     = "payment"
	NotificationInstallment = "installment"
	NotificationAdminAction = "admin_action"
)
