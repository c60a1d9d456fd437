package status

import "errors"

var (
	ErrEventNotFound       = errors.New("event: event not found")
	ErrEventNotPublished   = errors.New("event: event is not published")
	ErrInsufficientStock   = errors.New("stock: not enough tickets available")
	ErrStockNotTracked     = errors.New("stock: no stock counter for zone")
	ErrOrderNotFound       = errors.New("order: order not found")
	ErrTransactionNotFound = errors.New("transaction: transaction not found")
	ErrInstallmentNotFound = errors.New("installment: installment not found")
	ErrInstallmentFinal    = errors.New("installment: installment already approved")
	ErrProofMissing        = errors.New("installment: no proof of payment uploaded")
	ErrReasonRequired      = errors.New("installment: rejection reason is required")
	ErrDownloadNotReady    = errors.New("ticket: download not available yet")
	ErrPostNotFound        = errors.New("blog: post not found")
	ErrInvalidSignature    = errors.New("webhook: invalid signature")
	ErrDuplicateDelivery   = errors.New("webhook: event already processed")
)

// EventStatus is the lifecycle of an event listing.
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventCancelled EventStatus = "cancelled"
	EventFinished  EventStatus = "finished"
)

// PaymentMethod distinguishes gateway checkout from bank-transfer uploads.
type PaymentMethod string

const (
	PaymentOnline  PaymentMethod = "online"
	PaymentOffline PaymentMethod = "offline"
)

// PaymentType distinguishes a one-shot payment from an installment plan.
type PaymentType string

const (
	PaymentFull        PaymentType = "full"
	PaymentInstallment PaymentType = "installment"
)

// PaymentStatus is the buyer-facing payment state of a transaction or order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

// OrderStatus is the merchandise order lifecycle.
type OrderStatus string

const (
	OrderPending         OrderStatus = "pending"
	OrderPaymentApproved OrderStatus = "payment_approved"
	OrderCancelled       OrderStatus = "cancelled"
)

// InstallmentStatus is the review state of a single installment.
type InstallmentStatus string

const (
	InstallmentPending  InstallmentStatus = "pending"
	InstallmentPaid     InstallmentStatus = "paid"
	InstallmentRejected InstallmentStatus = "rejected"
)

// DeliveryMode is how tickets reach the buyer once payment clears.
type DeliveryMode string

const (
	DeliveryAutomatic    DeliveryMode = "automatic"
	DeliveryManualUpload DeliveryMode = "manualUpload"
)

// DeliveryStatus gates ticket downloads.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryScheduled DeliveryStatus = "scheduled"
	DeliveryAvailable DeliveryStatus = "available"
	DeliveryDelivered DeliveryStatus = "delivered"
)

// OrderTransition is one row of the provider status mapping table.
type OrderTransition struct {
	Order   OrderStatus
	Payment PaymentStatus
}

// providerTransitions maps a gateway payment status to internal order states.
// Statuses missing from the table leave the order untouched.
var providerTransitions = map[string]OrderTransition{
	"approved":     {OrderPaymentApproved, PaymentApproved},
	"pending":      {OrderPending, PaymentPending},
	"in_process":   {OrderPending, PaymentPending},
	"rejected":     {OrderCancelled, PaymentRejected},
	"cancelled":    {OrderCancelled, PaymentRejected},
	"refunded":     {OrderCancelled, PaymentRejected},
	"charged_back": {OrderCancelled, PaymentRejected},
}

// MapProviderStatus resolves a gateway payment status to internal order
// states. ok is false for statuses the table does not know.
func MapProviderStatus(provider string) (OrderTransition, bool) {
	t, ok := providerTransitions[provider]
	return t, ok
}

// CanReviewInstallment reports whether an installment still accepts an
// approve or reject decision. An approved installment is terminal; a
// rejected one may be re-reviewed after the buyer uploads new proof.
func CanReviewInstallment(s InstallmentStatus, adminApproved bool) bool {
	if adminApproved {
		return false
	}
	return s == InstallmentPending || s == InstallmentRejected
}
