package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"ravehub/internal/status"
	"ravehub/models"
	"ravehub/monitoring"
)

// Deduper answers whether a webhook delivery key is seen for the first
// time, and can release a claim that did not result in a persisted
// transition. Implementations must be safe for concurrent use.
type Deduper interface {
	FirstDelivery(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

// RedisDeduper backs webhook idempotency with SETNX and a TTL long
// enough to outlive provider retry windows.
type RedisDeduper struct {
	Redis *redis.Client
	TTL   time.Duration
}

func (d *RedisDeduper) FirstDelivery(ctx context.Context, key string) (bool, error) {
	return d.Redis.SetNX(ctx, key, "1", d.TTL).Result()
}

func (d *RedisDeduper) Forget(ctx context.Context, key string) error {
	return d.Redis.Del(ctx, key).Err()
}

// WebhookService reconciles gateway payment notifications against
// orders. It never trusts the notification payload beyond the payment
// id: the authoritative state is re-fetched from the gateway.
type WebhookService struct {
	store   Store
	gateway Gateway
	dedupe  Deduper
	notify  Notifier

	now func() time.Time
}

func NewWebhookService(store Store, gateway Gateway, dedupe Deduper, notify Notifier) *WebhookService {
	return &WebhookService{
		store:   store,
		gateway: gateway,
		dedupe:  dedupe,
		notify:  notify,
		now:     time.Now,
	}
}

type WebhookResult struct {
	OrderID    string             `json:"order_id"`
	NewStatus  status.OrderStatus `json:"new_status"`
	Duplicate  bool               `json:"duplicate"`
	Unmapped   bool               `json:"unmapped"`
	ProviderID int64              `json:"provider_payment_id"`
}

const webhookActor = "mercadopago_webhook"

// HandlePaymentEvent processes one payment notification end to end:
// re-fetch the payment, locate the order through the external
// reference, map the provider status and, when the delivery is fresh,
// append exactly one audit entry and notify the buyer. Replays return
// the current state without touching the order.
func (s *WebhookService) HandlePaymentEvent(ctx context.Context, paymentID string) (*WebhookResult, error) {
	payment, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}

	order, err := s.store.FindOrder(ctx, payment.ExternalReference)
	if err != nil {
		monitoring.TrackWebhookEvent(payment.Status, "order_not_found")
		return nil, fmt.Errorf("order %q for payment %d: %w", payment.ExternalReference, payment.ID, err)
	}

	result := &WebhookResult{
		OrderID:    order.ID,
		NewStatus:  order.Status,
		ProviderID: payment.ID,
	}

	transition, known := status.MapProviderStatus(payment.Status)
	if !known {
		slog.Warn("unmapped provider status, order left untouched",
			"payment_id", payment.ID, "provider_status", payment.Status, "order_id", order.ID)
		monitoring.TrackWebhookEvent(payment.Status, "unmapped")
		result.Unmapped = true
		return result, nil
	}

	notes := fmt.Sprintf("mercadopago payment %d -> %s", payment.ID, payment.Status)
	key := dedupeKey(payment.ID, payment.Status)
	fresh, err := s.dedupe.FirstDelivery(ctx, key)
	if err != nil {
		// Dedupe store down: let the audit-log check below be the guard
		// so a retry storm cannot double-append.
		slog.Error("webhook dedupe unavailable, falling back to audit log",
			"payment_id", payment.ID, "error", err)
		fresh = true
	}
	if !fresh || order.HasHistoryEntry(webhookActor, notes) {
		monitoring.TrackWebhookEvent(payment.Status, "duplicate")
		result.Duplicate = true
		return result, nil
	}

	change := models.StatusChange{
		Status:    string(transition.Order),
		Timestamp: s.now(),
		UpdatedBy: webhookActor,
		Notes:     notes,
	}

	var details *models.PaymentDetails
	if transition.Payment == status.PaymentApproved {
		approvedAt := s.now()
		if payment.DateApproved != nil {
			approvedAt = *payment.DateApproved
		}
		details = &models.PaymentDetails{
			PaymentID:     fmt.Sprintf("%d", payment.ID),
			Method:        payment.PaymentMethodID,
			Amount:        payment.TransactionAmount.InexactFloat64(),
			Currency:      payment.CurrencyID,
			PayerEmail:    payment.Payer.Email,
			ApprovedAt:    approvedAt,
			ProviderState: payment.Status,
		}
	}

	order.Status = transition.Order
	order.PaymentStatus = transition.Payment
	order.ProviderStatus = payment.Status
	if err := s.store.ApplyOrderTransition(ctx, order, change, details); err != nil {
		// Release the dedupe claim: nothing was persisted, and the
		// provider's retry must not be classified as a replay.
		if derr := s.dedupe.Forget(ctx, key); derr != nil {
			slog.Error("webhook dedupe release failed, retry relies on audit log",
				"payment_id", payment.ID, "error", derr)
		}
		monitoring.TrackWebhookEvent(payment.Status, "store_error")
		return nil, fmt.Errorf("apply transition for order %s: %w", order.ID, err)
	}

	s.notifyBuyer(ctx, order, transition)
	monitoring.TrackWebhookEvent(payment.Status, "applied")

	result.NewStatus = transition.Order
	return result, nil
}

func (s *WebhookService) notifyBuyer(ctx context.Context, order *models.Order, transition status.OrderTransition) {
	var title, body string
	switch transition.Payment {
	case status.PaymentApproved:
		title = "Pago aprobado"
		body = "Tu pago fue aprobado. ¡Gracias por tu compra!"
	case status.PaymentRejected:
		title = "Pago rechazado"
		body = "Tu pago no pudo procesarse. Intenta nuevamente con otro medio de pago."
	default:
		title = "Pago en proceso"
		body = "Tu pago está siendo procesado. Te avisaremos cuando se confirme."
	}

	n := &models.Notification{
		UserID:  order.UserID,
		Title:   title,
		Body:    body,
		Type:    models.NotificationPayment,
		OrderID: order.ID,
	}
	if err := s.notify.NotifyUser(ctx, n); err != nil {
		slog.Error("webhook buyer notification failed",
			"order_id", order.ID, "user_id", order.UserID, "error", err)
	}
}

func dedupeKey(paymentID int64, providerStatus string) string {
	return fmt.Sprintf("webhook:payment:%d:%s", paymentID, providerStatus)
}
