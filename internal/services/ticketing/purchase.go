// Package ticketing orchestrates ticket checkout: price and stock
// validation, transaction plus installment-schedule creation, and the
// download gate.
package ticketing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"ravehub/internal/services/installment"
	"ravehub/internal/status"
	"ravehub/models"
	"ravehub/monitoring"
)

type Store interface {
	FindPublishedEvent(ctx context.Context, id string) (*models.Event, error)
	CreateTransaction(ctx context.Context, tx *models.TicketTransaction, plan *installment.Plan) (string, error)
	FindTransaction(ctx context.Context, id string) (*models.TicketTransaction, error)
	ListUserTransactions(ctx context.Context, userID string, grace time.Duration) ([]*models.TicketTransaction, error)
	MarkDelivered(ctx context.Context, id string) error
}

type Reserver interface {
	Reserve(ctx context.Context, eventID, phaseID, zoneID string, qty int) error
	Release(ctx context.Context, eventID, phaseID, zoneID string, qty int) error
}

type Notifier interface {
	NotifyAdmins(ctx context.Context, n *models.Notification) error
}

// ValidationError is a request-shaped failure the handler maps to a 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

type Service struct {
	store  Store
	stock  Reserver
	notify Notifier

	onlineTTL time.Duration
	grace     time.Duration

	// now is swappable in tests.
	now func() time.Time
}

func NewService(store Store, stock Reserver, notify Notifier, onlineTTL, grace time.Duration) *Service {
	return &Service{
		store:     store,
		stock:     stock,
		notify:    notify,
		onlineTTL: onlineTTL,
		grace:     grace,
		now:       time.Now,
	}
}

type TicketSelection struct {
	ZoneID   string `json:"zone_id"`
	Quantity int    `json:"quantity"`
}

type PurchaseRequest struct {
	UserID         string
	EventID        string            `json:"event_id"`
	Tickets        []TicketSelection `json:"tickets"`
	PaymentMethod  string            `json:"payment_method"`
	PaymentType    string            `json:"payment_type"`
	Installments   int               `json:"installments"`
	TotalAmount    float64           `json:"total_amount"`
	Currency       string            `json:"currency"`
	ReservationFee float64           `json:"reservation_fee"`
}

type PurchaseResult struct {
	TransactionID string `json:"transaction_id"`
	PaymentURL    string `json:"payment_url,omitempty"`
	Message       string `json:"message,omitempty"`
	NextSteps     string `json:"next_steps,omitempty"`
}

// Purchase validates the checkout request against the event's current
// sales phase, reserves stock, and creates the transaction together with
// its installment schedule in one atomic batch.
func (s *Service) Purchase(ctx context.Context, req *PurchaseRequest) (*PurchaseResult, error) {
	if err := s.validate(req); err != nil {
		monitoring.TrackPurchase(req.PaymentMethod, req.PaymentType, "invalid")
		return nil, err
	}

	event, err := s.store.FindPublishedEvent(ctx, req.EventID)
	if err != nil {
		monitoring.TrackPurchase(req.PaymentMethod, req.PaymentType, "event_not_found")
		return nil, err
	}

	now := s.now()
	phase := event.CurrentPhase(now)
	if phase == nil {
		return nil, invalid("las ventas para este evento no están abiertas")
	}

	items, total, err := s.priceItems(event, phase, req)
	if err != nil {
		return nil, err
	}

	reserved, err := s.reserveAll(ctx, event.ID, phase.ID, req.Tickets)
	if err != nil {
		monitoring.TrackPurchase(req.PaymentMethod, req.PaymentType, "no_stock")
		return nil, err
	}

	deliveryMode := event.DeliveryMode
	if deliveryMode == "" {
		deliveryMode = status.DeliveryAutomatic
	}

	tx := &models.TicketTransaction{
		UserID:              req.UserID,
		EventID:             event.ID,
		TicketItems:         items,
		TotalAmount:         total.InexactFloat64(),
		Currency:            req.Currency,
		PaymentMethod:       status.PaymentMethod(req.PaymentMethod),
		PaymentType:         status.PaymentType(req.PaymentType),
		PaymentStatus:       status.PaymentPending,
		DeliveryMode:        deliveryMode,
		DeliveryStatus:      status.DeliveryPending,
		DownloadAvailableAt: event.DownloadAvailableAt,
	}

	if tx.PaymentMethod == status.PaymentOnline {
		expires := now.Add(s.onlineTTL)
		tx.ExpiresAt = &expires
	}

	var plan *installment.Plan
	if tx.PaymentType == status.PaymentInstallment {
		plan, err = installment.BuildPlan(
			total,
			decimal.NewFromFloat(req.ReservationFee),
			req.Installments,
			now,
			firstOfNextMonth(now),
		)
		if err != nil {
			s.releaseAll(ctx, event.ID, phase.ID, reserved)
			return nil, invalid("plan de cuotas inválido: %v", err)
		}
	}

	transactionID, err := s.store.CreateTransaction(ctx, tx, plan)
	if err != nil {
		// Compensate the reservation; the store batch already rolled back.
		s.releaseAll(ctx, event.ID, phase.ID, reserved)
		monitoring.TrackPurchase(req.PaymentMethod, req.PaymentType, "store_error")
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	monitoring.TrackPurchase(req.PaymentMethod, req.PaymentType, "created")

	result := &PurchaseResult{TransactionID: transactionID}
	if tx.PaymentMethod == status.PaymentOnline {
		result.PaymentURL = fmt.Sprintf("/checkout/pay/%s", transactionID)
	} else {
		result.Message = "Compra registrada. Sube tu comprobante de transferencia para confirmar el pago."
		result.NextSteps = "upload_proof"

		if err := s.notify.NotifyAdmins(ctx, &models.Notification{
			Title:   "Nueva compra offline",
			Body:    fmt.Sprintf("Transacción %s en espera de comprobante (%s %s)", transactionID, req.Currency, total.String()),
			Type:    models.NotificationAdminAction,
			OrderID: transactionID,
		}); err != nil {
			slog.Error("admin fan-out failed", "transaction_id", transactionID, "error", err)
		}
	}

	return result, nil
}

func (s *Service) validate(req *PurchaseRequest) error {
	switch {
	case req.UserID == "":
		return invalid("falta el usuario")
	case req.EventID == "":
		return invalid("falta el evento")
	case len(req.Tickets) == 0:
		return invalid("faltan las entradas")
	case req.Currency == "":
		return invalid("falta la moneda")
	}

	if m := status.PaymentMethod(req.PaymentMethod); m != status.PaymentOnline && m != status.PaymentOffline {
		return invalid("método de pago desconocido: %q", req.PaymentMethod)
	}
	if t := status.PaymentType(req.PaymentType); t != status.PaymentFull && t != status.PaymentInstallment {
		return invalid("tipo de pago desconocido: %q", req.PaymentType)
	}

	for _, t := range req.Tickets {
		if t.ZoneID == "" || t.Quantity <= 0 {
			return invalid("entrada inválida para la zona %q", t.ZoneID)
		}
	}

	return nil
}

// priceItems resolves unit prices from the current sales phase and checks
// the client-submitted total against the server-side sum.
func (s *Service) priceItems(event *models.Event, phase *models.SalesPhase, req *PurchaseRequest) ([]models.TicketItem, decimal.Decimal, error) {
	items := make([]models.TicketItem, 0, len(req.Tickets))
	total := decimal.Zero

	for _, t := range req.Tickets {
		price, ok := phase.PriceFor(t.ZoneID)
		if !ok {
			return nil, decimal.Zero, invalid("la zona %q no está a la venta en la fase actual", t.ZoneID)
		}

		unit := decimal.NewFromFloat(price.Price)
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(t.Quantity))))

		items = append(items, models.TicketItem{
			ZoneID:    t.ZoneID,
			PhaseID:   phase.ID,
			Quantity:  t.Quantity,
			UnitPrice: price.Price,
		})
	}

	if !total.Equal(decimal.NewFromFloat(req.TotalAmount)) {
		return nil, decimal.Zero, invalid("el total no coincide con los precios vigentes")
	}

	return items, total, nil
}

func (s *Service) reserveAll(ctx context.Context, eventID, phaseID string, tickets []TicketSelection) ([]TicketSelection, error) {
	reserved := make([]TicketSelection, 0, len(tickets))
	for _, t := range tickets {
		if err := s.stock.Reserve(ctx, eventID, phaseID, t.ZoneID, t.Quantity); err != nil {
			s.releaseAll(ctx, eventID, phaseID, reserved)
			return nil, err
		}
		reserved = append(reserved, t)
	}
	return reserved, nil
}

func (s *Service) releaseAll(ctx context.Context, eventID, phaseID string, reserved []TicketSelection) {
	for _, t := range reserved {
		if err := s.stock.Release(ctx, eventID, phaseID, t.ZoneID, t.Quantity); err != nil {
			slog.Error("stock release failed", "event_id", eventID, "zone_id", t.ZoneID, "error", err)
		}
	}
}

func firstOfNextMonth(now time.Time) time.Time {
	year, month, _ := now.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
}
