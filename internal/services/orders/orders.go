// Package orders owns the merchandise order lifecycle: checkout, gateway
// preference creation, and webhook-driven status reconciliation.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ravehub/internal/services/gateway/mercadopago"
	"ravehub/internal/status"
	"ravehub/models"
	"ravehub/utils"
)

type Store interface {
	CreateOrder(ctx context.Context, order *models.Order) (string, error)
	FindOrder(ctx context.Context, id string) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]*models.Order, error)
	ApplyOrderTransition(ctx context.Context, order *models.Order, change models.StatusChange, details *models.PaymentDetails) error
}

type Gateway interface {
	GetPayment(ctx context.Context, paymentID string) (*mercadopago.Payment, error)
	CreatePreference(ctx context.Context, orderID string, items []mercadopago.PreferenceItem, payer mercadopago.PreferencePayer) (*mercadopago.Preference, error)
}

type Notifier interface {
	NotifyUser(ctx context.Context, n *models.Notification) error
}

type Service struct {
	store   Store
	gateway Gateway
	notify  Notifier

	now func() time.Time
}

func NewService(store Store, gateway Gateway, notify Notifier) *Service {
	return &Service{
		store:   store,
		gateway: gateway,
		notify:  notify,
		now:     time.Now,
	}
}

type CheckoutRequest struct {
	UserID   string
	Items    []models.OrderItem `json:"items"`
	Currency string             `json:"currency"`
}

// Checkout creates a pending order with its audit log seeded.
func (s *Service) Checkout(ctx context.Context, req *CheckoutRequest) (*models.Order, error) {
	if req.UserID == "" || len(req.Items) == 0 || req.Currency == "" {
		return nil, fmt.Errorf("checkout: missing required fields")
	}

	total := decimal.Zero
	for _, item := range req.Items {
		if item.Quantity <= 0 || item.UnitPrice < 0 {
			return nil, fmt.Errorf("checkout: invalid item %q", item.ProductID)
		}
		total = total.Add(decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	reference, err := utils.GenerateReference("ORD")
	if err != nil {
		return nil, fmt.Errorf("order reference: %w", err)
	}

	order := &models.Order{
		Reference:     reference,
		UserID:        req.UserID,
		Items:         req.Items,
		Status:        status.OrderPending,
		PaymentStatus: status.PaymentPending,
		PaymentMethod: "mercadopago",
		TotalAmount:   total.InexactFloat64(),
		Currency:      req.Currency,
		StatusHistory: []models.StatusChange{
			{
				Status:    string(status.OrderPending),
				Timestamp: s.now(),
				UpdatedBy: req.UserID,
				Notes:     "order created",
			},
		},
	}

	id, err := s.store.CreateOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	order.ID = id
	return order, nil
}

type PreferenceRequest struct {
	OrderID    string `json:"order_id"`
	BuyerEmail string `json:"buyer_email"`
	BuyerName  string `json:"buyer_name"`
	BuyerPhone string `json:"buyer_phone"`
}

type PreferenceResult struct {
	PreferenceID     string `json:"preference_id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// CreatePreference registers a gateway checkout preference for an
// existing order. The order id travels as the external reference so the
// webhook can find its way back.
func (s *Service) CreatePreference(ctx context.Context, req *PreferenceRequest) (*PreferenceResult, error) {
	if req.OrderID == "" || req.BuyerEmail == "" {
		return nil, fmt.Errorf("preference: missing required fields")
	}

	order, err := s.store.FindOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	items := make([]mercadopago.PreferenceItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, mercadopago.PreferenceItem{
			ID:         item.ProductID,
			Title:      item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  decimal.NewFromFloat(item.UnitPrice),
			CurrencyID: order.Currency,
		})
	}

	payer := mercadopago.PreferencePayer{
		Name:  req.BuyerName,
		Email: req.BuyerEmail,
	}
	if req.BuyerPhone != "" {
		payer.Phone = &mercadopago.PreferencePhone{Number: req.BuyerPhone}
	}

	pref, err := s.gateway.CreatePreference(ctx, order.ID, items, payer)
	if err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}

	return &PreferenceResult{
		PreferenceID:     pref.ID,
		InitPoint:        pref.InitPoint,
		SandboxInitPoint: pref.SandboxInitPoint,
	}, nil
}

// ListOrders returns the buyer's orders.
func (s *Service) ListOrders(ctx context.Context, userID string) ([]*models.Order, error) {
	return s.store.ListUserOrders(ctx, userID)
}
