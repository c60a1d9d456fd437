package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"ravehub/internal/status"
	"ravehub/models"
)

// CreateOrder persists a merchandise order with its audit log seeded with
// the initial pending entry.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) (string, error) {
	collection, err := s.app.FindCollectionByNameOrId(CollectionOrders)
	if err != nil {
		return "", err
	}

	record := core.NewRecord(collection)
	record.Set("user_id", order.UserID)
	record.Set("reference", order.Reference)
	record.Set("items", order.Items)
	record.Set("status", string(order.Status))
	record.Set("payment_status", string(order.PaymentStatus))
	record.Set("payment_method", order.PaymentMethod)
	record.Set("provider_status", order.ProviderStatus)
	record.Set("status_history", order.StatusHistory)
	record.Set("total_amount", order.TotalAmount)
	record.Set("currency", order.Currency)

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return "", fmt.Errorf("save order: %w", err)
	}
	return record.Id, nil
}

// FindOrder loads an order by id.
func (s *Store) FindOrder(ctx context.Context, id string) (*models.Order, error) {
	record, err := s.app.FindRecordById(CollectionOrders, id)
	if err != nil {
		return nil, status.ErrOrderNotFound
	}
	return orderFromRecord(record)
}

// ApplyOrderTransition persists a webhook-driven state change: the new
// statuses, the appended history entry, the raw provider status, and the
// payment snapshot when present.
func (s *Store) ApplyOrderTransition(ctx context.Context, order *models.Order, change models.StatusChange, details *models.PaymentDetails) error {
	record, err := s.app.FindRecordById(CollectionOrders, order.ID)
	if err != nil {
		return status.ErrOrderNotFound
	}

	order.StatusHistory = append(order.StatusHistory, change)
	order.UpdatedAt = time.Now()

	record.Set("status", string(order.Status))
	record.Set("payment_status", string(order.PaymentStatus))
	record.Set("provider_status", order.ProviderStatus)
	record.Set("status_history", order.StatusHistory)
	if details != nil {
		record.Set("payment_details", details)
	}

	return s.app.SaveWithContext(ctx, record)
}

// ListUserOrders returns a buyer's orders, newest first.
func (s *Store) ListUserOrders(ctx context.Context, userID string) ([]*models.Order, error) {
	records, err := s.app.FindRecordsByFilter(CollectionOrders,
		"user_id = {:userId}", "-created", 100, 0,
		map[string]any{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	result := make([]*models.Order, 0, len(records))
	for _, r := range records {
		order, err := orderFromRecord(r)
		if err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, nil
}

func orderFromRecord(r *core.Record) (*models.Order, error) {
	order := &models.Order{
		ID:             r.Id,
		Reference:      r.GetString("reference"),
		UserID:         r.GetString("user_id"),
		Status:         status.OrderStatus(r.GetString("status")),
		PaymentStatus:  status.PaymentStatus(r.GetString("payment_status")),
		PaymentMethod:  r.GetString("payment_method"),
		ProviderStatus: r.GetString("provider_status"),
		TotalAmount:    r.GetFloat("total_amount"),
		Currency:       r.GetString("currency"),
		CreatedAt:      r.GetDateTime("created").Time(),
		UpdatedAt:      r.GetDateTime("updated").Time(),
	}

	if err := r.UnmarshalJSONField("items", &order.Items); err != nil {
		return nil, fmt.Errorf("order %s: decode items: %w", r.Id, err)
	}
	if err := r.UnmarshalJSONField("status_history", &order.StatusHistory); err != nil {
		return nil, fmt.Errorf("order %s: decode status history: %w", r.Id, err)
	}
	if raw := r.GetString("payment_details"); raw != "" {
		if err := r.UnmarshalJSONField("payment_details", &order.PaymentDetails); err != nil {
			return nil, fmt.Errorf("order %s: decode payment details: %w", r.Id, err)
		}
	}

	return order, nil
}
