package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"ravehub/internal/services/installment"
	"ravehub/internal/status"
	"ravehub/models"
)

// CreateTransaction persists a new ticket transaction and, when plan is
// non-nil, its full installment schedule. The batch runs inside one store
// transaction so a partial failure rolls everything back.
func (s *Store) CreateTransaction(ctx context.Context, tx *models.TicketTransaction, plan *installment.Plan) (string, error) {
	var transactionID string

	err := s.app.RunInTransaction(func(txApp core.App) error {
		collection, err := txApp.FindCollectionByNameOrId(CollectionTransactions)
		if err != nil {
			return err
		}

		record := core.NewRecord(collection)
		record.Set("user_id", tx.UserID)
		record.Set("event_id", tx.EventID)
		record.Set("ticket_items", tx.TicketItems)
		record.Set("total_amount", tx.TotalAmount)
		record.Set("currency", tx.Currency)
		record.Set("payment_method", string(tx.PaymentMethod))
		record.Set("payment_type", string(tx.PaymentType))
		record.Set("payment_status", string(tx.PaymentStatus))
		record.Set("delivery_mode", string(tx.DeliveryMode))
		record.Set("delivery_status", string(tx.DeliveryStatus))
		record.Set("is_courtesy", tx.IsCourtesy)
		if tx.DownloadAvailableAt != nil {
			record.Set("download_available_at", *tx.DownloadAvailableAt)
		}
		if tx.ExpiresAt != nil {
			record.Set("expires_at", *tx.ExpiresAt)
		}

		if err := txApp.Save(record); err != nil {
			return fmt.Errorf("save transaction: %w", err)
		}
		transactionID = record.Id

		if plan == nil {
			return nil
		}

		installments, err := txApp.FindCollectionByNameOrId(CollectionInstallments)
		if err != nil {
			return err
		}

		for _, in := range plan.All() {
			ir := core.NewRecord(installments)
			ir.Set("transaction_id", transactionID)
			ir.Set("installment_number", in.Number)
			ir.Set("amount", in.Amount.InexactFloat64())
			ir.Set("currency", tx.Currency)
			ir.Set("due_date", in.DueDate)
			ir.Set("status", string(status.InstallmentPending))
			ir.Set("admin_approved", false)

			if err := txApp.Save(ir); err != nil {
				return fmt.Errorf("save installment %d: %w", in.Number, err)
			}
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return transactionID, nil
}

// FindTransaction loads a ticket transaction by id.
func (s *Store) FindTransaction(ctx context.Context, id string) (*models.TicketTransaction, error) {
	record, err := s.app.FindRecordById(CollectionTransactions, id)
	if err != nil {
		return nil, status.ErrTransactionNotFound
	}
	return transactionFromRecord(record)
}

// ListUserTransactions returns a buyer's transactions, newest first.
// Expired pending offline transactions past the grace window are filtered
// out, not deleted.
func (s *Store) ListUserTransactions(ctx context.Context, userID string, grace time.Duration) ([]*models.TicketTransaction, error) {
	records, err := s.app.FindRecordsByFilter(CollectionTransactions,
		"user_id = {:userId}", "-created", 100, 0,
		map[string]any{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	now := time.Now()
	result := make([]*models.TicketTransaction, 0, len(records))
	for _, r := range records {
		tx, err := transactionFromRecord(r)
		if err != nil {
			return nil, err
		}
		if tx.ExpiredFor(now, grace) {
			continue
		}
		result = append(result, tx)
	}
	return result, nil
}

// UpdateTransactionStatus persists a payment/delivery state change.
func (s *Store) UpdateTransactionStatus(ctx context.Context, id string, payment status.PaymentStatus, delivery status.DeliveryStatus) error {
	record, err := s.app.FindRecordById(CollectionTransactions, id)
	if err != nil {
		return status.ErrTransactionNotFound
	}

	record.Set("payment_status", string(payment))
	record.Set("delivery_status", string(delivery))
	return s.app.SaveWithContext(ctx, record)
}

// MarkDelivered records that tickets were handed to the buyer.
func (s *Store) MarkDelivered(ctx context.Context, id string) error {
	record, err := s.app.FindRecordById(CollectionTransactions, id)
	if err != nil {
		return status.ErrTransactionNotFound
	}

	record.Set("delivery_status", string(status.DeliveryDelivered))
	return s.app.SaveWithContext(ctx, record)
}

func transactionFromRecord(r *core.Record) (*models.TicketTransaction, error) {
	tx := &models.TicketTransaction{
		ID:             r.Id,
		UserID:         r.GetString("user_id"),
		EventID:        r.GetString("event_id"),
		TotalAmount:    r.GetFloat("total_amount"),
		Currency:       r.GetString("currency"),
		PaymentMethod:  status.PaymentMethod(r.GetString("payment_method")),
		PaymentType:    status.PaymentType(r.GetString("payment_type")),
		PaymentStatus:  status.PaymentStatus(r.GetString("payment_status")),
		DeliveryMode:   status.DeliveryMode(r.GetString("delivery_mode")),
		DeliveryStatus: status.DeliveryStatus(r.GetString("delivery_status")),
		IsCourtesy:     r.GetBool("is_courtesy"),
		CreatedAt:      r.GetDateTime("created").Time(),
		UpdatedAt:      r.GetDateTime("updated").Time(),
	}

	if err := r.UnmarshalJSONField("ticket_items", &tx.TicketItems); err != nil {
		return nil, fmt.Errorf("transaction %s: decode ticket items: %w", r.Id, err)
	}

	if dt := r.GetDateTime("download_available_at"); !dt.IsZero() {
		t := dt.Time()
		tx.DownloadAvailableAt = &t
	}
	if dt := r.GetDateTime("expires_at"); !dt.IsZero() {
		t := dt.Time()
		tx.ExpiresAt = &t
	}

	return tx, nil
}
