package ticketing

import (
	"context"
	"errors"
	"time"

	"ravehub/internal/status"
	"ravehub/models"
)

var ErrNotOwner = errors.New("ticket: transaction belongs to another user")

// Download authorizes a ticket download: the requester must own the
// transaction and the delivery gate must be open. On the first successful
// download the transaction is marked delivered.
func (s *Service) Download(ctx context.Context, transactionID, userID string) (*models.TicketTransaction, error) {
	tx, err := s.store.FindTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, ErrNotOwner
	}

	if !tx.Downloadable(s.now()) {
		return nil, status.ErrDownloadNotReady
	}

	if err := s.store.MarkDelivered(ctx, transactionID); err != nil {
		return nil, err
	}
	return tx, nil
}

// ListTransactions returns the buyer's visible transactions; expired
// pending offline purchases past the grace window are hidden.
func (s *Service) ListTransactions(ctx context.Context, userID string) ([]*models.TicketTransaction, error) {
	return s.store.ListUserTransactions(ctx, userID, s.grace)
}

// DownloadAvailableIn reports how long until an automatic-delivery
// download opens; zero when it is already open or never scheduled.
func (s *Service) DownloadAvailableIn(tx *models.TicketTransaction) time.Duration {
	if tx.DownloadAvailableAt == nil {
		return 0
	}
	if wait := tx.DownloadAvailableAt.Sub(s.now()); wait > 0 {
		return wait
	}
	return 0
}
