// Package notify is the notification side-channel: write-once documents
// consumed by the bell UI, with best-effort realtime push on top. Writes
// are fire-and-forget; a failed push is logged and dropped, never
// retried.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"ravehub/models"
	"ravehub/monitoring"
)

type Store interface {
	CreateNotification(ctx context.Context, n *models.Notification) (string, error)
	ListAdminUserIDs(ctx context.Context) ([]string, error)
}

// Publisher pushes a realtime message to a channel.
type Publisher interface {
	Publish(channel string, message map[string]any) error
}

type Service struct {
	store     Store
	publisher Publisher
}

func NewService(store Store, publisher Publisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
	}
}

// NotifyUser writes one notification document and pushes it to the
// user's realtime channel.
func (s *Service) NotifyUser(ctx context.Context, n *models.Notification) error {
	id, err := s.store.CreateNotification(ctx, n)
	if err != nil {
		monitoring.TrackNotification("store", "error")
		return fmt.Errorf("notify user %s: %w", n.UserID, err)
	}
	monitoring.TrackNotification("store", "ok")

	s.push(n.UserID, map[string]any{
		"type":            n.Type,
		"notification_id": id,
		"title":           n.Title,
	})
	return nil
}

// NotifyAdmins fans one notification out to every admin. Individual write
// failures are logged and skipped so one bad document does not starve the
// rest of the fan-out.
func (s *Service) NotifyAdmins(ctx context.Context, n *models.Notification) error {
	adminIDs, err := s.store.ListAdminUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("notify admins: %w", err)
	}

	for _, adminID := range adminIDs {
		perAdmin := *n
		perAdmin.UserID = adminID
		if err := s.NotifyUser(ctx, &perAdmin); err != nil {
			slog.Error("admin notification failed", "admin_id", adminID, "error", err)
		}
	}
	return nil
}

func (s *Service) push(userID string, message map[string]any) {
	if s.publisher == nil {
		return
	}

	channel := fmt.Sprintf("user-%s", userID)
	if err := s.publisher.Publish(channel, message); err != nil {
		slog.Error("realtime push failed", "channel", channel, "error", err)
		monitoring.TrackNotification("push", "error")
		return
	}
	monitoring.TrackNotification("push", "ok")
}
