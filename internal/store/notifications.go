package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/pocketbase/pocketbase/core"

	"ravehub/models"
)

// CreateNotification writes one notification document.
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) (string, error) {
	collection, err := s.app.FindCollectionByNameOrId(CollectionNotifications)
	if err != nil {
		return "", err
	}

	record := core.NewRecord(collection)
	record.Set("user_id", n.UserID)
	record.Set("title", n.Title)
	record.Set("body", n.Body)
	record.Set("type", n.Type)
	record.Set("order_id", n.OrderID)
	record.Set("read", false)

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return "", fmt.Errorf("save notification: %w", err)
	}
	return record.Id, nil
}

// ListUserNotifications returns a user's notifications, newest first.
func (s *Store) ListUserNotifications(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	records, err := s.app.FindRecordsByFilter(CollectionNotifications,
		"user_id = {:userId}", "-created", limit, 0,
		map[string]any{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	result := make([]*models.Notification, 0, len(records))
	for _, r := range records {
		result = append(result, notificationFromRecord(r))
	}
	return result, nil
}

// MarkNotificationRead toggles the read flag. Only the owner may toggle.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) error {
	record, err := s.app.FindRecordById(CollectionNotifications, id)
	if err != nil {
		return errors.New("notification not found")
	}
	if record.GetString("user_id") != userID {
		return errors.New("notification belongs to another user")
	}

	record.Set("read", true)
	return s.app.SaveWithContext(ctx, record)
}

// MarkAllNotificationsRead flags every unread notification of a user.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	records, err := s.app.FindRecordsByFilter(CollectionNotifications,
		"user_id = {:userId} && read = false", "", 0, 0,
		map[string]any{"userId": userID})
	if err != nil {
		return fmt.Errorf("list unread notifications: %w", err)
	}

	for _, r := range records {
		r.Set("read", true)
		if err := s.app.SaveWithContext(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func notificationFromRecord(r *core.Record) *models.Notification {
	return &models.Notification{
		ID:        r.Id,
		UserID:    r.GetString("user_id"),
		Title:     r.GetString("title"),
		Body:      r.GetString("body"),
		Type:      r.GetString("type"),
		OrderID:   r.GetString("order_id"),
		Read:      r.GetBool("read"),
		CreatedAt: r.GetDateTime("created").Time(),
	}
}
