// Package store is the typed accessor over the PocketBase collections.
// Services depend on narrow interfaces of it; handlers construct it from
// the app instance.
package store

import (
	"context"
	"fmt"

	"github.com/pocketbase/pocketbase/core"

	"ravehub/internal/status"
	"ravehub/models"
)

const (
	CollectionEvents        = "events"
	CollectionDJs           = "djs"
	CollectionTransactions  = "ticket_transactions"
	CollectionInstallments  = "payment_installments"
	CollectionOrders        = "orders"
	CollectionNotifications = "notifications"
	CollectionBlogPosts     = "blog_posts"
	CollectionBlogComments  = "blog_comments"
	CollectionUsers         = "users"
)

type Store struct {
	app core.App
}

func New(app core.App) *Store {
	return &Store{app: app}
}

// FindEvent loads an event by id.
func (s *Store) FindEvent(ctx context.Context, id string) (*models.Event, error) {
	record, err := s.app.FindRecordById(CollectionEvents, id)
	if err != nil {
		return nil, status.ErrEventNotFound
	}
	return eventFromRecord(record)
}

// FindPublishedEvent loads an event and verifies it is open for sale.
func (s *Store) FindPublishedEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.FindEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Status != status.EventPublished {
		return nil, status.ErrEventNotPublished
	}
	return event, nil
}

// ListPublishedEvents returns published events, optionally filtered by
// country, newest start date first.
func (s *Store) ListPublishedEvents(ctx context.Context, country string, limit int) ([]*models.Event, error) {
	filter := "status = {:status}"
	params := map[string]any{"status": string(status.EventPublished)}
	if country != "" {
		filter += " && country = {:country}"
		params["country"] = country
	}

	records, err := s.app.FindRecordsByFilter(CollectionEvents, filter, "-start_at", limit, 0, params)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]*models.Event, 0, len(records))
	for _, r := range records {
		event, err := eventFromRecord(r)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// ListEventDJs resolves the DJ lineup of an event.
func (s *Store) ListEventDJs(ctx context.Context, event *models.Event) ([]*models.DJ, error) {
	djs := make([]*models.DJ, 0, len(event.DJIDs))
	for _, id := range event.DJIDs {
		record, err := s.app.FindRecordById(CollectionDJs, id)
		if err != nil {
			continue // lineup entries may be removed independently
		}
		djs = append(djs, &models.DJ{
			ID:      record.Id,
			Name:    record.GetString("name"),
			Genre:   record.GetString("genre"),
			Country: record.GetString("country"),
			Bio:     record.GetString("bio"),
		})
	}
	return djs, nil
}

// ListAdminUserIDs returns the ids of every user with the admin role.
func (s *Store) ListAdminUserIDs(ctx context.Context) ([]string, error) {
	records, err := s.app.FindRecordsByFilter(CollectionUsers, "role = {:role}", "", 0, 0,
		map[string]any{"role": "admin"})
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.Id)
	}
	return ids, nil
}

// UserDisplayName returns a human label for a user id, used when joining
// review queue entries for display.
func (s *Store) UserDisplayName(ctx context.Context, userID string) string {
	record, err := s.app.FindRecordById(CollectionUsers, userID)
	if err != nil {
		return userID
	}
	if name := record.GetString("name"); name != "" {
		return name
	}
	return record.GetString("email")
}

func eventFromRecord(r *core.Record) (*models.Event, error) {
	event := &models.Event{
		ID:          r.Id,
		Name:        r.GetString("name"),
		Slug:        r.GetString("slug"),
		Description: r.GetString("description"),
		Country:     r.GetString("country"),
		City:        r.GetString("city"),
		Venue:       r.GetString("venue"),
		StartAt:     r.GetDateTime("start_at").Time(),
		EndAt:       r.GetDateTime("end_at").Time(),
		Status:      status.EventStatus(r.GetString("status")),
		DJIDs:       r.GetStringSlice("djs"),
	}

	event.DeliveryMode = status.DeliveryMode(r.GetString("ticket_delivery_mode"))
	if event.DeliveryMode == "" {
		event.DeliveryMode = status.DeliveryAutomatic
	}
	if dl := r.GetDateTime("download_available_at"); !dl.IsZero() {
		t := dl.Time()
		event.DownloadAvailableAt = &t
	}

	if err := r.UnmarshalJSONField("zones", &event.Zones); err != nil {
		return nil, fmt.Errorf("event %s: decode zones: %w", r.Id, err)
	}
	if err := r.UnmarshalJSONField("sales_phases", &event.SalesPhases); err != nil {
		return nil, fmt.Errorf("event %s: decode sales phases: %w", r.Id, err)
	}

	return event, nil
}
