package ticketing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"ravehub/internal/status"
	"ravehub/models"
)

// reserveScript decrements a stock counter only when enough stock
// remains. Returns -1 when the counter does not exist, 0 when stock is
// insufficient, 1 on success.
var reserveScript = redis.NewScript(`
local stock = redis.call('GET', KEYS[1])
if not stock then
	return -1
end
if tonumber(stock) < tonumber(ARGV[1]) then
	return 0
end
redis.call('DECRBY', KEYS[1], ARGV[1])
return 1
`)

// Stock tracks per-zone ticket counters in Redis. The conditional
// decrement is atomic, so two concurrent purchases cannot both take the
// last ticket.
type Stock struct {
	Redis *redis.Client
}

func NewStock(redisClient *redis.Client) *Stock {
	return &Stock{Redis: redisClient}
}

func stockKey(eventID, phaseID, zoneID string) string {
	return fmt.Sprintf("stock:%s:%s:%s", eventID, phaseID, zoneID)
}

// Reserve atomically takes qty tickets from a zone counter.
func (s *Stock) Reserve(ctx context.Context, eventID, phaseID, zoneID string, qty int) error {
	key := stockKey(eventID, phaseID, zoneID)

	result, err := reserveScript.Run(ctx, s.Redis, []string{key}, qty).Int()
	if err != nil {
		return fmt.Errorf("reserve stock %s: %w", key, err)
	}

	switch result {
	case -1:
		return status.ErrStockNotTracked
	case 0:
		return status.ErrInsufficientStock
	}
	return nil
}

// Release returns qty tickets to a zone counter, compensating a reserve
// whose purchase failed afterwards.
func (s *Stock) Release(ctx context.Context, eventID, phaseID, zoneID string, qty int) error {
	key := stockKey(eventID, phaseID, zoneID)
	if err := s.Redis.IncrBy(ctx, key, int64(qty)).Err(); err != nil {
		return fmt.Errorf("release stock %s: %w", key, err)
	}
	return nil
}

// Seed initializes a counter if absent. SETNX keeps already-running
// counters untouched so reseeding never resurrects sold stock.
func (s *Stock) Seed(ctx context.Context, eventID, phaseID, zoneID string, stock int) error {
	key := stockKey(eventID, phaseID, zoneID)
	if err := s.Redis.SetNX(ctx, key, stock, 0).Err(); err != nil {
		return fmt.Errorf("seed stock %s: %w", key, err)
	}
	return nil
}

type eventLister interface {
	ListPublishedEvents(ctx context.Context, country string, limit int) ([]*models.Event, error)
}

// SeedEvents seeds counters for every zone of every sales phase of the
// published events.
func (s *Stock) SeedEvents(ctx context.Context, lister eventLister) error {
	events, err := lister.ListPublishedEvents(ctx, "", 0)
	if err != nil {
		return err
	}

	for _, event := range events {
		for _, phase := range event.SalesPhases {
			for _, price := range phase.Prices {
				if err := s.Seed(ctx, event.ID, phase.ID, price.ZoneID, price.Stock); err != nil {
					slog.Error("stock seed failed", "event_id", event.ID, "zone_id", price.ZoneID, "error", err)
				}
			}
		}
	}
	return nil
}

// SyncLoop reseeds counters periodically so newly published events pick
// up stock tracking without a restart.
func (s *Stock) SyncLoop(ctx context.Context, lister eventLister, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SeedEvents(ctx, lister); err != nil {
				slog.Error("stock sync failed", "error", err)
			}
		}
	}
}
