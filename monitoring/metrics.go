package monitoring

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	purchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_purchases_total",
			Help: "Ticket purchase attempts by payment method, type and outcome",
		},
		[]string{"payment_method", "payment_type", "status"},
	)

	webhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
			Help: "Gateway webhook deliveries by provider status and outcome",
		},
		[]string{"provider_status", "outcome"},
	)

	installmentReviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "installment_reviews_total",
			Help: "Admin installment review decisions",
		},
		[]string{"decision"},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification deliveries by channel and outcome",
		},
		[]string{"channel", "status"},
	)

	stockRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ticket_stock_remaining",
			Help: "Remaining ticket stock per event zone counter",
		},
		[]string{"event_id", "phase_id", "zone_id"},
	)

	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Duration of MercadoPago API calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 8),
		},
		[]string{"operation"},
	)
)

// TrackPurchase records one purchase attempt.
func TrackPurchase(method, paymentType, status string) {
	purchasesTotal.WithLabelValues(method, paymentType, status).Inc()
}

// TrackWebhookEvent records one webhook delivery.
func TrackWebhookEvent(providerStatus, outcome string) {
	webhookEventsTotal.WithLabelValues(providerStatus, outcome).Inc()
}

// TrackReview records one admin review decision.
func TrackReview(decision string) {
	installmentReviewsTotal.WithLabelValues(decision).Inc()
}

// TrackNotification records one notification delivery attempt.
func TrackNotification(channel, status string) {
	notificationsTotal.WithLabelValues(channel, status).Inc()
}

// TrackGatewayCall records the duration of one gateway API call.
func TrackGatewayCall(operation string, duration time.Duration) {
	gatewayRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// Monitor periodically mirrors the Redis stock counters into gauges.
type Monitor struct {
	redis *redis.Client
}

func NewMonitor(redisClient *redis.Client) *Monitor {
	return &Monitor{redis: redisClient}
}

// Collect runs until ctx is cancelled.
func (m *Monitor) Collect(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collectStockMetrics(ctx)
		}
	}
}

func (m *Monitor) collectStockMetrics(ctx context.Context) {
	keys, err := m.redis.Keys(ctx, "stock:*").Result()
	if err != nil {
		return
	}

	for _, key := range keys {
		// stock:{eventID}:{phaseID}:{zoneID}
		eventID, phaseID, zoneID, ok := splitStockKey(key)
		if !ok {
			continue
		}
		remaining, err := m.redis.Get(ctx, key).Int()
		if err != nil {
			continue
		}
		stockRemaining.WithLabelValues(eventID, phaseID, zoneID).Set(float64(remaining))
	}
}

func splitStockKey(key string) (eventID, phaseID, zoneID string, ok bool) {
	parts := strings.SplitN(strings.TrimPrefix(key, "stock:"), ":", 3)
	if len(parts) != 3 || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}
