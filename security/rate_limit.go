package security

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis  *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		limit:  int64(limit),
		window: window,
	}
}

// PurchaseRateLimit caps checkout attempts per caller inside a rolling
// window. Counting is fail-open: a Redis outage must not block sales.
func (r *RateLimiter) PurchaseRateLimit() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		key := fmt.Sprintf("ratelimit:purchase:%s", r.identify(e))
		ctx := e.Request.Context()

		count, err := r.redis.Incr(ctx, key).Result()
		if err == nil {
			if count == 1 {
				r.redis.Expire(ctx, key, r.window)
			}
			if count > r.limit {
				return e.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "Demasiadas solicitudes. Intenta nuevamente en unos minutos.",
				})
			}
		}

		return e.Next()
	}
}

// identify keys the counter by user id when authenticated, falling back
// to the client IP.
func (r *RateLimiter) identify(e *core.RequestEvent) string {
	if e.Auth != nil {
		return "user:" + e.Auth.Id
	}
	return "ip:" + e.RealIP()
}
