package api

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const (
	defaultRateLimitRPS   = 20
	defaultRateLimitBurst = 40
	clientLimiterIdleTTL  = 10 * time.Minute
)

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client address.
type clientLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*clientBucket
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	if rps <= 0 {
		rps = defaultRateLimitRPS
	}
	if burst < 1 {
		burst = defaultRateLimitBurst
	}
	return &clientLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		buckets: make(map[string]*clientBucket),
	}
}

func (limiter *clientLimiter) allow(key string, now time.Time) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	bucket, ok := limiter.buckets[key]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(limiter.limit, limiter.burst)}
		limiter.buckets[key] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter.AllowN(now, 1)
}

func (limiter *clientLimiter) prune(now time.Time, idle time.Duration) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	for key, bucket := range limiter.buckets {
		if now.Sub(bucket.lastSeen) > idle {
			delete(limiter.buckets, key)
		}
	}
}

func (limiter *clientLimiter) size() int {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	return len(limiter.buckets)
}

func (handler *Handler) RateLimit(c *fiber.Ctx) error {
	if !handler.clientLimiter.allow(requestLimiterKey(c), handler.now()) {
		return apiError(c, fiber.StatusTooManyRequests, "too many requests")
	}
	return c.Next()
}
