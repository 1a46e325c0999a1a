package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/mchic/setlist/pkg/response"
)

type RateLimiter struct {
	redis  *redis.Client
	logger *log.Logger
}

// NewRateLimiter returns a limiter; a nil client disables limiting.
func NewRateLimiter(redisClient *redis.Client, logger *log.Logger) *RateLimiter {
	return &RateLimiter{redis: redisClient, logger: logger}
}

// Limit creates a rate limiting middleware keyed by client IP
func (rl *RateLimiter) Limit(keyPrefix string, maxRequests int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl.redis == nil || maxRequests <= 0 {
			return c.Next()
		}

		key := fmt.Sprintf("setlist:ratelimit:%s:%s", keyPrefix, c.IP())
		ctx := c.UserContext()

		count, err := rl.redis.Incr(ctx, key).Result()
		if err != nil {
			// If Redis fails, allow the request but log the error
			rl.logger.Warn("rate limiter unavailable", "err", err)
			return c.Next()
		}

		// Set expiration on first request
		if count == 1 {
			rl.expire(ctx, key, window)
		}

		if count > int64(maxRequests) {
			ttl, err := rl.redis.TTL(ctx, key).Result()
			if err == nil && ttl == -1 {
				// the first Expire failed; without a TTL the key would block forever
				rl.expire(ctx, key, window)
				ttl = window
			}
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(ttl.Seconds())))
			return response.RateLimited(c)
		}

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequests))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", maxRequests-int(count)))

		return c.Next()
	}
}

func (rl *RateLimiter) expire(ctx context.Context, key string, window time.Duration) {
	if err := rl.redis.Expire(ctx, key, window).Err(); err != nil {
		rl.logger.Warn("failed to set rate limit window", "key", key, "err", err)
	}
}

// LoginLimit returns a rate limiter for the login endpoint
func (rl *RateLimiter) LoginLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("login", maxPerMin, time.Minute)
}
