// services/rate_limit.go
package services

import (
	goContext "context"
	"fmt"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/serenity-path/aura_api/shared"
)

// RateLimitService implements fixed-window request limits backed by redis.
// Redis being down fails open; dropping legitimate traffic because the
// limiter store hiccuped is worse than briefly not limiting.
type RateLimitService struct {
	context.DefaultService

	redisSvc *RedisService
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// Middleware limits requests per key within a window. Authenticated requests
// are keyed by user id, anonymous ones by client IP.
func (svc *RateLimitService) Middleware(name string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := svc.windowKey(name, clientKey(c), window)

		ctx := goContext.Background()
		count, err := svc.redisSvc.Increment(ctx, key)
		if err != nil {
			log.WithError(err).Warn("Rate limit check failed, allowing request")
			return c.Next()
		}

		if count == 1 {
			if err := svc.redisSvc.Expire(ctx, key, window); err != nil {
				log.WithError(err).Warn("Failed to set rate limit window expiry")
			}
		}

		if count > int64(limit) {
			ttl, _ := svc.redisSvc.TTL(ctx, key)
			c.Set("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
			return shared.ResponseJSON(c, fiber.StatusTooManyRequests, "Too many requests", nil)
		}

		return c.Next()
	}
}

func clientKey(c *fiber.Ctx) string {
	if userID, ok := c.Locals(shared.UserID).(string); ok && userID != "" {
		return userID
	}
	return c.IP()
}

func (svc *RateLimitService) windowKey(name, client string, window time.Duration) string {
	bucket := time.Now().Unix() / int64(window.Seconds())
	return fmt.Sprintf("ratelimit:%s:%s:%d", name, client, bucket)
}
