package services

import (
	"fmt"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"

	"github.com/roamline/live_api/shared"
)

// RateLimitMiddleware throttles the high-frequency engine endpoints (location
// reports, check-ins) with a fixed-window counter in redis, keyed by user and
// endpoint type.
type RateLimitMiddleware struct {
	context.DefaultService

	configs  map[string]rateLimitConfig
	redisSvc *RedisService
}

type rateLimitConfig struct {
	MaxRequests int64
	WindowSize  time.Duration
}

const RATE_LIMIT_MIDDLEWARE_SVC = "rate_limit"

func (svc *RateLimitMiddleware) Id() string {
	return RATE_LIMIT_MIDDLEWARE_SVC
}

func (svc *RateLimitMiddleware) Configure(ctx *context.Context) error {
	svc.redisSvc = ctx.Service(REDIS_SVC).(*RedisService)

	svc.configs = map[string]rateLimitConfig{
		// Location reports arrive on a timer from each client; anything past
		// one per second is a misbehaving client.
		"location_report": {
			MaxRequests: 60,
			WindowSize:  time.Minute,
		},

		// Check-in attempts are user-initiated; a handful per minute is plenty.
		"checkin": {
			MaxRequests: 10,
			WindowSize:  time.Minute,
		},

		// Photo uploads are large; keep the window tight.
		"photo_upload": {
			MaxRequests: 5,
			WindowSize:  time.Minute,
		},
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitMiddleware) Start() error {
	return nil
}

// Limit returns a handler enforcing the named endpoint's limits per user.
func (svc *RateLimitMiddleware) Limit(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		config, exists := svc.configs[endpointType]
		if !exists {
			return c.Next()
		}

		identifier, _ := c.Locals(shared.UserID).(string)
		if identifier == "" {
			identifier = c.IP()
		}

		key := fmt.Sprintf("rate_limit:%s:%s", endpointType, identifier)

		count, err := svc.redisSvc.Increment(c.Context(), key)
		if err != nil {
			// Fail open: rate limiting must not take the engine down with it.
			return c.Next()
		}
		if count == 1 {
			_ = svc.redisSvc.Expire(c.Context(), key, config.WindowSize)
		}

		if count > config.MaxRequests {
			return shared.ResponseJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", nil)
		}

		return c.Next()
	}
}
