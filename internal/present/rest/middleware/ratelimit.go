package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/hinagata/saas-admin/internal/present/rest/presenter"
)

// Fixed-window counter: first INCR in a window arms the expiry.
var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// LoginRateLimiter throttles credential guessing per client IP with a
// fixed window in redis, shared across instances.
type LoginRateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewLoginRateLimiter(rdb *redis.Client, limit int, window time.Duration) *LoginRateLimiter {
	return &LoginRateLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
	}
}

func (l *LoginRateLimiter) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if l.rdb == nil || l.limit <= 0 {
			return next(c)
		}

		ctx := c.Request().Context()
		key := "login-rate:" + c.RealIP()

		current, err := rateLimitScript.Run(ctx, l.rdb, []string{key}, l.window.Milliseconds()).Int64()
		if err != nil {
			// Availability over strictness when redis is down.
			slog.WarnContext(
				ctx, "rate limiter unavailable",
				slog.String("error", err.Error()),
				slog.String("module", "ratelimit"),
			)
			return next(c)
		}

		if current > int64(l.limit) {
			return presenter.TooManyRequests(c)
		}
		return next(c)
	}
}
