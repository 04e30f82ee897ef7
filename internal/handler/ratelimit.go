package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck/internal/repository"
)

// LoginRateLimiter throttles login attempts per client IP using a
// counter in the cache. It fails open: if the cache is unreachable the
// request proceeds, because losing logins on a Redis outage is worse
// than briefly losing the throttle.
type LoginRateLimiter struct {
	cache  repository.Cache
	limit  int64
	window time.Duration
	logger zerolog.Logger
}

// NewLoginRateLimiter creates a rate limiter allowing limit attempts
// per window for each client IP.
func NewLoginRateLimiter(cache repository.Cache, limit int, window time.Duration, logger zerolog.Logger) *LoginRateLimiter {
	return &LoginRateLimiter{
		cache:  cache,
		limit:  int64(limit),
		window: window,
		logger: logger.With().Str("component", "ratelimit").Logger(),
	}
}

// Middleware wraps a handler with the login throttle.
func (rl *LoginRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		key := fmt.Sprintf("ratelimit:login:%s", ip)

		count, err := rl.cache.Increment(r.Context(), key, 1)
		if err != nil {
			if !errors.Is(err, repository.ErrCacheUnavailable) {
				rl.logger.Warn().Err(err).Msg("rate limit counter failed")
			}
			next.ServeHTTP(w, r)
			return
		}

		// First attempt in a window starts the expiry clock.
		if count == 1 {
			if err := rl.cache.Expire(r.Context(), key, rl.window); err != nil {
				rl.logger.Warn().Err(err).Msg("rate limit expiry failed")
			}
		}

		if count > rl.limit {
			rl.logger.Warn().Str("ip", ip).Int64("count", count).Msg("login rate limit exceeded")
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many login attempts, try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}
