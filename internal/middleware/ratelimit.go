package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewVoteRateLimiter returns a middleware enforcing a fixed-window per-user
// limit on vote actions, backed by Redis INCR with a one-minute TTL.
// The window is approximate — a fixed window admits up to 2x the limit across
// a window boundary — which is acceptable for vote spam control.
//
// When client is nil (Redis not configured) the limiter is disabled and all
// requests pass through. Redis errors fail open: losing rate limiting beats
// refusing votes.
func NewVoteRateLimiter(client *redis.Client, perMinute int, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if client == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserID(r.Context())
			if !ok {
				// Anonymous requests are rejected downstream by RequireUser.
				next.ServeHTTP(w, r)
				return
			}

			key := fmt.Sprintf("ratelimit:vote:%s:%d", userID, time.Now().Unix()/60)
			count, err := client.Incr(r.Context(), key).Result()
			if err != nil {
				log.WarnContext(r.Context(), "rate limiter unavailable, failing open", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				// First hit in this window owns setting the TTL.
				if err := client.Expire(r.Context(), key, time.Minute).Err(); err != nil {
					log.WarnContext(r.Context(), "rate limiter expire failed", "error", err)
				}
			}

			if count > int64(perMinute) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"code":"rate_limited","message":"too many vote actions, slow down"}}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
