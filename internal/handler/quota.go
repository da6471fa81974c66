package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// QuotaRule caps how many requests a caller may make per window.
type QuotaRule struct {
	Limit  int
	Window time.Duration
}

// Quota enforces a per-user request quota backed by a redis counter.
// It must be mounted after Authenticate. If redis is unreachable the
// request is let through rather than failing the whole API.
func Quota(rdb *redis.Client, rule QuotaRule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFrom(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			key := fmt.Sprintf("quota:user:%s:day", caller.UserID)

			n, err := rdb.Incr(r.Context(), key).Result()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if n == 1 {
				_ = rdb.Expire(r.Context(), key, rule.Window).Err()
			}
			if int(n) > rule.Limit {
				writeError(w, http.StatusTooManyRequests, "usage quota exceeded, please try again later")
				return
			}
			w.Header().Set("X-Quota-Used", fmt.Sprintf("%d/%d", n, rule.Limit))
			next.ServeHTTP(w, r)
		})
	}
}
