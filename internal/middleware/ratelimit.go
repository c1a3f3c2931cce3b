package middleware

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/technosupport/ts-shopguard/internal/ratelimit"
)

// RateLimit throttles the credential endpoints per caller IP. A nil limiter
// (no Redis configured) disables throttling entirely.
type RateLimit struct {
	limiter *ratelimit.Limiter
	config  ratelimit.LimitConfig
}

func NewRateLimit(l *ratelimit.Limiter, c ratelimit.LimitConfig) *RateLimit {
	if c.Rate == 0 {
		c = ratelimit.DefaultLoginLimit
	}
	return &RateLimit{limiter: l, config: c}
}

// LoginLimiter guards the login handler. Redis failures fail closed here:
// an unthrottled credential endpoint is worse than a rejected login.
func (m *RateLimit) LoginLimiter(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := "login:" + m.limiter.HashIP(clientIP(r))
		decision, err := m.limiter.Check(r.Context(), key, m.config)
		if errors.Is(err, ratelimit.ErrRedisUnavailable) {
			log.Printf("[ERROR] RateLimit: redis unavailable, failing closed on login")
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
			return
		}
		if err != nil {
			log.Printf("[WARN] RateLimit: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		writeRateLimitHeaders(w, decision)
		if !decision.Allowed {
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	return host
}

func writeRateLimitHeaders(w http.ResponseWriter, d *ratelimit.Decision) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	if !d.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(d.RetryAfter))
	}
}
