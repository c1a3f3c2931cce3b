package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technosupport/ts-shopguard/internal/middleware"
	"github.com/technosupport/ts-shopguard/internal/ratelimit"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestLoginLimiter_BlocksAfterLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	limiter := ratelimit.NewLimiter(rdb, "salt")
	mw := middleware.NewRateLimit(limiter, ratelimit.LimitConfig{Rate: 2, Window: time.Minute})
	handler := mw.LoginLimiter(okHandler)

	req := httptest.NewRequest("POST", "/api/v1/auth/login", nil)
	req.RemoteAddr = "1.2.3.4:1234"

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, "attempt %d", i+1)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestLoginLimiter_PerIPKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	limiter := ratelimit.NewLimiter(rdb, "salt")
	mw := middleware.NewRateLimit(limiter, ratelimit.LimitConfig{Rate: 1, Window: time.Minute})
	handler := mw.LoginLimiter(okHandler)

	first := httptest.NewRequest("POST", "/api/v1/auth/login", nil)
	first.RemoteAddr = "1.2.3.4:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, first)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, first)
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	// A different caller is unaffected.
	other := httptest.NewRequest("POST", "/api/v1/auth/login", nil)
	other.RemoteAddr = "5.6.7.8:1234"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, other)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginLimiter_RedisDownFailsClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	mr.Close()

	limiter := ratelimit.NewLimiter(rdb, "salt")
	mw := middleware.NewRateLimit(limiter, ratelimit.LimitConfig{Rate: 5, Window: time.Minute})
	handler := mw.LoginLimiter(okHandler)

	req := httptest.NewRequest("POST", "/api/v1/auth/login", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLoginLimiter_NilLimiterPassesThrough(t *testing.T) {
	mw := middleware.NewRateLimit(nil, ratelimit.LimitConfig{})
	handler := mw.LoginLimiter(okHandler)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/auth/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
