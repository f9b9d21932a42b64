package authhandlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 2)
	handler := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for range 3 {
		last = send("10.0.0.1:5555")
		codes = append(codes, last.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "1", last.Header().Get("Retry-After"))

	// a different client has its own bucket
	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:5555").Code)
}

func TestIPRateLimiter_Allow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewIPRateLimiter(rate.Every(4*time.Second), 1)
	limiter.now = func() time.Time { return now }

	ok, _ := limiter.Allow("1.1.1.1")
	assert.True(t, ok)

	ok, wait := limiter.Allow("1.1.1.1")
	assert.False(t, ok)
	assert.Equal(t, 4*time.Second, wait)

	// a rejected request must not push the next token further out
	now = now.Add(4 * time.Second)
	ok, _ = limiter.Allow("1.1.1.1")
	assert.True(t, ok)
}

func TestIPRateLimiter_Unlimited(t *testing.T) {
	limiter := NewIPRateLimiter(0, 0)
	for range 100 {
		ok, _ := limiter.Allow("1.1.1.1")
		assert.True(t, ok)
	}
}

func TestIPRateLimiter_PrunesIdleClients(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewIPRateLimiter(rate.Limit(10), 10)
	limiter.now = func() time.Time { return now }

	for i := range pruneAbove + 1 {
		limiter.Allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	assert.Equal(t, pruneAbove+1, limiter.Tracked())

	now = now.Add(idleAfter + time.Second)
	limiter.Allow("192.168.0.1")
	assert.Equal(t, 1, limiter.Tracked())
}
