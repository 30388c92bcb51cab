package middlewarectx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_PerClient(t *testing.T) {
	l := NewRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"), "burst exhausted")
	assert.True(t, l.Allow("b"), "other clients keep their own budget")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"), "token refilled after a second")
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	l := NewRateLimiter(1, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(limiterIdleTTL + limiterSweepEvery + time.Second)
	l.Allow("b")

	_, ok := l.clients["a"]
	assert.False(t, ok)
	assert.Len(t, l.clients, 1)
}

func TestRateLimiter_Middleware(t *testing.T) {
	l := NewRateLimiter(1, 1)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := l.Middleware(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(uid string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if uid != "" {
			req = req.WithContext(WithUser(req.Context(), uid, "user"))
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("u1"))
	assert.Equal(t, http.StatusTooManyRequests, send("u1"))
	assert.Equal(t, http.StatusOK, send("u2"))
	assert.Equal(t, http.StatusOK, send(""), "anonymous clients are keyed by address")
}
