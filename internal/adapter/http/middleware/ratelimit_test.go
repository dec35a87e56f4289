package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

func TestRateLimiter_ZeroRateDisablesLimiting(t *testing.T) {
	rl := NewRateLimiter(0, 2)

	for i := 0; i < 100; i++ {
		require.True(t, rl.Allow("driver-1"), "request %d: rate 0 must mean unlimited, not starved", i)
	}
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3)

	for i := 0; i < 3; i++ {
		require.True(t, rl.Allow("driver-1"), "burst request %d must pass", i)
	}
	require.False(t, rl.Allow("driver-1"), "request past the burst must be rejected")
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	require.True(t, rl.Allow("driver-1"))
	require.False(t, rl.Allow("driver-1"))
	require.True(t, rl.Allow("driver-2"), "one flooding caller must not affect another")
}

func TestRateLimiterHandler_RejectsWith429(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := rl.Handler(next)

	user := &models.User{ID: uuid.New(), Role: types.RoleDriver}

	newRequest := func() *http.Request {
		r := httptest.NewRequest(http.MethodPut, "/trips/x/students/y/status", nil)
		return r.WithContext(models.WithUser(r.Context(), user))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequest())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequest())
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimiterHandler_AnonymousKeyedByRemoteAddr(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := rl.Handler(next)

	first := httptest.NewRequest(http.MethodPost, "/trips/x/incidents", nil)
	first.RemoteAddr = "10.0.0.1:4000"
	second := httptest.NewRequest(http.MethodPost, "/trips/x/incidents", nil)
	second.RemoteAddr = "10.0.0.2:4000"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	require.Equal(t, http.StatusOK, rec.Code, "different remote addresses get their own buckets")
}
