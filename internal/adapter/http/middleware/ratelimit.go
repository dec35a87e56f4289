package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
)

// rateLimitClient tracks one caller's limiter and last usage time so
// idle entries can be evicted.
type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a per-caller token bucket. Callers are keyed by
// authenticated user id, falling back to remote address for anonymous
// requests. Built for the position ingest path, where a stuck client can
// flood samples.
type RateLimiter struct {
	clients map[string]*rateLimitClient
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	// rate.Limit(0) admits nothing once the burst is spent; a zero
	// config value means no limit at all.
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}

	rl := &RateLimiter{
		clients: make(map[string]*rateLimitClient),
		limit:   limit,
		burst:   burst,
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, ok := rl.clients[key]
	if !ok {
		client = &rateLimitClient{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = client
	}
	client.lastSeen = time.Now()

	return client.limiter.Allow()
}

// Allow reports whether the keyed caller may proceed. Exported for the
// websocket read loop, which sits outside the HTTP middleware chain.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.allow(key)
}

// Handler enforces the limit on HTTP requests.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if user := models.UserFromContext(r.Context()); user != nil && !user.IsAnonymous() {
			key = user.ID.String()
		}

		if !rl.allow(key) {
			w.Header().Set("Retry-After", "1")
			errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// cleanup evicts limiters idle for more than ten minutes.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for key, client := range rl.clients {
			if time.Since(client.lastSeen) > 10*time.Minute {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}
