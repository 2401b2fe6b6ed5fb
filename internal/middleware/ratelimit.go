package middleware

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiterConfig configures the token bucket rate limiter.
type RateLimiterConfig struct {
	// RequestsPerSecond is the sustained request rate allowed per client.
	RequestsPerSecond float64

	// Burst is the number of requests a client may make in a burst.
	Burst int

	// CleanupInterval controls how often idle client buckets are evicted.
	CleanupInterval time.Duration
}

// DefaultRateLimiterConfig is the general-purpose tier applied to the
// whole API.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 10,
		Burst:             20,
		CleanupInterval:   time.Minute,
	}
}

// StrictRateLimiterConfig is the tier applied to credential endpoints
// (signup and login) to slow down guessing.
func StrictRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 1,
		Burst:             5,
		CleanupInterval:   time.Minute,
	}
}

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
}

// RateLimiter tracks a token bucket per client IP.
type RateLimiter struct {
	config  RateLimiterConfig
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	done    chan struct{}
}

// NewRateLimiter creates a rate limiter and starts its cleanup loop.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		buckets: make(map[string]*tokenBucket),
		done:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Stop terminates the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-rl.config.CleanupInterval)
			for ip, bucket := range rl.buckets {
				if bucket.lastRefill.Before(cutoff) {
					delete(rl.buckets, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// allow reports whether the client may make a request, consuming a
// token when it may.
func (rl *RateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	bucket, ok := rl.buckets[clientIP]
	if !ok {
		rl.buckets[clientIP] = &tokenBucket{
			tokens:     float64(rl.config.Burst) - 1,
			lastRefill: now,
		}
		return true
	}

	elapsed := now.Sub(bucket.lastRefill).Seconds()
	bucket.tokens += elapsed * rl.config.RequestsPerSecond
	if bucket.tokens > float64(rl.config.Burst) {
		bucket.tokens = float64(rl.config.Burst)
	}
	bucket.lastRefill = now

	if bucket.tokens < 1 {
		return false
	}
	bucket.tokens--
	return true
}

// Middleware enforces the rate limit, keyed by client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(GetClientIP(r)) {
			respondTooManyRequests(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
