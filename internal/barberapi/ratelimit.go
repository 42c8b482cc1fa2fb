package barberapi

import (
	"context"
	"math"
	"sync"
	"time"
)

// RateLimiter is a token bucket throttling calls to the booking API, so
// snapshot refreshes and user traffic cannot hammer the backend.
type RateLimiter struct {
	rate     float64 // tokens added per second
	burst    int
	tokens   float64
	lastTime time.Time
	mu       sync.Mutex
}

// NewRateLimiter creates a limiter allowing rate requests per second
// with the given burst.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	if rate <= 0 {
		rate = 10
	}
	if burst <= 0 {
		burst = int(rate)
	}
	return &RateLimiter{
		rate:     rate,
		burst:    burst,
		tokens:   float64(burst),
		lastTime: time.Now(),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	r.refill()

	if r.tokens >= 1 {
		r.tokens--
		r.mu.Unlock()
		return nil
	}

	waitTime := time.Duration((1 - r.tokens) / r.rate * float64(time.Second))
	r.mu.Unlock()

	select {
	case <-time.After(waitTime):
		r.mu.Lock()
		r.tokens = 0
		r.lastTime = time.Now()
		r.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire attempts to take a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		return true
	}
	return false
}

// refill adds tokens for the elapsed time. Callers hold r.mu.
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastTime).Seconds()
	r.tokens = math.Min(float64(r.burst), r.tokens+elapsed*r.rate)
	r.lastTime = now
}
