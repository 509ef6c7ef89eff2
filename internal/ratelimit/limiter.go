package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter bounds the global outbound request rate. It is an optional second
// layer on top of the pacing gate for targets known to rate-limit harshly.
type Limiter struct {
	limiter *rate.Limiter
}

// Config contains token-bucket settings.
type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

// NewLimiter creates a limiter. A non-positive rate returns nil, meaning
// unlimited; callers treat a nil *Limiter as a no-op.
func NewLimiter(cfg Config) *Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return nil
	}

	burst := cfg.BurstSize
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
	}
}

// Wait blocks until the limiter allows the next request.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed without blocking.
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.limiter.Allow()
}

// SetLimit updates the request rate dynamically.
func (l *Limiter) SetLimit(requestsPerSecond float64) {
	if l == nil {
		return
	}
	l.limiter.SetLimit(rate.Limit(requestsPerSecond))
}
