// Package ratelimit paces outbound probe traffic: a fixed pre-task gate to
// desynchronize check start times from naive rate-based defenses, and an
// optional global token-bucket limit.
package ratelimit

import (
	"context"
	"time"
)

// Gate enforces a fixed delay before a check task's first network
// operation. The delay is paid once per task, not per request, so a
// multi-request check pays it only up front.
type Gate struct {
	delay time.Duration
}

func NewGate(delay time.Duration) *Gate {
	return &Gate{delay: delay}
}

// Delay returns the configured pacing delay.
func (g *Gate) Delay() time.Duration {
	return g.delay
}

// Await suspends the calling task for the pacing delay or until the context
// is cancelled.
func (g *Gate) Await(ctx context.Context) error {
	if g.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(g.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
