package scan

import (
	"sync/atomic"
)

// Breaker is the critical-finding circuit breaker. It has two states,
// running and stopped, and the transition is one-way: once tripped it stays
// tripped for the remainder of the scan.
type Breaker struct {
	threshold int
	tripped   atomic.Bool
}

// NewBreaker creates a breaker that trips when the critical finding count
// reaches threshold. A threshold <= 0 disables tripping entirely.
func NewBreaker(threshold int) *Breaker {
	return &Breaker{threshold: threshold}
}

// Threshold returns the configured critical-stop threshold.
func (b *Breaker) Threshold() int {
	return b.threshold
}

// Tripped reports whether the stop signal has fired. Check tasks must call
// this before issuing each request and abort their remaining work if true.
// The read is lock-free; a concurrently tripping breaker may be observed
// one request late, never un-tripped.
func (b *Breaker) Tripped() bool {
	return b.tripped.Load()
}

// observe evaluates the transition for the given critical count. Called by
// State.Record while holding the state mutex, so the increment and the
// transition are a single atomic step to every observer.
func (b *Breaker) observe(criticalCount int) {
	if b.threshold > 0 && criticalCount >= b.threshold {
		b.tripped.Store(true)
	}
}
