// Package scan holds the mutable state shared by all check tasks during one
// scan: the append-only finding log, the running critical counter, the
// circuit breaker, and the correlation graph. State is created at scan
// start, mutated concurrently by check tasks, read by the reporter at scan
// end, and discarded.
package scan

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/termul/termul/pkg/types"
)

// State is the shared scan state. A single mutex guards the finding log and
// the critical counter so that record-increment-trip is one atomic step;
// the breaker flag itself is lock-free to read.
type State struct {
	id      string
	breaker *Breaker
	graph   *Graph

	mu            sync.Mutex
	findings      []types.Finding
	criticalCount int
}

// NewState creates scan state with a fresh scan ID and a breaker armed at
// criticalStopThreshold.
func NewState(criticalStopThreshold int) *State {
	return &State{
		id:      uuid.New().String(),
		breaker: NewBreaker(criticalStopThreshold),
		graph:   NewGraph(),
	}
}

// ID returns the scan identifier.
func (s *State) ID() string {
	return s.id
}

// Record appends a finding to the log. For CRITICAL findings the critical
// counter is incremented and the breaker transition evaluated under the same
// lock, so no observer can see the counter and the stop flag disagree with
// each other beyond the documented one-request staleness of Tripped().
// Record cannot fail; the log has no capacity bound.
func (s *State) Record(f types.Finding) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.findings = append(s.findings, f)
	if f.Risk == types.RiskCritical {
		s.criticalCount++
		s.breaker.observe(s.criticalCount)
	}
}

// Correlate appends an impact edge for the given finding type.
func (s *State) Correlate(source types.FindingType, impact types.Impact) {
	s.graph.Link(source, impact)
}

// ShouldStop reports whether the circuit breaker has fired.
func (s *State) ShouldStop() bool {
	return s.breaker.Tripped()
}

// Findings returns a copy of the finding log in completion order.
func (s *State) Findings() []types.Finding {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Finding, len(s.findings))
	copy(out, s.findings)
	return out
}

// CriticalCount returns the number of CRITICAL findings recorded so far.
func (s *State) CriticalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criticalCount
}

// Graph returns the correlation graph.
func (s *State) Graph() *Graph {
	return s.graph
}

// Result snapshots the state into the envelope handed to the reporter.
func (s *State) Result(target string, startedAt, completedAt time.Time) *types.ScanResult {
	findings := s.Findings()

	return &types.ScanResult{
		ScanID:       s.id,
		Target:       target,
		Findings:     findings,
		Summary:      types.Summarize(findings),
		Correlations: s.graph.Edges(),
		Stopped:      s.ShouldStop(),
		StartedAt:    startedAt,
		CompletedAt:  completedAt,
	}
}
