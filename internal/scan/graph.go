package scan

import (
	"sync"

	"github.com/termul/termul/pkg/types"
)

// Graph is the append-only correlation graph mapping a finding type to the
// downstream impact categories it implies. Edges are not deduplicated: a
// check that fires more than once records the same edge more than once, and
// insertion order is preserved per source.
type Graph struct {
	mu      sync.Mutex
	edges   map[types.FindingType][]types.Impact
	sources []types.FindingType // first-insertion order, for stable rendering
}

// NewGraph creates an empty correlation graph.
func NewGraph() *Graph {
	return &Graph{
		edges: make(map[types.FindingType][]types.Impact),
	}
}

// Link appends impact to the edge list for source, creating the entry if
// absent.
func (g *Graph) Link(source types.FindingType, impact types.Impact) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.edges[source]; !ok {
		g.sources = append(g.sources, source)
	}
	g.edges[source] = append(g.edges[source], impact)
}

// Edges returns a copy of the adjacency lists keyed by source, with targets
// in insertion order.
func (g *Graph) Edges() map[string][]string {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make(map[string][]string, len(g.edges))
	for source, impacts := range g.edges {
		targets := make([]string, 0, len(impacts))
		for _, impact := range impacts {
			targets = append(targets, string(impact))
		}
		out[string(source)] = targets
	}
	return out
}

// Sources returns the source keys in first-insertion order.
func (g *Graph) Sources() []types.FindingType {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]types.FindingType, len(g.sources))
	copy(out, g.sources)
	return out
}

// Len returns the number of distinct source keys.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.edges)
}
