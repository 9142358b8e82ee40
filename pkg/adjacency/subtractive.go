// Package adjacency decomposes an assembly graph into adjacency components
// and bipartite views of them.
//
// An adjacency component is a maximal set of node sides connected by the
// relation "linked by at least one edge". A side is represented by the
// handle whose right (3') end it is, so the two sides of node n are n+ and
// n-. Components decompose into bipartite blocks via 2-coloring; the
// bipartite views drive the biclique cover.
package adjacency

import (
	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
)

// Reader is the read surface of a handle graph that the adjacency
// machinery traverses. Both *handlegraph.Graph and *SubtractiveGraph
// satisfy it.
type Reader interface {
	FollowEdges(h handlegraph.Handle, goLeft bool, visit func(handlegraph.Handle) bool)
	HasEdge(e handlegraph.Edge) bool
}

// SubtractiveGraph is a virtual view over a host graph that hides a set of
// suppressed edges without mutating the host. Reads filter the suppressed
// set; the host is never written. The simplification pass runs on this view
// so that no information is lost from the host graph.
type SubtractiveGraph struct {
	host       Reader
	suppressed map[handlegraph.Edge]struct{}
}

// NewSubtractiveGraph wraps host with an empty suppressed set.
func NewSubtractiveGraph(host Reader) *SubtractiveGraph {
	return &SubtractiveGraph{
		host:       host,
		suppressed: make(map[handlegraph.Edge]struct{}),
	}
}

// SubtractEdge hides the edge from all reads through this view.
func (s *SubtractiveGraph) SubtractEdge(e handlegraph.Edge) {
	s.suppressed[e.Canonical()] = struct{}{}
}

// IsSubtracted reports whether the edge is hidden.
func (s *SubtractiveGraph) IsSubtracted(e handlegraph.Edge) bool {
	_, ok := s.suppressed[e.Canonical()]
	return ok
}

// FollowEdges visits h's neighbors on the given side, skipping suppressed
// edges.
func (s *SubtractiveGraph) FollowEdges(h handlegraph.Handle, goLeft bool, visit func(handlegraph.Handle) bool) {
	s.host.FollowEdges(h, goLeft, func(x handlegraph.Handle) bool {
		e := handlegraph.Edge{From: h, To: x}
		if goLeft {
			e = handlegraph.Edge{From: x, To: h}
		}
		if s.IsSubtracted(e) {
			return true
		}
		return visit(x)
	})
}

// HasEdge reports whether the edge exists in the host and is not
// suppressed.
func (s *SubtractiveGraph) HasEdge(e handlegraph.Edge) bool {
	return s.host.HasEdge(e) && !s.IsSubtracted(e)
}
