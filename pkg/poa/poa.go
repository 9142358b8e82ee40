// Package poa collapses the overlapping termini of one biclique into a
// partial-order subgraph.
//
// Every participating terminus contributes its full (oriented) sequence;
// per-edge constraints anchor the sequences to a shared column coordinate:
// the end of an edge's From sequence sits exactly overlap-length columns
// into its To sequence. Bases that agree within a column share one node,
// disagreeing bases branch, and unary chains are compacted afterwards.
// Each input sequence survives as a named path of the subgraph, which is
// what splicing and provenance walk.
package poa

import (
	"fmt"

	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
	"github.com/rlorigro/GetBlunted/pkg/overlaps"
)

// PathInfo locates one terminus's path in the subgraph.
type PathInfo struct {
	PathName string
	// BicliqueSide is 0 when the terminus's parent precedes the path
	// (suffix overlaps) and 1 when it follows it (prefix overlaps).
	BicliqueSide int
}

// Subgraph is the product of aligning one biclique's overlaps, in the
// shape the splicing orchestrator consumes.
type Subgraph struct {
	Graph          *handlegraph.Graph
	PathsPerHandle [2]map[handlegraph.Handle]PathInfo
}

// PathName names the path contributed by one terminus handle on one
// biclique side.
func PathName(h handlegraph.Handle, side int) string {
	return fmt.Sprintf("%d_%d", h.ID(), side)
}

// AlignBicliqueOverlaps builds the subgraph for one biclique. The edges
// must be in canonical (overlap-map) orientation; each edge's From is a
// suffix terminus and its To a prefix terminus.
func AlignBicliqueOverlaps(g *handlegraph.Graph, ovl *overlaps.Map, edges []handlegraph.Edge) (*Subgraph, error) {
	sub := &Subgraph{
		Graph: handlegraph.New(),
		PathsPerHandle: [2]map[handlegraph.Handle]PathInfo{
			make(map[handlegraph.Handle]PathInfo),
			make(map[handlegraph.Handle]PathInfo),
		},
	}
	if len(edges) == 0 {
		return sub, nil
	}

	// Collect the participant sequences, keyed by oriented handle and
	// biclique side.
	type participant struct {
		handle handlegraph.Handle
		side   int
		seq    []byte
		offset int
		placed bool
	}
	type partKey struct {
		handle handlegraph.Handle
		side   int
	}
	index := make(map[partKey]int)
	var parts []*participant
	add := func(h handlegraph.Handle, side int) *participant {
		key := partKey{handle: h, side: side}
		if i, ok := index[key]; ok {
			return parts[i]
		}
		p := &participant{handle: h, side: side, seq: g.Sequence(h)}
		index[key] = len(parts)
		parts = append(parts, p)
		return p
	}

	type constraint struct {
		from, to *participant
		overlap  int
	}
	var constraints []constraint
	for _, e := range edges {
		u, _, err := ovl.ComputeLengths(e)
		if err != nil {
			return nil, err
		}
		from := add(e.From, 0)
		to := add(e.To, 1)
		constraints = append(constraints, constraint{from: from, to: to, overlap: u})
	}

	// Anchor the sequences: start(to) = end(from) - overlap. The biclique
	// is connected, so one BFS pass from each unplaced participant places
	// everything; conflicting assignments keep the first placement.
	for _, seed := range parts {
		if seed.placed {
			continue
		}
		seed.placed = true
		seed.offset = 0
		for changed := true; changed; {
			changed = false
			for _, c := range constraints {
				switch {
				case c.from.placed && !c.to.placed:
					c.to.offset = c.from.offset + len(c.from.seq) - c.overlap
					c.to.placed = true
					changed = true
				case c.to.placed && !c.from.placed:
					c.from.offset = c.to.offset + c.overlap - len(c.from.seq)
					c.from.placed = true
					changed = true
				}
			}
		}
	}

	minOffset := parts[0].offset
	for _, p := range parts {
		if p.offset < minOffset {
			minOffset = p.offset
		}
	}
	for _, p := range parts {
		p.offset -= minOffset
	}

	// Merge by column: equal bases in a column share one node.
	type column struct {
		col  int
		base byte
	}
	nodes := make(map[column]handlegraph.Handle)
	for _, p := range parts {
		var prev handlegraph.Handle
		name := PathName(p.handle, p.side)
		if err := sub.Graph.CreatePath(name); err != nil {
			return nil, err
		}
		for i, base := range p.seq {
			key := column{col: p.offset + i, base: base}
			node, ok := nodes[key]
			if !ok {
				node = sub.Graph.CreateHandle([]byte{base})
				nodes[key] = node
			}
			if i > 0 {
				sub.Graph.CreateEdge(handlegraph.Edge{From: prev, To: node})
			}
			sub.Graph.AppendStep(name, node)
			prev = node
		}
		sub.PathsPerHandle[p.side][p.handle] = PathInfo{PathName: name, BicliqueSide: p.side}
	}

	compact(sub.Graph)
	return sub, nil
}

// compact merges unary chains: an edge x -> y collapses when it is x's
// only outgoing and y's only incoming edge, no path ends at x, and no path
// starts at y. Path steps are rewritten as nodes merge.
func compact(g *handlegraph.Graph) {
	for {
		merged := false
		var candidate handlegraph.Edge
		found := false
		g.ForEachEdge(func(e handlegraph.Edge) bool {
			if e.From.ID() == e.To.ID() {
				return true
			}
			if e.From.IsReverse() && e.To.IsReverse() {
				// Read the edge forward, the orientation every path step
				// of the subgraph uses.
				e = handlegraph.Edge{From: e.To.Flip(), To: e.From.Flip()}
			}
			if g.Degree(e.From, false) != 1 || g.Degree(e.To, true) != 1 {
				return true
			}
			boundary := false
			g.ForEachPath(func(p *handlegraph.Path) bool {
				if p.Len() == 0 {
					return true
				}
				if p.Back() == e.From || p.Front() == e.To {
					boundary = true
					return false
				}
				return true
			})
			if boundary {
				return true
			}
			candidate = e
			found = true
			return false
		})
		if found {
			mergePair(g, candidate)
			merged = true
		}
		if !merged {
			return
		}
	}
}

// mergePair fuses e.To into e.From: the merged node spells both sequences,
// inherits e.To's outgoing edges, and replaces the step pair in every
// path.
func mergePair(g *handlegraph.Graph, e handlegraph.Edge) {
	seq := append(g.Sequence(e.From), g.Sequence(e.To)...)
	merged := g.CreateHandle(seq)

	var incoming, outgoing []handlegraph.Handle
	g.FollowEdges(e.From, true, func(x handlegraph.Handle) bool {
		incoming = append(incoming, x)
		return true
	})
	g.FollowEdges(e.To, false, func(x handlegraph.Handle) bool {
		outgoing = append(outgoing, x)
		return true
	})

	// Rewrite paths before destroying the pair: destroying a handle drops
	// any path that still traverses it.
	type rewrite struct {
		name  string
		steps []handlegraph.Handle
	}
	var rewrites []rewrite
	g.ForEachPath(func(p *handlegraph.Path) bool {
		touched := false
		var steps []handlegraph.Handle
		old := p.Steps()
		for i := 0; i < len(old); i++ {
			if i+1 < len(old) && old[i] == e.From && old[i+1] == e.To {
				steps = append(steps, merged)
				touched = true
				i++
				continue
			}
			steps = append(steps, old[i])
		}
		if touched {
			rewrites = append(rewrites, rewrite{name: p.Name(), steps: steps})
		}
		return true
	})
	for _, rw := range rewrites {
		g.DestroyPath(rw.name)
		g.CreatePath(rw.name)
		for _, s := range rw.steps {
			g.AppendStep(rw.name, s)
		}
	}

	g.DestroyHandle(e.From)
	g.DestroyHandle(e.To)
	for _, x := range incoming {
		if x == e.To {
			x = merged
		}
		g.CreateEdge(handlegraph.Edge{From: x, To: merged})
	}
	for _, x := range outgoing {
		if x == e.From {
			x = merged
		}
		g.CreateEdge(handlegraph.Edge{From: merged, To: x})
	}
}
