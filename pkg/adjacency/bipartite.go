package adjacency

import (
	"sort"

	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
)

// BipartiteGraph is a view of one bipartite block of an adjacency
// component. Left and right hold side handles in a canonical order, which
// induces deterministic indices for both partitions.
//
// Two sides are adjacent when the underlying graph links them; adjacency is
// additionally restricted to the opposite partition, which is how edges
// assigned to other blocks of the same component are excluded.
type BipartiteGraph struct {
	graph      Reader
	left       []handlegraph.Handle
	right      []handlegraph.Handle
	leftIndex  map[handlegraph.Handle]int
	rightIndex map[handlegraph.Handle]int
}

// NewBipartiteGraph builds a view over graph with the given partitions.
// The partitions are copied and canonicalized (ascending handle order).
func NewBipartiteGraph(graph Reader, left, right []handlegraph.Handle) *BipartiteGraph {
	b := &BipartiteGraph{
		graph:      graph,
		left:       sortedHandles(left),
		right:      sortedHandles(right),
		leftIndex:  make(map[handlegraph.Handle]int, len(left)),
		rightIndex: make(map[handlegraph.Handle]int, len(right)),
	}
	for i, h := range b.left {
		b.leftIndex[h] = i
	}
	for i, h := range b.right {
		b.rightIndex[h] = i
	}
	return b
}

func sortedHandles(hs []handlegraph.Handle) []handlegraph.Handle {
	out := make([]handlegraph.Handle, len(hs))
	copy(out, hs)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Graph returns the underlying reader.
func (b *BipartiteGraph) Graph() Reader { return b.graph }

// Left returns the left partition in canonical order.
func (b *BipartiteGraph) Left() []handlegraph.Handle { return b.left }

// Right returns the right partition in canonical order.
func (b *BipartiteGraph) Right() []handlegraph.Handle { return b.right }

// LeftSize returns the size of the left partition.
func (b *BipartiteGraph) LeftSize() int { return len(b.left) }

// RightSize returns the size of the right partition.
func (b *BipartiteGraph) RightSize() int { return len(b.right) }

// LeftIndex returns the canonical index of a left-partition side.
func (b *BipartiteGraph) LeftIndex(h handlegraph.Handle) (int, bool) {
	i, ok := b.leftIndex[h]
	return i, ok
}

// RightIndex returns the canonical index of a right-partition side.
func (b *BipartiteGraph) RightIndex(h handlegraph.Handle) (int, bool) {
	i, ok := b.rightIndex[h]
	return i, ok
}

// IsLeft reports whether h is in the left partition.
func (b *BipartiteGraph) IsLeft(h handlegraph.Handle) bool {
	_, ok := b.leftIndex[h]
	return ok
}

// ForEachAdjacentSide visits the sides adjacent to side h that belong to
// the opposite partition. Returning false stops the iteration.
func (b *BipartiteGraph) ForEachAdjacentSide(h handlegraph.Handle, visit func(handlegraph.Handle) bool) {
	opposite := b.rightIndex
	if _, onRight := b.rightIndex[h]; onRight {
		opposite = b.leftIndex
	}
	b.graph.FollowEdges(h, false, func(t handlegraph.Handle) bool {
		side := t.Flip()
		if _, ok := opposite[side]; !ok {
			return true
		}
		return visit(side)
	})
}

// Degree returns the number of opposite-partition sides adjacent to h.
func (b *BipartiteGraph) Degree(h handlegraph.Handle) int {
	d := 0
	b.ForEachAdjacentSide(h, func(handlegraph.Handle) bool {
		d++
		return true
	})
	return d
}

// EdgeCount returns the number of edges in the view.
func (b *BipartiteGraph) EdgeCount() int {
	total := 0
	for _, h := range b.left {
		total += b.Degree(h)
	}
	return total
}

// Bipartition returns both partitions.
func (b *BipartiteGraph) Bipartition() (left, right []handlegraph.Handle) {
	return b.left, b.right
}
