// Package biclique computes biclique covers of bipartite adjacency graphs.
//
// For domino-free graphs the cover is exact, via the Galois lattice
// construction of Amilhastre et al. (1998): one centered Galois tree per
// left node, combined into a lattice of maximal bicliques, covered by a
// minimum vertex separator found with Dinic's algorithm. Graphs that are
// not domino-free fall back to a greedy heuristic cover.
package biclique

import (
	"iter"

	"github.com/rlorigro/GetBlunted/pkg/adjacency"
	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
)

// Bipartition is a biclique: every pair (l, r) with l from Left and r from
// Right is an edge of the bipartite graph. Both sides are kept in canonical
// (ascending handle) order.
type Bipartition struct {
	Left  []handlegraph.Handle
	Right []handlegraph.Handle
}

// CenteredGaloisTree partitions the 2-hop neighborhood of one left node
// into equivalence classes of identical right-side neighborhoods, arranged
// in a containment tree rooted at the central class (the one with the
// largest neighborhood).
//
// Invariant: if j is a predecessor of i then neighborhood(j) is a proper
// subset of neighborhood(i).
type CenteredGaloisTree struct {
	// equivClasses[i] holds the left nodes of class i; neighborhoods[i]
	// their common right-side neighborhood.
	equivClasses  [][]handlegraph.Handle
	neighborhoods [][]handlegraph.Handle

	// classEdges[i] lists the local right indices of class i's
	// neighborhood in ascending order.
	classEdges [][]int

	successors   []int
	predecessors [][]int
}

// NewCenteredGaloisTree builds the tree for the given center. The second
// return is false when the neighbor-ordering property fails, i.e. the
// graph is not domino-free as seen from this center.
func NewCenteredGaloisTree(b *adjacency.BipartiteGraph, center handlegraph.Handle) (*CenteredGaloisTree, bool) {
	// Collect the two-hop subgraph: right nodes adjacent to the center,
	// left nodes adjacent to those. Rightward edges are restricted to the
	// subgraph, since some of them could point outside it.
	leftIdx := make(map[handlegraph.Handle]int)
	var leftNodes []handlegraph.Handle
	var leftEdges [][]int
	var rightNodes []handlegraph.Handle

	b.ForEachAdjacentSide(center, func(right handlegraph.Handle) bool {
		b.ForEachAdjacentSide(right, func(left handlegraph.Handle) bool {
			if i, ok := leftIdx[left]; ok {
				leftEdges[i] = append(leftEdges[i], len(rightNodes))
			} else {
				leftIdx[left] = len(leftEdges)
				leftEdges = append(leftEdges, []int{len(rightNodes)})
				leftNodes = append(leftNodes, left)
			}
			return true
		})
		rightNodes = append(rightNodes, right)
		return true
	})

	// Refine one initial class into classes of identical neighborhoods:
	// each right node partitions every class it touches.
	assignment := make([]int, len(leftNodes))
	for i := range assignment {
		assignment[i] = -1
	}
	next := 0
	for _, right := range rightNodes {
		refined := make(map[int]int)
		b.ForEachAdjacentSide(right, func(left handlegraph.Handle) bool {
			li := leftIdx[left]
			old := assignment[li]
			if class, ok := refined[old]; ok {
				assignment[li] = class
			} else {
				refined[old] = next
				assignment[li] = next
				next++
			}
			return true
		})
	}

	// Compact class ids in first-seen order and record each class's
	// neighborhood.
	t := &CenteredGaloisTree{}
	compacted := make([]int, next)
	for i := range compacted {
		compacted[i] = -1
	}
	for i, left := range leftNodes {
		class := assignment[i]
		if compacted[class] == -1 {
			compacted[class] = len(t.equivClasses)
			class = len(t.equivClasses)
			t.equivClasses = append(t.equivClasses, nil)
			t.classEdges = append(t.classEdges, leftEdges[i])
			nbd := make([]handlegraph.Handle, 0, len(leftEdges[i]))
			for _, j := range leftEdges[i] {
				nbd = append(nbd, rightNodes[j])
			}
			t.neighborhoods = append(t.neighborhoods, nbd)
		} else {
			class = compacted[class]
		}
		t.equivClasses[class] = append(t.equivClasses[class], left)
	}

	// Bucket classes by neighborhood size and build each right node's
	// degree-ordered incidence list.
	degreeGroups := make([][]int, len(rightNodes)+1)
	for i := range t.neighborhoods {
		size := len(t.neighborhoods[i])
		degreeGroups[size] = append(degreeGroups[size], i)
	}
	degreeOrdered := make([][]int, len(rightNodes))
	for _, group := range degreeGroups {
		for _, class := range group {
			for _, j := range t.classEdges[class] {
				degreeOrdered[j] = append(degreeOrdered[j], class)
			}
		}
	}

	// Walk each degree-ordered list: consecutive pairs assert immediate
	// succession. Two different successors for one class mean the graph is
	// not domino-free from this center.
	t.successors = make([]int, len(t.equivClasses))
	for i := range t.successors {
		t.successors[i] = -1
	}
	t.predecessors = make([][]int, len(t.equivClasses))
	for _, list := range degreeOrdered {
		if len(list) == 0 {
			continue
		}
		pred := list[0]
		for _, succ := range list[1:] {
			switch t.successors[pred] {
			case -1:
				t.successors[pred] = succ
				t.predecessors[succ] = append(t.predecessors[succ], pred)
			case succ:
				// Consistent, nothing to record.
			default:
				return nil, false
			}
			pred = succ
		}
	}

	// Verify the neighbor-ordering property: a predecessor's neighborhood
	// must be contained in its successor's. Edge lists are ascending, so a
	// linear merge suffices.
	for i := range t.classEdges {
		succNbd := t.classEdges[i]
		for _, j := range t.predecessors[i] {
			predNbd := t.classEdges[j]
			p := 0
			for s := 0; s < len(succNbd) && p < len(predNbd); s++ {
				if succNbd[s] == predNbd[p] {
					p++
				}
			}
			if p < len(predNbd) {
				return nil, false
			}
		}
	}

	return t, true
}

// Size returns the number of equivalence classes.
func (t *CenteredGaloisTree) Size() int {
	return len(t.equivClasses)
}

// Predecessors returns the immediate predecessors of class i.
func (t *CenteredGaloisTree) Predecessors(i int) []int {
	return t.predecessors[i]
}

// Successor returns class i's immediate successor, or -1 at the root.
func (t *CenteredGaloisTree) Successor(i int) int {
	return t.successors[i]
}

// CentralEquivalenceClass returns the root of the containment tree: the
// class whose neighborhood is largest, found by following successors to
// the fixed point.
func (t *CenteredGaloisTree) CentralEquivalenceClass() int {
	i := 0
	for t.successors[i] != -1 {
		i = t.successors[i]
	}
	return i
}

// RightSize returns the neighborhood size of class i.
func (t *CenteredGaloisTree) RightSize(i int) int {
	return len(t.neighborhoods[i])
}

// Edges returns a lazy, restartable sequence over the cross product of
// class i's members and its neighborhood.
func (t *CenteredGaloisTree) Edges(i int) iter.Seq2[handlegraph.Handle, handlegraph.Handle] {
	return func(yield func(handlegraph.Handle, handlegraph.Handle) bool) {
		for _, l := range t.equivClasses[i] {
			for _, r := range t.neighborhoods[i] {
				if !yield(l, r) {
					return
				}
			}
		}
	}
}

// FirstEdge returns the first edge of class i's cross product.
func (t *CenteredGaloisTree) FirstEdge(i int) (handlegraph.Handle, handlegraph.Handle) {
	return t.equivClasses[i][0], t.neighborhoods[i][0]
}

// Biclique returns the maximal biclique anchored at class i: its
// neighborhood on the right, and on the left the union of the classes from
// i up through the successor chain.
func (t *CenteredGaloisTree) Biclique(i int) Bipartition {
	var out Bipartition
	out.Right = append(out.Right, t.neighborhoods[i]...)
	for j := i; j != -1; j = t.successors[j] {
		out.Left = append(out.Left, t.equivClasses[j]...)
	}
	sortHandles(out.Left)
	sortHandles(out.Right)
	return out
}
