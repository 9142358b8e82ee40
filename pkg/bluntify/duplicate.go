package bluntify

import (
	"strconv"

	"github.com/rlorigro/GetBlunted/pkg/errors"
	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
)

// ChildRecord links a duplicated terminus back to its original node and
// the side it was carved from.
type ChildRecord struct {
	Parent handlegraph.NodeID
	Side   int
}

// OOChild is one overlapping-overlap terminus: a duplicated child whose
// extent reaches past the opposite side's carve line.
type OOChild struct {
	Handle   handlegraph.Handle
	Extent   int
	Biclique int
}

// OverlappingOverlap records a node whose two-sided duplications intersect
// in the middle of the original sequence.
type OverlappingOverlap struct {
	ParentPathName string
	Length         int
	Children       [2][]OOChild
}

// duplication is the result of carving one side of one node.
type duplication struct {
	// children[0] is the remaining middle/suffix; children[i+1] is the
	// terminus for the i-th biclique of the carved side.
	children []handlegraph.Handle
	// oo lists positions i (into the sorted extents) that could not be
	// carved from the remainder and were duplicated from the original
	// sequence instead.
	oo []int
	// carve is how much of the node the largest terminus consumed.
	carve int
}

// duplicateAllNodeTermini splits every original node into a staircase of
// duplicated sub-nodes, one per biclique extent per side, and retargets
// the biclique edges onto the children. Node iteration is serial and
// ascending.
func (b *Bluntifier) duplicateAllNodeTermini() error {
	for id := handlegraph.NodeID(1); id <= b.originalMaxID; id++ {
		info, err := NewNodeInfo(b.nodeToBicliqueEdge, nil, b.bicliques, b.overlaps, id)
		if err != nil {
			return err
		}
		extents, bicliqueOrder := info.SortedBicliqueExtents()
		if len(extents[0]) == 0 && len(extents[1]) == 0 {
			continue
		}

		parent := handlegraph.PackHandle(id, false)
		origSeq := b.graph.Sequence(parent)
		b.removeParticipatingEdges(id, bicliqueOrder)

		prefixCarve := 0
		if len(extents[0]) > 0 {
			dup, err := duplicatePrefix(b.graph, extents[0], parent)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "node %d prefix", id)
			}
			if err := b.updateBicliqueEdges(parent, dup.children, bicliqueOrder, 0); err != nil {
				return err
			}
			b.registerChildren(id, 0, dup, extents[0], bicliqueOrder[0])
			parent = dup.children[0]
			prefixCarve = dup.carve
			b.originalPrefixCarve[id] = dup.carve
		}

		if len(extents[1]) > 0 {
			remaining := b.graph.Length(parent)
			if prefixCarve == len(origSeq) {
				// The prefix consumed the whole node without a split;
				// every suffix extent intersects it.
				remaining = 0
			}
			// A sole suffix extent matching the remainder needs no carve:
			// the remainder itself is the terminus, and its biclique edges
			// already point at it. When a prefix split renamed the
			// remainder, record the link so factoring can still resolve
			// it to the original node.
			if len(extents[1]) == 1 && extents[1][0] == remaining {
				if parent.ID() != id {
					b.childToParent[parent.ID()] = ChildRecord{Parent: id, Side: 1}
					b.parentToChildren[id] = append(b.parentToChildren[id], parent)
				}
				continue
			}
			dup, err := duplicateSuffix(b.graph, extents[1], parent, origSeq, remaining)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "node %d suffix", id)
			}
			if err := b.updateBicliqueEdges(parent, dup.children, bicliqueOrder, 1); err != nil {
				return err
			}
			b.registerChildren(id, 1, dup, extents[1], bicliqueOrder[1])
		}
	}
	return nil
}

// duplicatePrefix carves the prefix staircase: the largest extent splits
// the node, smaller extents become duplicated sub-nodes wired into the
// remainder. The node's identity path traverses the split pieces in order.
func duplicatePrefix(g *handlegraph.Graph, sizes []int, parent handlegraph.Handle) (*duplication, error) {
	length := g.Length(parent)
	seq := g.Sequence(parent)
	dup := &duplication{}

	if sizes[0] > length {
		return nil, errors.New(errors.ErrCodeInternal,
			"prefix overlap of %d bases exceeds node length %d", sizes[0], length)
	}
	if sizes[0] == length {
		// Nothing remains to split off: the node itself is both the
		// remainder and the largest terminus.
		dup.children = append(dup.children, parent, parent)
		dup.carve = length
	} else {
		pieces, err := g.SplitHandle(parent, []int{sizes[0]})
		if err != nil {
			return nil, err
		}
		dup.children = append(dup.children, pieces[1], pieces[0])
		dup.carve = sizes[0]
	}

	rest := dup.children[0]
	for _, size := range sizes[1:] {
		child := g.CreateHandle(seq[:size])
		g.CreateEdge(handlegraph.Edge{From: child, To: rest})
		dup.children = append(dup.children, child)
	}
	return dup, nil
}

// duplicateSuffix carves the suffix staircase. Extents that fit the
// remainder split or duplicate it; extents that reach past the opposite
// side's carve line are duplicated from the original sequence and recorded
// as overlapping overlaps (no remainder edge: splicing stitches them).
func duplicateSuffix(g *handlegraph.Graph, sizes []int, parent handlegraph.Handle, origSeq []byte, remaining int) (*duplication, error) {
	length := g.Length(parent)
	seq := g.Sequence(parent)
	dup := &duplication{children: []handlegraph.Handle{parent}}

	// Find the largest extent that fits strictly inside the remainder: it
	// is the one that splits the node.
	splitAt := -1
	for i, size := range sizes {
		if size > len(origSeq) {
			return nil, errors.New(errors.ErrCodeInternal,
				"suffix overlap of %d bases exceeds node length %d", size, len(origSeq))
		}
		if size < remaining {
			splitAt = i
			break
		}
	}

	var rest handlegraph.Handle
	var terminus handlegraph.Handle
	if splitAt >= 0 {
		pieces, err := g.SplitHandle(parent, []int{length - sizes[splitAt]})
		if err != nil {
			return nil, err
		}
		rest, terminus = pieces[0], pieces[1]
	} else {
		rest = parent
	}
	dup.children[0] = rest
	dup.carve = 0

	for i, size := range sizes {
		switch {
		case i == splitAt:
			dup.children = append(dup.children, terminus)
			dup.carve = size
		case size < remaining:
			child := g.CreateHandle(seq[length-size:])
			g.CreateEdge(handlegraph.Edge{From: rest, To: child})
			dup.children = append(dup.children, child)
		case size == remaining && remaining > 0:
			// The extent consumes the whole remainder: duplicate it in
			// parallel, inheriting the remainder's incoming edges.
			child := g.CreateHandle(seq[length-size:])
			g.FollowEdges(rest, true, func(x handlegraph.Handle) bool {
				g.CreateEdge(handlegraph.Edge{From: x, To: child})
				return true
			})
			dup.children = append(dup.children, child)
		default:
			// Overlapping overlap: carve from the original sequence and
			// leave the child unattached for the stitch pass.
			child := g.CreateHandle(origSeq[len(origSeq)-size:])
			dup.children = append(dup.children, child)
			dup.oo = append(dup.oo, i)
		}
	}
	return dup, nil
}

// removeParticipatingEdges destroys every graph edge that touches the node
// and participates in any of its bicliques; they are recreated against the
// duplicated children.
func (b *Bluntifier) removeParticipatingEdges(node handlegraph.NodeID, bicliqueOrder [2][]int) {
	for side := 0; side < 2; side++ {
		for _, bic := range bicliqueOrder[side] {
			for _, edge := range b.bicliques.Biclique(bic) {
				if edge.From.ID() == node || edge.To.ID() == node {
					b.graph.DestroyEdge(edge)
				}
			}
		}
	}
}

// updateBicliqueEdges retargets every biclique edge endpoint that
// referenced the carved handle. An endpoint consuming the carved side's
// end moves to that biclique's terminus child; an endpoint consuming the
// opposite end moves to the remainder. Orientation is preserved, which
// also covers reversing and non-reversing self-loops: both endpoints of a
// self-edge are retargeted in the same pass.
func (b *Bluntifier) updateBicliqueEdges(old handlegraph.Handle, children []handlegraph.Handle, bicliqueOrder [2][]int, dupedSide int) error {
	position := make(map[int]int, len(bicliqueOrder[dupedSide]))
	for i, bic := range bicliqueOrder[dupedSide] {
		position[bic] = i
	}

	seen := make(map[int]bool)
	var order []int
	for side := 0; side < 2; side++ {
		for _, bic := range bicliqueOrder[side] {
			if !seen[bic] {
				seen[bic] = true
				order = append(order, bic)
			}
		}
	}

	oldID := old.ID()
	for _, bic := range order {
		for j, edge := range b.bicliques.Biclique(bic) {
			oldEdge := edge
			changed := false

			retarget := func(h handlegraph.Handle, consumesSide int) handlegraph.Handle {
				if h.ID() != oldID {
					return h
				}
				changed = true
				var target handlegraph.Handle
				if consumesSide == dupedSide {
					pos, ok := position[bic]
					if !ok {
						// The endpoint consumes the carved side but its
						// biclique was not factored there: inconsistent
						// bookkeeping.
						target = children[0]
					} else {
						target = children[pos+1]
					}
				} else {
					target = children[0]
				}
				if h.IsReverse() {
					return target.Flip()
				}
				return target
			}

			// From forward consumes the node's 3' end; To forward its 5'
			// end; reversal swaps each.
			fromSide := 1
			if edge.From.IsReverse() {
				fromSide = 0
			}
			toSide := 0
			if edge.To.IsReverse() {
				toSide = 1
			}
			edge.From = retarget(edge.From, fromSide)
			edge.To = retarget(edge.To, toSide)

			if changed {
				// The previous representation may linger from an earlier
				// carve phase; replace it rather than accumulate.
				b.graph.DestroyEdge(oldEdge)
				b.graph.CreateEdge(edge)
				b.overlaps.UpdateEdge(oldEdge, edge)
				b.bicliques.SetEdge(BicliqueEdgeIndex{Biclique: bic, Edge: j}, edge)
			}
		}
	}
	return nil
}

// registerChildren records parent/child links for the carved termini and
// files any overlapping-overlap children.
func (b *Bluntifier) registerChildren(node handlegraph.NodeID, side int, dup *duplication, extents []int, bicliqueOrder []int) {
	ooAt := make(map[int]bool, len(dup.oo))
	for _, i := range dup.oo {
		ooAt[i] = true
	}
	for i, child := range dup.children[1:] {
		b.childToParent[child.ID()] = ChildRecord{Parent: node, Side: side}
		b.parentToChildren[node] = append(b.parentToChildren[node], child)
		if ooAt[i] {
			rec, ok := b.overlappingOverlaps[node]
			if !ok {
				rec = &OverlappingOverlap{
					ParentPathName: strconv.FormatInt(int64(node), 10),
					Length:         b.originalLengths[node],
				}
				b.overlappingOverlaps[node] = rec
			}
			rec.Children[side] = append(rec.Children[side], OOChild{
				Handle:   child,
				Extent:   extents[i],
				Biclique: bicliqueOrder[i],
			})
		}
	}
}
