package bluntify

import (
	"sort"

	"github.com/rlorigro/GetBlunted/pkg/errors"
	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
	"github.com/rlorigro/GetBlunted/pkg/poa"
)

// alignAllBicliques runs the POA collaborator over every biclique.
func (b *Bluntifier) alignAllBicliques() error {
	b.subgraphs = make([]*poa.Subgraph, b.bicliques.Size())
	for i := 0; i < b.bicliques.Size(); i++ {
		sub, err := poa.AlignBicliqueOverlaps(b.graph, b.overlaps, b.bicliques.Biclique(i))
		if err != nil {
			return err
		}
		b.subgraphs[i] = sub
	}
	return nil
}

// spliceSubgraphs copies every biclique subgraph into the main graph and
// wires each terminus's path to the surviving parents on its far side.
// Termini that participate on only one side are queued for destruction.
func (b *Bluntifier) spliceSubgraphs() error {
	for _, sub := range b.subgraphs {
		sub.Graph.IncrementNodeIDs(b.graph.MaxNodeID())
		if err := handlegraph.CopyGraph(sub.Graph, b.graph); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "copy biclique subgraph")
		}

		for side := 0; side < 2; side++ {
			for _, handle := range sortedKeys(sub.PathsPerHandle[side]) {
				info := sub.PathsPerHandle[side][handle]
				nodeID := handle.ID()

				if !b.isOONodeChild(nodeID) {
					path, ok := b.graph.Path(info.PathName)
					if !ok || path.Len() == 0 {
						return errors.New(errors.ErrCodeInternal, "spliced path %s missing", info.PathName)
					}

					parents := b.survivingParents(handle, side)
					if len(parents) == 0 && !b.isOONodeParent(nodeID) {
						return errors.New(errors.ErrCodeOrphanedTerminus,
							"biclique terminus does not have any parent: %d", nodeID)
					}

					for _, parent := range parents {
						if info.BicliqueSide == 0 {
							b.graph.CreateEdge(handlegraph.Edge{From: parent, To: path.Front()})
						} else {
							b.graph.CreateEdge(handlegraph.Edge{From: path.Back(), To: parent})
						}
					}
				}

				if !b.participatesOpposite(sub, handle, side) {
					b.toBeDestroyed[nodeID] = true
				}
			}
		}
	}
	return nil
}

// survivingParents finds the neighbors on the terminus's far side that are
// not queued for destruction. Side 0 termini (suffix overlaps) look left;
// side 1 termini (prefix overlaps) look right.
func (b *Bluntifier) survivingParents(handle handlegraph.Handle, side int) []handlegraph.Handle {
	goLeft := side == 0
	seen := make(map[handlegraph.Handle]bool)
	var parents []handlegraph.Handle
	b.graph.FollowEdges(handle, goLeft, func(h handlegraph.Handle) bool {
		if !b.toBeDestroyed[h.ID()] && !seen[h] {
			seen[h] = true
			parents = append(parents, h)
		}
		return true
	})
	sort.Slice(parents, func(i, j int) bool { return parents[i] < parents[j] })
	return parents
}

// participatesOpposite reports whether the terminus also has a path on the
// other biclique side, in either orientation.
func (b *Bluntifier) participatesOpposite(sub *poa.Subgraph, handle handlegraph.Handle, side int) bool {
	other := sub.PathsPerHandle[1-side]
	if _, ok := other[handle]; ok {
		return true
	}
	_, ok := other[handle.Flip()]
	return ok
}

// isOONodeChild reports whether the node is a duplicated child involved in
// an overlapping overlap; those are wired by the stitch pass instead of
// the default splice.
func (b *Bluntifier) isOONodeChild(node handlegraph.NodeID) bool {
	rec, ok := b.childToParent[node]
	if !ok {
		return false
	}
	oo, ok := b.overlappingOverlaps[rec.Parent]
	if !ok {
		return false
	}
	for side := 0; side < 2; side++ {
		for _, child := range oo.Children[side] {
			if child.Handle.ID() == node {
				return true
			}
		}
	}
	return false
}

// isOONodeParent reports whether the node lies on the preserved path of an
// overlapping-overlap original node.
func (b *Bluntifier) isOONodeParent(node handlegraph.NodeID) bool {
	rec, ok := b.childToParent[node]
	if !ok {
		return false
	}
	oo, ok := b.overlappingOverlaps[rec.Parent]
	if !ok {
		return false
	}
	path, ok := b.graph.Path(oo.ParentPathName)
	if !ok {
		return false
	}
	for _, step := range path.Steps() {
		if step.ID() == node {
			return true
		}
	}
	return false
}

func sortedKeys(m map[handlegraph.Handle]poa.PathInfo) []handlegraph.Handle {
	keys := make([]handlegraph.Handle, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
