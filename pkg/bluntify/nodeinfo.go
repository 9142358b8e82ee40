package bluntify

import (
	"sort"

	"github.com/rlorigro/GetBlunted/pkg/errors"
	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
	"github.com/rlorigro/GetBlunted/pkg/overlaps"
)

// OverlapInfo is one overlap touching a node: the edge's position inside
// its biclique and the number of bases it consumes on the node.
type OverlapInfo struct {
	EdgeIndex int
	Length    int
}

// NodeInfo bins one node's biclique memberships by side and by overlap
// length: factoredOverlaps[side][bicliqueIndex] lists the overlaps of that
// biclique on that side, sorted by length descending. Side 0 is the node's
// 5' end, side 1 its 3' end, on the forward strand.
type NodeInfo struct {
	node             handlegraph.NodeID
	factoredOverlaps [2]map[int][]OverlapInfo
}

// NewNodeInfo factors the node's biclique edges by side. When
// childToParent is non-nil the graph has been edited and edge endpoints
// are resolved through it back to original node ids.
func NewNodeInfo(
	nodeToBicliqueEdge map[handlegraph.NodeID][]BicliqueEdgeIndex,
	childToParent map[handlegraph.NodeID]ChildRecord,
	bicliques *Bicliques,
	ovl *overlaps.Map,
	node handlegraph.NodeID,
) (*NodeInfo, error) {
	info := &NodeInfo{node: node}
	info.factoredOverlaps[0] = make(map[int][]OverlapInfo)
	info.factoredOverlaps[1] = make(map[int][]OverlapInfo)

	resolve := func(id handlegraph.NodeID) handlegraph.NodeID {
		if childToParent != nil {
			if rec, ok := childToParent[id]; ok {
				return rec.Parent
			}
		}
		return id
	}

	for _, index := range nodeToBicliqueEdge[node] {
		edge, align, err := ovl.CanonicalizeAndFind(bicliques.Edge(index))
		if err != nil {
			return nil, err
		}
		fromConsumed, toConsumed := align.ComputeLengths()

		leftID := resolve(edge.From.ID())
		rightID := resolve(edge.To.ID())

		// A node on the "left" of an edge overlaps on its right side, and
		// vice versa; a reversed endpoint swaps the side. Self-loops add
		// entries to both sides.
		matched := false
		if leftID == node {
			matched = true
			side := 1
			if edge.From.IsReverse() {
				side = 0
			}
			info.factoredOverlaps[side][index.Biclique] = append(
				info.factoredOverlaps[side][index.Biclique],
				OverlapInfo{EdgeIndex: index.Edge, Length: fromConsumed})
		}
		if rightID == node {
			matched = true
			side := 0
			if edge.To.IsReverse() {
				side = 1
			}
			info.factoredOverlaps[side][index.Biclique] = append(
				info.factoredOverlaps[side][index.Biclique],
				OverlapInfo{EdgeIndex: index.Edge, Length: toConsumed})
		}
		if !matched {
			return nil, errors.New(errors.ErrCodeParentNotFound,
				"node %d not found on either side of edge %d->%d",
				node, edge.From.ID(), edge.To.ID())
		}
	}

	info.sortFactoredOverlaps()
	return info, nil
}

// sortFactoredOverlaps orders each biclique's overlaps by length
// descending; ties keep edge-index order for determinism.
func (info *NodeInfo) sortFactoredOverlaps() {
	for side := 0; side < 2; side++ {
		for _, infos := range info.factoredOverlaps[side] {
			sort.SliceStable(infos, func(i, j int) bool {
				return infos[i].Length > infos[j].Length
			})
		}
	}
}

// SortedBicliqueExtents returns, per side, the distinct biclique extents
// in descending order along with the biclique achieving each. The longest
// overlap of a biclique defines its extent on this node side. Zero-length
// extents are dropped; they need no duplication.
func (info *NodeInfo) SortedBicliqueExtents() (extents [2][]int, bicliques [2][]int) {
	for side := 0; side < 2; side++ {
		type extent struct {
			biclique int
			length   int
		}
		var list []extent
		for bic, infos := range info.factoredOverlaps[side] {
			if infos[0].Length > 0 {
				list = append(list, extent{biclique: bic, length: infos[0].Length})
			}
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].length != list[j].length {
				return list[i].length > list[j].length
			}
			return list[i].biclique < list[j].biclique
		})
		for _, e := range list {
			extents[side] = append(extents[side], e.length)
			bicliques[side] = append(bicliques[side], e.biclique)
		}
	}
	return extents, bicliques
}

// Overlaps returns the factored overlaps of one side.
func (info *NodeInfo) Overlaps(side int) map[int][]OverlapInfo {
	return info.factoredOverlaps[side]
}
