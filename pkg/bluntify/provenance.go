package bluntify

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/rlorigro/GetBlunted/pkg/errors"
	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
	"github.com/rlorigro/GetBlunted/pkg/poa"
)

// ProvenanceRecord maps one surviving node onto a half-open interval of a
// parent's forward-strand sequence.
type ProvenanceRecord struct {
	Parent   handlegraph.NodeID
	Start    int
	Stop     int
	Reversal bool
}

// computeProvenance walks each original node's preserved identity path for
// the middle pieces, then each biclique contribution's spliced path for
// the overlap regions. Records are a set, so regions reachable through
// more than one route deduplicate naturally.
func (b *Bluntifier) computeProvenance() error {
	for parent := handlegraph.NodeID(1); parent <= b.originalMaxID; parent++ {
		name := strconv.FormatInt(int64(parent), 10)
		path, ok := b.graph.Path(name)
		if !ok {
			return errors.New(errors.ErrCodeInternal, "identity path %s missing", name)
		}

		parentLength := 0
		for _, step := range path.Steps() {
			parentLength += b.graph.Length(step)
		}

		// Middle pieces: steps that are not termini and will survive.
		at := 0
		for _, step := range path.Steps() {
			length := b.graph.Length(step)
			_, isChild := b.childToParent[step.ID()]
			if !isChild && !b.toBeDestroyed[step.ID()] {
				b.addProvenance(step.ID(), ProvenanceRecord{
					Parent:   parent,
					Start:    at,
					Stop:     at + length,
					Reversal: step.IsReverse(),
				})
			}
			at += length
		}

		// Biclique contributions. The graph has been edited, so the
		// factored overlaps are recomputed through the child-to-parent
		// map.
		info, err := NewNodeInfo(b.nodeToBicliqueEdge, b.childToParent, b.bicliques, b.overlaps, parent)
		if err != nil {
			return err
		}
		for side := 0; side < 2; side++ {
			bicliqueIndexes := make([]int, 0, len(info.Overlaps(side)))
			for bic := range info.Overlaps(side) {
				bicliqueIndexes = append(bicliqueIndexes, bic)
			}
			sort.Ints(bicliqueIndexes)

			for _, bic := range bicliqueIndexes {
				infos := info.Overlaps(side)[bic]
				// The longest overlap defines this biclique's extent.
				longest := infos[0]
				edge := b.bicliques.Biclique(bic)[longest.EdgeIndex]

				childID, parentSide, reversal, start := b.locateContribution(edge, parent, parentLength, longest.Length, side)
				if childID == 0 {
					return errors.New(errors.ErrCodeParentNotFound,
						"node %d not found on biclique %d edge", parent, bic)
				}

				pathName := poa.PathName(handlegraph.PackHandle(childID, false), parentSide)
				childPath, ok := b.graph.Path(pathName)
				if !ok {
					// The terminus never reached a subgraph (trivially
					// skipped duplications keep the remainder itself as
					// the terminus); the middle-piece walk covers it.
					continue
				}
				at := start
				for _, step := range childPath.Steps() {
					length := b.graph.Length(step)
					b.addProvenance(step.ID(), ProvenanceRecord{
						Parent:   parent,
						Start:    at,
						Stop:     at + length,
						Reversal: reversal,
					})
					at += length
				}
			}
		}
	}
	return nil
}

// locateContribution finds which endpoint of a biclique edge descends from
// the parent on the given node side and derives the contribution's child
// id, subgraph side, orientation, and starting offset in the parent's
// coordinates. Matching the node side matters for self-loops, where both
// endpoints descend from the parent.
func (b *Bluntifier) locateContribution(edge handlegraph.Edge, parent handlegraph.NodeID, parentLength, overlapLength, side int) (handlegraph.NodeID, int, bool, int) {
	resolve := func(id handlegraph.NodeID) handlegraph.NodeID {
		if rec, ok := b.childToParent[id]; ok {
			return rec.Parent
		}
		return id
	}

	fromNodeSide := 1
	if edge.From.IsReverse() {
		fromNodeSide = 0
	}
	toNodeSide := 0
	if edge.To.IsReverse() {
		toNodeSide = 1
	}

	fromContribution := func() (handlegraph.NodeID, int, bool, int) {
		reversal := edge.From.IsReverse()
		start := 0
		if !reversal {
			start = parentLength - overlapLength
		}
		return edge.From.ID(), 0, reversal, start
	}
	toContribution := func() (handlegraph.NodeID, int, bool, int) {
		reversal := edge.To.IsReverse()
		start := 0
		if reversal {
			start = parentLength - overlapLength
		}
		return edge.To.ID(), 1, reversal, start
	}

	fromMatches := resolve(edge.From.ID()) == parent
	toMatches := resolve(edge.To.ID()) == parent
	switch {
	case fromMatches && fromNodeSide == side:
		return fromContribution()
	case toMatches && toNodeSide == side:
		return toContribution()
	case fromMatches:
		return fromContribution()
	case toMatches:
		return toContribution()
	}
	return 0, 0, false, 0
}

func (b *Bluntifier) addProvenance(node handlegraph.NodeID, rec ProvenanceRecord) {
	set, ok := b.provenance[node]
	if !ok {
		set = make(map[ProvenanceRecord]struct{})
		b.provenance[node] = set
	}
	set[rec] = struct{}{}
}

// WriteProvenance writes one line per surviving node:
//
//	<child_id>\t<parent_id>[start:stop]<+/->,...
//
// with 0-based half-open coordinates on the parent's forward strand.
func (b *Bluntifier) WriteProvenance(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var nodes []handlegraph.NodeID
	for id := range b.provenance {
		nodes = append(nodes, id)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	for _, id := range nodes {
		var records []ProvenanceRecord
		for rec := range b.provenance[id] {
			records = append(records, rec)
		}
		sort.Slice(records, func(i, j int) bool {
			a, c := records[i], records[j]
			if a.Parent != c.Parent {
				return a.Parent < c.Parent
			}
			if a.Start != c.Start {
				return a.Start < c.Start
			}
			return a.Stop < c.Stop
		})

		fmt.Fprintf(w, "%d\t", id)
		for i, rec := range records {
			if i > 0 {
				w.WriteByte(',')
			}
			mark := byte('+')
			if rec.Reversal {
				mark = '-'
			}
			fmt.Fprintf(w, "%d[%d:%d]%c", rec.Parent, rec.Start, rec.Stop, mark)
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write provenance")
	}
	return nil
}
