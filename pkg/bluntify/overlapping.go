package bluntify

import (
	"sort"

	"github.com/rlorigro/GetBlunted/pkg/errors"
	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
	"github.com/rlorigro/GetBlunted/pkg/poa"
)

// spliceOverlappingOverlaps stitches each overlapping-overlap child into
// the graph once, after normal splicing. An OO child's copied path spells
// a region the parent already represents (through the opposite side's
// subgraph and the preserved middle pieces), so instead of wiring the
// duplicate in, the pass rebuilds that region from the surviving nodes and
// reroutes every path that traversed the duplicate. This is a bounded
// correction applied once per OO child.
func (b *Bluntifier) spliceOverlappingOverlaps() error {
	var parents []handlegraph.NodeID
	for id := range b.overlappingOverlaps {
		parents = append(parents, id)
	}
	sort.Slice(parents, func(i, j int) bool { return parents[i] < parents[j] })

	for _, parent := range parents {
		oo := b.overlappingOverlaps[parent]
		for _, child := range oo.Children[1] {
			if err := b.stitchSuffixChild(parent, oo, child); err != nil {
				return err
			}
		}
		// Prefix-side OO children do not arise in this pipeline (the
		// prefix is carved first, while the whole node is available), but
		// reject them loudly rather than producing a half-stitched graph.
		if len(oo.Children[0]) > 0 {
			return errors.New(errors.ErrCodeInternal,
				"node %d has prefix-side overlapping overlaps", parent)
		}
	}
	return nil
}

// stitchSuffixChild replaces a suffix OO child's copied path with the
// parent's surviving representation of the same interval: the prefix
// subgraph's tail pieces followed by the preserved middle pieces.
func (b *Bluntifier) stitchSuffixChild(parent handlegraph.NodeID, oo *OverlappingOverlap, child OOChild) error {
	p := oo.Length
	entry := p - child.Extent

	// The prefix side's largest terminus carries the parent's head
	// representation; its spliced path spells [0, M).
	prefixTerminus, ok := b.largestChild(parent, 0)
	if !ok {
		return errors.New(errors.ErrCodeOrphanedTerminus,
			"overlapping overlap on node %d has no prefix terminus", parent)
	}
	m := b.originalPrefixCarve[parent]
	if entry > m {
		return errors.New(errors.ErrCodeInternal,
			"overlapping overlap on node %d does not reach the prefix carve", parent)
	}

	prefixPath := poa.PathName(prefixTerminus, 1)
	if _, ok := b.graph.Path(prefixPath); !ok {
		return errors.New(errors.ErrCodeInternal, "prefix path %s missing", prefixPath)
	}

	// Split the prefix representation at the entry offset and collect its
	// tail: the shared interior [entry, M) as the parent already spells
	// it.
	tailStart, err := b.splitPathAt(prefixPath, entry)
	if err != nil {
		return err
	}
	pf, _ := b.graph.Path(prefixPath)
	replacement := append([]handlegraph.Handle{}, pf.Steps()[tailStart:]...)

	// Append the preserved middle pieces [M, P): the steps of the parent's
	// identity path that are not termini.
	parentPath, ok := b.graph.Path(oo.ParentPathName)
	if !ok {
		return errors.New(errors.ErrCodeInternal, "parent path %s missing", oo.ParentPathName)
	}
	for _, step := range parentPath.Steps() {
		if _, isChild := b.childToParent[step.ID()]; !isChild {
			replacement = append(replacement, step)
		}
	}

	// The duplicate: the OO child's copied subgraph path spelling
	// [entry, P).
	ooPath := poa.PathName(child.Handle, 0)
	dup, ok := b.graph.Path(ooPath)
	if !ok {
		return errors.New(errors.ErrCodeInternal, "overlapping overlap path %s missing", ooPath)
	}
	oldRun := append([]handlegraph.Handle{}, dup.Steps()...)

	b.replaceRun(oldRun, replacement)
	b.toBeDestroyed[child.Handle.ID()] = true
	return nil
}

// largestChild returns the first registered terminus of a node side; the
// registration order follows extents descending, so it is the largest.
func (b *Bluntifier) largestChild(parent handlegraph.NodeID, side int) (handlegraph.Handle, bool) {
	for _, child := range b.parentToChildren[parent] {
		if rec, ok := b.childToParent[child.ID()]; ok && rec.Side == side {
			return child, true
		}
	}
	return 0, false
}

// splitPathAt splits the path's spelled sequence at offset, dividing a
// node when the offset lands inside one, and returns the index of the
// first step at or after the offset. Splitting rewrites every path through
// the divided node.
func (b *Bluntifier) splitPathAt(name string, offset int) (int, error) {
	path, ok := b.graph.Path(name)
	if !ok {
		return 0, errors.New(errors.ErrCodeInternal, "path %s missing", name)
	}
	at := 0
	for i, step := range path.Steps() {
		length := b.graph.Length(step)
		if at == offset {
			return i, nil
		}
		if offset < at+length {
			if _, err := b.graph.SplitHandle(step, []int{offset - at}); err != nil {
				return 0, errors.Wrap(errors.ErrCodeInternal, err, "split %s at %d", name, offset)
			}
			// The split rewrote the path in place; the second piece now
			// sits at i+1.
			return i + 1, nil
		}
		at += length
	}
	if at == offset {
		return path.Len(), nil
	}
	return 0, errors.New(errors.ErrCodeInternal, "offset %d past end of path %s", offset, name)
}

// replaceRun substitutes newRun for every occurrence of oldRun in the
// graph's paths, reroutes the run's outer edges onto newRun's endpoints,
// and queues nodes of oldRun that no path references anymore.
func (b *Bluntifier) replaceRun(oldRun, newRun []handlegraph.Handle) {
	if len(oldRun) == 0 || len(newRun) == 0 {
		return
	}
	inOld := make(map[handlegraph.NodeID]bool, len(oldRun))
	for _, h := range oldRun {
		inOld[h.ID()] = true
	}

	// Rewrite paths containing the exact run.
	type rewrite struct {
		name  string
		steps []handlegraph.Handle
	}
	var rewrites []rewrite
	b.graph.ForEachPath(func(p *handlegraph.Path) bool {
		steps := p.Steps()
		var out []handlegraph.Handle
		touched := false
		for i := 0; i < len(steps); {
			if i+len(oldRun) <= len(steps) && runMatches(steps[i:], oldRun) {
				out = append(out, newRun...)
				i += len(oldRun)
				touched = true
				continue
			}
			out = append(out, steps[i])
			i++
		}
		if touched {
			rewrites = append(rewrites, rewrite{name: p.Name(), steps: out})
		}
		return true
	})
	for _, rw := range rewrites {
		b.graph.DestroyPath(rw.name)
		b.graph.CreatePath(rw.name)
		for _, s := range rw.steps {
			b.graph.AppendStep(rw.name, s)
		}
	}

	// Reroute the run's outer edges.
	b.graph.FollowEdges(oldRun[0], true, func(x handlegraph.Handle) bool {
		if !inOld[x.ID()] {
			b.graph.CreateEdge(handlegraph.Edge{From: x, To: newRun[0]})
		}
		return true
	})
	last := oldRun[len(oldRun)-1]
	b.graph.FollowEdges(last, false, func(x handlegraph.Handle) bool {
		if !inOld[x.ID()] {
			b.graph.CreateEdge(handlegraph.Edge{From: newRun[len(newRun)-1], To: x})
		}
		return true
	})

	// Queue run nodes nothing references anymore.
	for _, h := range oldRun {
		referenced := false
		b.graph.ForEachPath(func(p *handlegraph.Path) bool {
			for _, step := range p.Steps() {
				if step.ID() == h.ID() {
					referenced = true
					return false
				}
			}
			return true
		})
		if !referenced {
			b.toBeDestroyed[h.ID()] = true
		}
	}
}

func runMatches(steps, run []handlegraph.Handle) bool {
	for i, h := range run {
		if steps[i] != h {
			return false
		}
	}
	return true
}
