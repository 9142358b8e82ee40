package bluntify

import (
	"sort"
	"sync"

	"github.com/rlorigro/GetBlunted/pkg/adjacency"
	"github.com/rlorigro/GetBlunted/pkg/biclique"
	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
)

// BicliqueEdgeIndex addresses one edge of one biclique in the global
// bicliques vector.
type BicliqueEdgeIndex struct {
	Biclique int
	Edge     int
}

// Bicliques is the global vector of deduplicated biclique edge lists. After
// deduplication every canonical edge appears in exactly one biclique.
type Bicliques struct {
	bicliques [][]handlegraph.Edge
}

// Size returns the number of bicliques.
func (b *Bicliques) Size() int {
	return len(b.bicliques)
}

// Biclique returns the edge list of biclique i.
func (b *Bicliques) Biclique(i int) []handlegraph.Edge {
	return b.bicliques[i]
}

// Edge returns the edge behind an index pair.
func (b *Bicliques) Edge(i BicliqueEdgeIndex) handlegraph.Edge {
	return b.bicliques[i.Biclique][i.Edge]
}

// SetEdge replaces the edge behind an index pair.
func (b *Bicliques) SetEdge(i BicliqueEdgeIndex, e handlegraph.Edge) {
	b.bicliques[i.Biclique][i.Edge] = e
}

// computeBicliqueCovers runs the cover phase: one worker per adjacency
// component, each appending its deduplicated bicliques under the shared
// mutex. This is the only parallel phase of the pipeline; workers hold
// read-only references to the graph.
func (b *Bluntifier) computeBicliqueCovers(components []*adjacency.Component) error {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		firstMu sync.Mutex
		first   error
	)
	sem := make(chan struct{}, b.workers)

	for _, comp := range components {
		// Trivial adjacency components (dead ends) have nothing to cover.
		if comp.Size() == 1 {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(comp *adjacency.Component) {
			defer wg.Done()
			defer func() { <-sem }()
			var failed error
			comp.DecomposeIntoBipartiteBlocks(func(bg *adjacency.BipartiteGraph) {
				if failed != nil {
					return
				}
				cover := biclique.Cover(bg, b.workLimit)
				dedup, err := b.deduplicateAndCanonicalize(cover)
				if err != nil {
					failed = err
					return
				}
				for _, bic := range dedup {
					mu.Lock()
					b.bicliques.bicliques = append(b.bicliques.bicliques, bic)
					mu.Unlock()
				}
			})
			if failed != nil {
				firstMu.Lock()
				if first == nil {
					first = failed
				}
				firstMu.Unlock()
			}
		}(comp)
	}
	wg.Wait()
	return first
}

// deduplicateAndCanonicalize sorts the cover's bicliques in descending
// |L|*|R| order (repeated edges land in the larger subgraphs, which tend
// to collapse more compactly) and assigns each canonical edge to the first
// biclique that claims it. Blunt edges (zero-length overlaps) are dropped:
// they need no rewiring and pass through to the output untouched.
func (b *Bluntifier) deduplicateAndCanonicalize(cover []biclique.Bipartition) ([][]handlegraph.Edge, error) {
	sort.SliceStable(cover, func(i, j int) bool {
		return len(cover[i].Left)*len(cover[i].Right) > len(cover[j].Left)*len(cover[j].Right)
	})

	processed := make(map[handlegraph.Edge]bool)
	var out [][]handlegraph.Edge
	for _, bic := range cover {
		var edges []handlegraph.Edge
		for _, l := range bic.Left {
			for _, r := range bic.Right {
				edge := handlegraph.Edge{From: l, To: r.Flip()}
				canonical, align, err := b.overlaps.CanonicalizeAndFind(edge)
				if err != nil {
					return nil, err
				}
				key := canonical.Canonical()
				if processed[key] {
					continue
				}
				processed[key] = true
				u, v := align.ComputeLengths()
				if u == 0 || v == 0 {
					continue
				}
				edges = append(edges, canonical)
			}
		}
		if len(edges) > 0 {
			out = append(out, edges)
		}
	}
	return out, nil
}

// mapSpliceSitesByNode records, for every node, which biclique edges touch
// it. A self-loop contributes a single mapping.
func (b *Bluntifier) mapSpliceSitesByNode() {
	for i := 0; i < b.bicliques.Size(); i++ {
		for j, edge := range b.bicliques.Biclique(i) {
			left := edge.From.ID()
			right := edge.To.ID()
			b.nodeToBicliqueEdge[left] = append(b.nodeToBicliqueEdge[left], BicliqueEdgeIndex{Biclique: i, Edge: j})
			if right != left {
				b.nodeToBicliqueEdge[right] = append(b.nodeToBicliqueEdge[right], BicliqueEdgeIndex{Biclique: i, Edge: j})
			}
		}
	}
}

// harmonizeBicliqueOrientations rewrites every biclique edge into the
// representation stored in the overlap map, so that downstream stages see
// one consistent orientation per edge.
func (b *Bluntifier) harmonizeBicliqueOrientations() error {
	for i := 0; i < b.bicliques.Size(); i++ {
		for j, edge := range b.bicliques.Biclique(i) {
			canonical, _, err := b.overlaps.CanonicalizeAndFind(edge)
			if err != nil {
				return err
			}
			b.bicliques.SetEdge(BicliqueEdgeIndex{Biclique: i, Edge: j}, canonical)
		}
	}
	return nil
}
