// Package bluntify rewrites an assembly graph with overlapping adjacent
// nodes into an equivalent overlap-free graph.
//
// The pipeline: read the GFA into a handle graph and overlap map, compute
// adjacency components, cover each component's bipartite blocks with
// bicliques (the only parallel phase), factor each node's memberships by
// side, duplicate node termini into staircases of sub-nodes, collapse each
// biclique's overlaps into a partial-order subgraph, splice the subgraphs
// into the main graph, stitch overlapping overlaps, compute provenance,
// and write the blunted GFA.
//
// The Bluntifier owns the only process-wide mutable state: the graph
// container, the overlap map, the bicliques vector, and the provenance
// map. Everything else borrows from it.
package bluntify

import (
	"runtime"

	charmlog "github.com/charmbracelet/log"

	"github.com/rlorigro/GetBlunted/pkg/adjacency"
	"github.com/rlorigro/GetBlunted/pkg/biclique"
	"github.com/rlorigro/GetBlunted/pkg/gfa"
	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
	"github.com/rlorigro/GetBlunted/pkg/overlaps"
	"github.com/rlorigro/GetBlunted/pkg/poa"
)

// Options configure a run.
type Options struct {
	// Workers bounds the biclique-cover worker pool. Zero means one
	// worker per CPU.
	Workers int
	// WorkLimit bounds the graphs the exact cover is attempted on; zero
	// means the default.
	WorkLimit int
	// Logger receives stage progress. Nil means the default logger.
	Logger *charmlog.Logger
}

// Bluntifier drives the pipeline over one loaded graph.
type Bluntifier struct {
	graph    *handlegraph.Graph
	idMap    *gfa.IDMap
	overlaps *overlaps.Map

	bicliques          *Bicliques
	nodeToBicliqueEdge map[handlegraph.NodeID][]BicliqueEdgeIndex

	parentToChildren    map[handlegraph.NodeID][]handlegraph.Handle
	childToParent       map[handlegraph.NodeID]ChildRecord
	overlappingOverlaps map[handlegraph.NodeID]*OverlappingOverlap

	subgraphs     []*poa.Subgraph
	toBeDestroyed map[handlegraph.NodeID]bool
	provenance    map[handlegraph.NodeID]map[ProvenanceRecord]struct{}

	originalMaxID       handlegraph.NodeID
	originalLengths     map[handlegraph.NodeID]int
	originalPrefixCarve map[handlegraph.NodeID]int

	workers   int
	workLimit int
	logger    *charmlog.Logger
}

// New builds a Bluntifier around an already-loaded GFA result.
func New(res *gfa.Result, opts Options) *Bluntifier {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = charmlog.Default()
	}
	return &Bluntifier{
		graph:               res.Graph,
		idMap:               res.IDMap,
		overlaps:            res.Overlaps,
		bicliques:           &Bicliques{},
		nodeToBicliqueEdge:  make(map[handlegraph.NodeID][]BicliqueEdgeIndex),
		parentToChildren:    make(map[handlegraph.NodeID][]handlegraph.Handle),
		childToParent:       make(map[handlegraph.NodeID]ChildRecord),
		overlappingOverlaps: make(map[handlegraph.NodeID]*OverlappingOverlap),
		toBeDestroyed:       make(map[handlegraph.NodeID]bool),
		provenance:          make(map[handlegraph.NodeID]map[ProvenanceRecord]struct{}),
		originalLengths:     make(map[handlegraph.NodeID]int),
		originalPrefixCarve: make(map[handlegraph.NodeID]int),
		workers:             workers,
		workLimit:           opts.WorkLimit,
		logger:              logger,
	}
}

// Graph exposes the underlying graph (for writers and tests).
func (b *Bluntifier) Graph() *handlegraph.Graph { return b.graph }

// IDMap exposes the segment name map.
func (b *Bluntifier) IDMap() *gfa.IDMap { return b.idMap }

// Overlaps exposes the overlap map.
func (b *Bluntifier) Overlaps() *overlaps.Map { return b.overlaps }

// Bicliques exposes the deduplicated cover.
func (b *Bluntifier) Bicliques() *Bicliques { return b.bicliques }

// Provenance returns the records for one surviving node.
func (b *Bluntifier) Provenance(node handlegraph.NodeID) []ProvenanceRecord {
	var out []ProvenanceRecord
	for rec := range b.provenance[node] {
		out = append(out, rec)
	}
	return out
}

// Bluntify runs the whole pipeline in place.
func (b *Bluntifier) Bluntify() error {
	b.originalMaxID = b.graph.MaxNodeID()
	b.graph.ForEachHandle(func(h handlegraph.Handle) bool {
		b.originalLengths[h.ID()] = b.graph.Length(h)
		return true
	})

	components := adjacency.ComputeAllAdjacencyComponents(b.graph)
	b.logger.Info("computed adjacency components", "count", len(components))

	if err := b.computeBicliqueCovers(components); err != nil {
		return err
	}
	b.logger.Info("covered adjacencies", "bicliques", b.bicliques.Size())

	b.mapSpliceSitesByNode()

	if err := b.duplicateAllNodeTermini(); err != nil {
		return err
	}
	b.logger.Debug("duplicated node termini", "nodes", b.graph.NodeCount())

	if err := b.harmonizeBicliqueOrientations(); err != nil {
		return err
	}

	if err := b.alignAllBicliques(); err != nil {
		return err
	}
	b.logger.Debug("aligned biclique overlaps", "subgraphs", len(b.subgraphs))

	if err := b.spliceSubgraphs(); err != nil {
		return err
	}

	if err := b.spliceOverlappingOverlaps(); err != nil {
		return err
	}

	if err := b.computeProvenance(); err != nil {
		return err
	}

	b.destroyQueuedNodes()
	b.logger.Info("blunted graph",
		"nodes", b.graph.NodeCount(), "edges", b.graph.EdgeCount())
	return nil
}

// destroyQueuedNodes removes the duplicated termini that splicing replaced
// and drops their provenance entries and overlap records, so the final
// overlap map matches the final edge set.
func (b *Bluntifier) destroyQueuedNodes() {
	for id := range b.toBeDestroyed {
		if b.graph.HasNode(id) {
			b.graph.DestroyHandle(handlegraph.PackHandle(id, false))
		}
		delete(b.provenance, id)
	}
	var stale []handlegraph.Edge
	b.overlaps.ForEach(func(e handlegraph.Edge, _ *overlaps.Alignment) bool {
		if b.toBeDestroyed[e.From.ID()] || b.toBeDestroyed[e.To.ID()] {
			stale = append(stale, e)
		}
		return true
	})
	for _, e := range stale {
		b.overlaps.Delete(e)
	}
}

// WorkLimit returns the effective exact-cover work bound.
func (b *Bluntifier) WorkLimit() int {
	if b.workLimit <= 0 {
		return biclique.DefaultWorkLimit
	}
	return b.workLimit
}
