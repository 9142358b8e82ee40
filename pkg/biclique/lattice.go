package biclique

import (
	"github.com/rlorigro/GetBlunted/pkg/adjacency"
)

// treeClass names one equivalence class of one centered tree.
type treeClass struct {
	tree  int
	class int
}

// GaloisLattice is the union of the centered Galois trees of a
// domino-free bipartite graph: a DAG whose nodes are the distinct maximal
// bicliques across all centers, plus a synthetic join (source) and meet
// (sink).
type GaloisLattice struct {
	graph     *adjacency.BipartiteGraph
	trees     []*CenteredGaloisTree
	bicliques []treeClass
	lattice   [][]int

	// join and meet are the last two entries of bicliques/lattice.
	join int
	meet int
}

// NewGaloisLattice builds the lattice. The second return is false when any
// center fails the neighbor-ordering property, i.e. the graph is not
// domino-free and the caller must fall back to the heuristic cover.
func NewGaloisLattice(b *adjacency.BipartiteGraph) (*GaloisLattice, bool) {
	g := &GaloisLattice{graph: b}
	g.trees = make([]*CenteredGaloisTree, 0, b.LeftSize())
	for _, center := range b.Left() {
		t, ok := NewCenteredGaloisTree(b, center)
		if !ok {
			return nil, false
		}
		g.trees = append(g.trees, t)
	}

	// For every edge, track the largest maximal biclique covering it;
	// first-seen wins ties, which keeps results machine-independent given
	// input ordering.
	edgeMax := make([][]treeClass, b.LeftSize())
	for i := range edgeMax {
		edgeMax[i] = make([]treeClass, b.RightSize())
		for j := range edgeMax[i] {
			edgeMax[i][j] = treeClass{tree: -1, class: -1}
		}
	}

	index := make(map[treeClass]int)
	linked := make(map[[2]int]bool)
	link := func(from, to int) {
		if from < 0 || from == to || linked[[2]int{from, to}] {
			return
		}
		linked[[2]int{from, to}] = true
		g.lattice[from] = append(g.lattice[from], to)
	}

	type frame struct {
		owner   int // lattice index of the biclique whose predecessors these are
		classes []int
		next    int
	}

	for ti, tree := range g.trees {
		stack := []frame{{owner: -1, classes: []int{tree.CentralEquivalenceClass()}}}
		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.next == len(f.classes) {
				stack = stack[:len(stack)-1]
				continue
			}
			class := f.classes[f.next]
			f.next++
			owner := f.owner

			// Check whether the maximal biclique covering this class's
			// edges is still maximal after adding this tree.
			l, r := tree.FirstEdge(class)
			li, _ := b.LeftIndex(l)
			ri, _ := b.RightIndex(r)
			maxSoFar := edgeMax[li][ri]
			maxSize := 0
			if maxSoFar.tree != -1 {
				maxSize = g.trees[maxSoFar.tree].RightSize(maxSoFar.class)
			}

			if tree.RightSize(class) > maxSize {
				// A larger maximal biclique covers these edges: give it a
				// lattice node, relabel the class's edges, and descend to
				// its predecessors.
				maxSoFar = treeClass{tree: ti, class: class}
				index[maxSoFar] = len(g.bicliques)
				g.bicliques = append(g.bicliques, maxSoFar)
				g.lattice = append(g.lattice, nil)
				for el, er := range tree.Edges(class) {
					eli, _ := b.LeftIndex(el)
					eri, _ := b.RightIndex(er)
					edgeMax[eli][eri] = maxSoFar
				}
				link(owner, index[maxSoFar])
				stack = append(stack, frame{owner: index[maxSoFar], classes: tree.Predecessors(class)})
			} else {
				link(owner, index[maxSoFar])
			}
		}
	}

	// Attach the synthetic join and meet to the ends of each edge's chain
	// of covering bicliques: the join points at every edge's largest
	// covering biclique, and every edge's smallest covering biclique
	// points at the meet. A separator then has to intersect each edge's
	// chain, which is exactly the cover property.
	edgeMin := make([][]treeClass, b.LeftSize())
	for i := range edgeMin {
		edgeMin[i] = make([]treeClass, b.RightSize())
		for j := range edgeMin[i] {
			edgeMin[i][j] = treeClass{tree: -1, class: -1}
		}
	}
	for _, tc := range g.bicliques {
		size := g.trees[tc.tree].RightSize(tc.class)
		bic := g.trees[tc.tree].Biclique(tc.class)
		for _, l := range bic.Left {
			li, ok := b.LeftIndex(l)
			if !ok {
				continue
			}
			for _, r := range bic.Right {
				ri, ok := b.RightIndex(r)
				if !ok {
					continue
				}
				cur := edgeMin[li][ri]
				if cur.tree == -1 || size < g.trees[cur.tree].RightSize(cur.class) {
					edgeMin[li][ri] = tc
				}
			}
		}
	}

	g.join = len(g.bicliques)
	g.bicliques = append(g.bicliques, treeClass{tree: -1, class: 0})
	g.lattice = append(g.lattice, nil)
	g.meet = len(g.bicliques)
	g.bicliques = append(g.bicliques, treeClass{tree: -1, class: 1})
	g.lattice = append(g.lattice, nil)

	for li := range edgeMax {
		for ri := range edgeMax[li] {
			top := edgeMax[li][ri]
			bottom := edgeMin[li][ri]
			if top.tree == -1 || bottom.tree == -1 {
				continue
			}
			link(g.join, index[top])
			link(index[bottom], g.meet)
		}
	}

	return g, true
}

// Size returns the number of maximal bicliques (excluding join and meet).
func (g *GaloisLattice) Size() int {
	return len(g.bicliques) - 2
}

// BicliqueCover converts the minimum separator into bicliques via the
// Galois trees.
func (g *GaloisLattice) BicliqueCover() []Bipartition {
	var cover []Bipartition
	for _, i := range g.Separator() {
		tc := g.bicliques[i]
		cover = append(cover, g.trees[tc.tree].Biclique(tc.class))
	}
	return cover
}

// Separator finds a minimum set of lattice nodes whose removal separates
// the join from the meet, i.e. a minimum antichain covering every maximal
// chain. Every non-terminal node is split into an in/out pair joined by a
// unit-capacity "across-the-node" edge; Dinic's algorithm finds the
// max-flow, and the saturated edges crossing the final reachability
// boundary translate back to lattice nodes.
func (g *GaloisLattice) Separator() []int {
	n := len(g.lattice)
	// Menger graph layout: node i of the lattice (i < n-2) becomes the
	// pair (2i, 2i+1); the join maps to source, the meet to sink.
	source := 2 * (n - 2)
	sink := source + 1

	nodeOf := func(menger int) int { return menger / 2 }
	inOf := func(lattice int) int {
		if lattice == g.meet {
			return sink
		}
		return 2 * lattice
	}

	type mEdge struct {
		from, to int
	}
	var edges []mEdge
	// acrossEdge[i] is the edge index of lattice node i's in->out edge,
	// or -1 for terminals.
	acrossEdge := make([]int, n)
	for i := range acrossEdge {
		acrossEdge[i] = -1
	}
	addEdge := func(from, to int) int {
		edges = append(edges, mEdge{from: from, to: to})
		return len(edges) - 1
	}
	for i := 0; i < n-2; i++ {
		acrossEdge[i] = addEdge(2*i, 2*i+1)
		for _, j := range g.lattice[i] {
			addEdge(2*i+1, inOf(j))
		}
	}
	for _, j := range g.lattice[g.join] {
		addEdge(source, inOf(j))
	}

	mengerSize := sink + 1
	outEdges := make([][]int, mengerSize)
	inEdges := make([][]int, mengerSize)
	for idx, e := range edges {
		outEdges[e.from] = append(outEdges[e.from], idx)
		inEdges[e.to] = append(inEdges[e.to], idx)
	}

	flow := make([]bool, len(edges))

	// reachable computes residual reachability from the source: forward
	// along unflowed edges, backward along flowed ones.
	reachable := make([]bool, mengerSize)
	computeReachable := func() {
		for i := range reachable {
			reachable[i] = false
		}
		queue := []int{source}
		reachable[source] = true
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for _, idx := range outEdges[v] {
				if !flow[idx] && !reachable[edges[idx].to] {
					reachable[edges[idx].to] = true
					queue = append(queue, edges[idx].to)
				}
			}
			for _, idx := range inEdges[v] {
				if flow[idx] && !reachable[edges[idx].from] {
					reachable[edges[idx].from] = true
					queue = append(queue, edges[idx].from)
				}
			}
		}
	}

	for {
		// Level graph by BFS from the source over the residual graph.
		level := make([]int, mengerSize)
		for i := range level {
			level[i] = -1
		}
		level[source] = 0
		queue := []int{source}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			advance := func(next int) {
				if level[next] == -1 {
					level[next] = level[v] + 1
					queue = append(queue, next)
				}
			}
			for _, idx := range outEdges[v] {
				if !flow[idx] {
					advance(edges[idx].to)
				}
			}
			for _, idx := range inEdges[v] {
				if flow[idx] {
					advance(edges[idx].from)
				}
			}
		}
		if level[sink] == -1 {
			break
		}

		// Pruning DFS for augmenting paths: each saturating path flips the
		// flow along its edges.
		var path []int
		var dfs func(v int) bool
		dfs = func(v int) bool {
			if v == sink {
				return true
			}
			for _, idx := range outEdges[v] {
				if !flow[idx] && level[edges[idx].to] == level[v]+1 {
					path = append(path, idx)
					if dfs(edges[idx].to) {
						return true
					}
					path = path[:len(path)-1]
				}
			}
			for _, idx := range inEdges[v] {
				if flow[idx] && level[edges[idx].from] == level[v]+1 {
					path = append(path, idx)
					if dfs(edges[idx].from) {
						return true
					}
					path = path[:len(path)-1]
				}
			}
			// Dead end: keep this node out of later probes.
			level[v] = -1
			return false
		}
		for {
			path = path[:0]
			if !dfs(source) {
				break
			}
			for _, idx := range path {
				flow[idx] = !flow[idx]
			}
		}
	}

	computeReachable()

	// Saturated edges crossing the reachability boundary are the min cut;
	// sweep them in edge-index order and translate each to its lattice
	// node. A cut on an edge out of the source names the node the edge
	// enters.
	var separator []int
	seen := make(map[int]bool)
	for idx, e := range edges {
		if !flow[idx] || !reachable[e.from] || reachable[e.to] {
			continue
		}
		var latticeNode int
		if e.from == source {
			latticeNode = nodeOf(e.to)
		} else {
			latticeNode = nodeOf(e.from)
		}
		if !seen[latticeNode] {
			seen[latticeNode] = true
			separator = append(separator, latticeNode)
		}
	}
	return separator
}
