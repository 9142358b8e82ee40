package biclique

import (
	"sort"

	"github.com/rlorigro/GetBlunted/pkg/adjacency"
	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
)

// DefaultWorkLimit bounds the size of bipartite graphs the exact cover is
// attempted on: |edges| * (|L| + |R|) must not exceed it.
const DefaultWorkLimit = 65536

// Cover computes a biclique cover of the bipartite graph. Small graphs get
// the exact domino-free cover (simplify, then Galois lattice separator);
// graphs that are too large or not domino-free get the greedy heuristic
// cover.
func Cover(b *adjacency.BipartiteGraph, workLimit int) []Bipartition {
	if workLimit <= 0 {
		workLimit = DefaultWorkLimit
	}
	var cover []Bipartition
	if b.EdgeCount()*(b.LeftSize()+b.RightSize()) <= workLimit {
		cover = dominoFreeCover(b)
	}
	if len(cover) == 0 {
		cover = HeuristicCover(b)
	}
	return cover
}

// dominoFreeCover simplifies the graph without affecting its biclique
// cover (Amilhastre et al. 1998, algorithm 2), then covers it via the
// Galois lattice. Returns nil when the graph is not domino-free.
func dominoFreeCover(b *adjacency.BipartiteGraph) []Bipartition {
	simplified := Simplify(b)
	lattice, ok := NewGaloisLattice(simplified)
	if !ok {
		return nil
	}
	cover := lattice.BicliqueCover()
	// The lattice's bicliques are maximal in the simplified graph; expand
	// each to its closure in the original so the edges simplification
	// removed stay covered.
	for i := range cover {
		cover[i] = expandMaximal(b, cover[i])
	}
	return cover
}

// expandMaximal grows a biclique to its closure in b: first every left
// node adjacent to the whole right set, then every right node adjacent to
// the whole new left set.
func expandMaximal(b *adjacency.BipartiteGraph, bic Bipartition) Bipartition {
	if len(bic.Right) == 0 {
		return bic
	}
	adjacentToAll := func(h handlegraph.Handle, all []handlegraph.Handle) bool {
		nbd := make(map[handlegraph.Handle]bool, len(all))
		b.ForEachAdjacentSide(h, func(x handlegraph.Handle) bool {
			nbd[x] = true
			return true
		})
		for _, x := range all {
			if !nbd[x] {
				return false
			}
		}
		return true
	}

	var out Bipartition
	for _, l := range b.Left() {
		if adjacentToAll(l, bic.Right) {
			out.Left = append(out.Left, l)
		}
	}
	for _, r := range b.Right() {
		if adjacentToAll(r, out.Left) {
			out.Right = append(out.Right, r)
		}
	}
	return out
}

// Simplify removes edges that cannot change the biclique cover: whenever
// one side node's neighborhood is contained in another's, the shared edges
// are removed from the larger one. The removals go into a subtractive
// overlay, so the host graph is untouched.
func Simplify(b *adjacency.BipartiteGraph) *adjacency.BipartiteGraph {
	sub := adjacency.NewSubtractiveGraph(b.Graph())
	view := adjacency.NewBipartiteGraph(sub, b.Left(), b.Right())
	simplifySide(view, sub, b.Left())
	simplifySide(view, sub, b.Right())
	return view
}

// simplifySide runs one side's containment-driven edge removal. The
// bookkeeping follows Amilhastre: degree, neighborDelta[u][v] =
// |Nbd(u) \ Nbd(v)|, the successor matrix, and the nonmaximal flags.
func simplifySide(view *adjacency.BipartiteGraph, sub *adjacency.SubtractiveGraph, partition []handlegraph.Handle) {
	n := len(partition)
	nonmaximal := make([]bool, n)
	successor := make([][]bool, n)
	numSuccessors := make([]int, n)
	degree := make([]int, n)
	neighborDelta := make([][]int, n)

	neighborhood := func(i int) map[handlegraph.Handle]bool {
		nbd := make(map[handlegraph.Handle]bool)
		view.ForEachAdjacentSide(partition[i], func(x handlegraph.Handle) bool {
			nbd[x] = true
			return true
		})
		return nbd
	}

	for i := 0; i < n; i++ {
		nbd := neighborhood(i)
		degree[i] = len(nbd)
		successor[i] = make([]bool, n)
		neighborDelta[i] = make([]int, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			delta := len(nbd)
			view.ForEachAdjacentSide(partition[j], func(x handlegraph.Handle) bool {
				if nbd[x] {
					delta--
				}
				return true
			})
			neighborDelta[i][j] = delta
			if delta == 0 && degree[i] > 0 {
				// Nbd(i) is contained in Nbd(j): the containment preorder
				// applies, j is a successor of i.
				successor[i][j] = true
				nonmaximal[i] = true
				numSuccessors[i]++
			}
		}
	}

	partIndex := make(map[handlegraph.Handle]int, n)
	for i, h := range partition {
		partIndex[h] = i
	}

	removeEdge := func(j int, nbr handlegraph.Handle) {
		sub.SubtractEdge(sideEdge(partition[j], nbr))
		degree[j]--

		// Neighbors of nbr on this side after the removal.
		nbrNbrs := make(map[int]bool)
		view.ForEachAdjacentSide(nbr, func(x handlegraph.Handle) bool {
			if k, ok := partIndex[x]; ok {
				nbrNbrs[k] = true
			}
			return true
		})

		for k := 0; k < n; k++ {
			if k == j {
				continue
			}
			if nbrNbrs[k] {
				// k still reaches nbr, so the removed edge now counts
				// against any containment of Nbd(k) in Nbd(j).
				neighborDelta[k][j]++
				if nonmaximal[k] && successor[k][j] {
					successor[k][j] = false
					numSuccessors[k]--
					if numSuccessors[k] == 0 {
						nonmaximal[k] = false
					}
				}
			} else {
				// nbr was in Nbd(j) \ Nbd(k) and has left Nbd(j).
				neighborDelta[j][k]--
			}

			if neighborDelta[j][k] == 0 && degree[j] > 0 {
				// j's neighbors are now a subset of k's.
				if !successor[j][k] {
					successor[j][k] = true
					numSuccessors[j]++
				}
				nonmaximal[j] = true
			}
		}
	}

	for {
		simplified := true
		for i := 0; i < n && simplified; i++ {
			if !nonmaximal[i] {
				continue
			}
			simplified = false
			for j := 0; j < n; j++ {
				if !successor[i][j] {
					continue
				}
				// Remove from j the edges it shares with i's neighbors.
				var shared []handlegraph.Handle
				view.ForEachAdjacentSide(partition[i], func(nbr handlegraph.Handle) bool {
					shared = append(shared, nbr)
					return true
				})
				for _, nbr := range shared {
					if view.Graph().HasEdge(sideEdge(partition[j], nbr)) {
						removeEdge(j, nbr)
					}
				}
			}
			nonmaximal[i] = false
		}
		if simplified {
			return
		}
	}
}

// sideEdge converts a pair of adjacent sides back to the graph edge
// linking them.
func sideEdge(s, t handlegraph.Handle) handlegraph.Edge {
	return handlegraph.Edge{From: s, To: t.Flip()}
}

// HeuristicCover greedily extracts maximal bicliques until every edge is
// covered. Each round seeds from the uncovered edge whose left endpoint
// has maximal degree, takes the seed's full right neighborhood, and grows
// the left side to every node adjacent to all of it.
func HeuristicCover(b *adjacency.BipartiteGraph) []Bipartition {
	type edge struct{ l, r int }
	left, right := b.Left(), b.Right()

	nbd := make([]map[int]bool, len(left))
	uncovered := make(map[edge]bool)
	for li, l := range left {
		nbd[li] = make(map[int]bool)
		b.ForEachAdjacentSide(l, func(x handlegraph.Handle) bool {
			ri, _ := b.RightIndex(x)
			nbd[li][ri] = true
			uncovered[edge{l: li, r: ri}] = true
			return true
		})
	}

	var cover []Bipartition
	for len(uncovered) > 0 {
		// Seed: uncovered edge with the highest-degree left endpoint;
		// canonical order breaks ties deterministically.
		seed := edge{l: -1}
		for li := range left {
			if len(nbd[li]) == 0 {
				continue
			}
			for ri := 0; ri < len(right); ri++ {
				if !uncovered[edge{l: li, r: ri}] {
					continue
				}
				if seed.l == -1 || len(nbd[li]) > len(nbd[seed.l]) {
					seed = edge{l: li, r: ri}
				}
				break
			}
		}

		// The biclique: the seed's whole neighborhood on the right, and
		// every left node adjacent to all of it.
		var bic Bipartition
		rightSet := nbd[seed.l]
		for ri := range rightSet {
			bic.Right = append(bic.Right, right[ri])
		}
		for li := range left {
			contains := true
			for ri := range rightSet {
				if !nbd[li][ri] {
					contains = false
					break
				}
			}
			if contains && len(rightSet) > 0 {
				bic.Left = append(bic.Left, left[li])
				for ri := range rightSet {
					delete(uncovered, edge{l: li, r: ri})
				}
			}
		}
		sortHandles(bic.Left)
		sortHandles(bic.Right)
		cover = append(cover, bic)
	}
	return cover
}

func sortHandles(hs []handlegraph.Handle) {
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
}
