package adjacency

import (
	"sort"

	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
)

// Component is one adjacency component: a maximal set of node sides
// connected by edges. Sides are held in canonical (ascending handle)
// order.
type Component struct {
	graph Reader
	sides []handlegraph.Handle
}

// Size returns the number of sides in the component.
func (c *Component) Size() int { return len(c.sides) }

// Sides returns the component's sides in canonical order.
func (c *Component) Sides() []handlegraph.Handle { return c.sides }

// adjacentSides visits the sides reachable from side s by one edge.
func adjacentSides(g Reader, s handlegraph.Handle, visit func(handlegraph.Handle) bool) {
	g.FollowEdges(s, false, func(t handlegraph.Handle) bool {
		return visit(t.Flip())
	})
}

// ComputeAllAdjacencyComponents partitions every node side of the graph
// into adjacency components. Components are returned in ascending order of
// their smallest side; isolated sides form singleton components.
func ComputeAllAdjacencyComponents(g *handlegraph.Graph) []*Component {
	var allSides []handlegraph.Handle
	g.ForEachHandle(func(h handlegraph.Handle) bool {
		allSides = append(allSides, h, h.Flip())
		return true
	})

	visited := make(map[handlegraph.Handle]bool, len(allSides))
	var components []*Component
	for _, seed := range allSides {
		if visited[seed] {
			continue
		}
		visited[seed] = true
		comp := &Component{graph: g}
		queue := []handlegraph.Handle{seed}
		for len(queue) > 0 {
			s := queue[0]
			queue = queue[1:]
			comp.sides = append(comp.sides, s)
			adjacentSides(g, s, func(t handlegraph.Handle) bool {
				if !visited[t] {
					visited[t] = true
					queue = append(queue, t)
				}
				return true
			})
		}
		sort.Slice(comp.sides, func(i, j int) bool { return comp.sides[i] < comp.sides[j] })
		components = append(components, comp)
	}
	return components
}

// DecomposeIntoBipartiteBlocks 2-colors the component and yields bipartite
// views of it. Edges whose endpoints receive the same color (an odd cycle
// makes the component non-bipartite) are split off into their own
// single-edge blocks, so every edge of the component belongs to exactly
// one block.
func (c *Component) DecomposeIntoBipartiteBlocks(visit func(*BipartiteGraph)) {
	const unset = -1
	color := make(map[handlegraph.Handle]int, len(c.sides))
	for _, s := range c.sides {
		color[s] = unset
	}

	var left, right []handlegraph.Handle
	type frustrated struct{ a, b handlegraph.Handle }
	var odd []frustrated

	for _, seed := range c.sides {
		if color[seed] != unset {
			continue
		}
		color[seed] = 0
		queue := []handlegraph.Handle{seed}
		for len(queue) > 0 {
			s := queue[0]
			queue = queue[1:]
			if color[s] == 0 {
				left = append(left, s)
			} else {
				right = append(right, s)
			}
			adjacentSides(c.graph, s, func(t handlegraph.Handle) bool {
				if color[t] == unset {
					color[t] = 1 - color[s]
					queue = append(queue, t)
				} else if color[t] == color[s] {
					// Record each odd edge once.
					if s <= t {
						odd = append(odd, frustrated{a: s, b: t})
					}
				}
				return true
			})
		}
	}

	if len(left) > 0 && len(right) > 0 {
		visit(NewBipartiteGraph(c.graph, left, right))
	}
	for _, e := range odd {
		visit(NewBipartiteGraph(c.graph,
			[]handlegraph.Handle{e.a},
			[]handlegraph.Handle{e.b}))
	}
}
