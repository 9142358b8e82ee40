package handlegraph

import (
	"errors"
	"slices"
	"sort"
)

var (
	// ErrUnknownNode is returned when a handle refers to a node that is not
	// in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDuplicateNode is returned by CreateHandleWithID when the id is
	// already taken.
	ErrDuplicateNode = errors.New("duplicate node id")

	// ErrInvalidOffset is returned by SplitHandle when an offset is out of
	// range or not strictly increasing.
	ErrInvalidOffset = errors.New("invalid split offset")
)

type node struct {
	seq []byte
	// Adjacency per side of the forward strand. right holds x for every
	// edge (n+, x); left holds x for every edge (x, n+).
	right []Handle
	left  []Handle
}

// Graph is a mutable bidirected sequence graph with named paths.
type Graph struct {
	nodes  map[NodeID]*node
	paths  map[string]*Path
	nextID NodeID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:  make(map[NodeID]*node),
		paths:  make(map[string]*Path),
		nextID: 1,
	}
}

// CreateHandle adds a node holding seq and returns its forward handle.
func (g *Graph) CreateHandle(seq []byte) Handle {
	for g.nodes[g.nextID] != nil {
		g.nextID++
	}
	h, _ := g.CreateHandleWithID(g.nextID, seq)
	return h
}

// CreateHandleWithID adds a node with a caller-chosen id.
func (g *Graph) CreateHandleWithID(id NodeID, seq []byte) (Handle, error) {
	if _, ok := g.nodes[id]; ok {
		return 0, ErrDuplicateNode
	}
	g.nodes[id] = &node{seq: slices.Clone(seq)}
	if id >= g.nextID {
		g.nextID = id + 1
	}
	return PackHandle(id, false), nil
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// MaxNodeID returns the largest node id in the graph, or 0 when empty.
func (g *Graph) MaxNodeID() NodeID {
	var max NodeID
	for id := range g.nodes {
		if id > max {
			max = id
		}
	}
	return max
}

// Length returns the sequence length of the node behind h.
func (g *Graph) Length(h Handle) int {
	return len(g.nodes[h.ID()].seq)
}

// Sequence returns the sequence of h in its orientation.
func (g *Graph) Sequence(h Handle) []byte {
	n := g.nodes[h.ID()]
	if h.IsReverse() {
		return ReverseComplement(n.seq)
	}
	return slices.Clone(n.seq)
}

// Subsequence returns length bases of h's oriented sequence starting at
// start.
func (g *Graph) Subsequence(h Handle, start, length int) []byte {
	return g.Sequence(h)[start : start+length]
}

// SetSequence replaces the forward-strand sequence of the node behind h.
// Edges and paths are unaffected.
func (g *Graph) SetSequence(h Handle, seq []byte) {
	if n, ok := g.nodes[h.ID()]; ok {
		n.seq = slices.Clone(seq)
	}
}

// sortedIDs returns the node ids in ascending order. Deterministic node
// iteration keeps the whole pipeline machine-independent.
func (g *Graph) sortedIDs() []NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ForEachHandle visits the forward handle of every node in ascending id
// order. Returning false stops the iteration.
func (g *Graph) ForEachHandle(visit func(Handle) bool) {
	for _, id := range g.sortedIDs() {
		if !visit(PackHandle(id, false)) {
			return
		}
	}
}

// FollowEdges visits the handles adjacent to h. With goLeft false it
// follows edges leaving h's right (3') side, i.e. edges (h, x); with goLeft
// true it follows edges entering h's left (5') side, i.e. edges (x, h),
// visiting x. Returning false stops the iteration.
func (g *Graph) FollowEdges(h Handle, goLeft bool, visit func(Handle) bool) {
	n, ok := g.nodes[h.ID()]
	if !ok {
		return
	}
	flip := h.IsReverse()
	list := n.right
	if flip != goLeft {
		list = n.left
	}
	for _, x := range slices.Clone(list) {
		if flip {
			x = x.Flip()
		}
		if !visit(x) {
			return
		}
	}
}

// Degree returns the number of edges on the given side of h.
func (g *Graph) Degree(h Handle, goLeft bool) int {
	d := 0
	g.FollowEdges(h, goLeft, func(Handle) bool {
		d++
		return true
	})
	return d
}

// edgeEntry locates one adjacency-list slot an edge occupies.
type edgeEntry struct {
	id    NodeID
	right bool
	nbr   Handle
}

// entries resolves the adjacency entries an edge occupies. The edge (a, b)
// is recorded on a's node and on b's node; for a reversing self-loop both
// entries coincide and only one is kept.
func (e Edge) entries() []edgeEntry {
	type entry = edgeEntry
	a, b := e.From, e.To
	var out []entry
	if !a.IsReverse() {
		out = append(out, entry{a.ID(), true, b})
	} else {
		out = append(out, entry{a.ID(), false, b.Flip()})
	}
	if !b.IsReverse() {
		out = append(out, entry{b.ID(), false, a})
	} else {
		out = append(out, entry{b.ID(), true, a.Flip()})
	}
	if out[0].id == out[1].id && out[0].right == out[1].right && out[0].nbr == out[1].nbr {
		out = out[:1]
	}
	return out
}

// HasEdge reports whether the edge (or its reverse complement) exists.
func (g *Graph) HasEdge(e Edge) bool {
	ent := e.entries()[0]
	n, ok := g.nodes[ent.id]
	if !ok {
		return false
	}
	list := n.left
	if ent.right {
		list = n.right
	}
	return slices.Contains(list, ent.nbr)
}

// CreateEdge adds the edge if it is not already present.
func (g *Graph) CreateEdge(e Edge) {
	if g.HasEdge(e) {
		return
	}
	for _, ent := range e.entries() {
		n := g.nodes[ent.id]
		if n == nil {
			continue
		}
		if ent.right {
			n.right = append(n.right, ent.nbr)
		} else {
			n.left = append(n.left, ent.nbr)
		}
	}
}

// DestroyEdge removes the edge if present.
func (g *Graph) DestroyEdge(e Edge) {
	for _, ent := range e.entries() {
		n := g.nodes[ent.id]
		if n == nil {
			continue
		}
		if ent.right {
			n.right = removeHandle(n.right, ent.nbr)
		} else {
			n.left = removeHandle(n.left, ent.nbr)
		}
	}
}

func removeHandle(list []Handle, h Handle) []Handle {
	if i := slices.Index(list, h); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return list
}

// ForEachEdge visits every edge exactly once, in a deterministic order.
// Each edge is presented in the representation whose From endpoint has the
// smaller canonical key. Returning false stops the iteration.
func (g *Graph) ForEachEdge(visit func(Edge) bool) {
	seen := make(map[Edge]struct{})
	for _, id := range g.sortedIDs() {
		n := g.nodes[id]
		h := PackHandle(id, false)
		for _, x := range n.right {
			e := Edge{From: h, To: x}.Canonical()
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			if !visit(e) {
				return
			}
		}
		for _, x := range n.left {
			e := Edge{From: x, To: h}.Canonical()
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			if !visit(e) {
				return
			}
		}
	}
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	c := 0
	g.ForEachEdge(func(Edge) bool {
		c++
		return true
	})
	return c
}

// DestroyHandle removes the node behind h along with its edges and every
// path that traverses it.
func (g *Graph) DestroyHandle(h Handle) {
	id := h.ID()
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	fwd := PackHandle(id, false)
	for _, x := range slices.Clone(n.right) {
		g.DestroyEdge(Edge{From: fwd, To: x})
	}
	for _, x := range slices.Clone(n.left) {
		g.DestroyEdge(Edge{From: x, To: fwd})
	}
	for name, p := range g.paths {
		for _, step := range p.steps {
			if step.ID() == id {
				delete(g.paths, name)
				break
			}
		}
	}
	delete(g.nodes, id)
}

// IncrementNodeIDs shifts every node id (and every handle stored in edges
// and paths) by offset. Used before copying a subgraph into another graph to
// avoid id collisions.
func (g *Graph) IncrementNodeIDs(offset NodeID) {
	shift := func(h Handle) Handle {
		return PackHandle(h.ID()+offset, h.IsReverse())
	}
	nodes := make(map[NodeID]*node, len(g.nodes))
	for id, n := range g.nodes {
		for i, x := range n.right {
			n.right[i] = shift(x)
		}
		for i, x := range n.left {
			n.left[i] = shift(x)
		}
		nodes[id+offset] = n
	}
	g.nodes = nodes
	g.nextID += offset
	for _, p := range g.paths {
		for i, step := range p.steps {
			p.steps[i] = shift(step)
		}
	}
}

// SplitHandle divides the node behind h at the given offsets (expressed in
// h's orientation, strictly increasing, exclusive of 0 and the node length)
// and returns the resulting pieces as handles in h's orientation, in order.
// The original node is destroyed; new nodes take fresh ids. Edges on the
// outer flanks are redistributed to the outer pieces, consecutive pieces
// are linked, and every path step through the node is rewritten in place.
func (g *Graph) SplitHandle(h Handle, offsets []int) ([]Handle, error) {
	n, ok := g.nodes[h.ID()]
	if !ok {
		return nil, ErrUnknownNode
	}
	length := len(n.seq)
	prev := 0
	for _, off := range offsets {
		if off <= prev || off >= length {
			return nil, ErrInvalidOffset
		}
		prev = off
	}
	if len(offsets) == 0 {
		return []Handle{h}, nil
	}

	// Work on the forward strand.
	fwdOffsets := offsets
	if h.IsReverse() {
		fwdOffsets = make([]int, len(offsets))
		for i, off := range offsets {
			fwdOffsets[len(offsets)-1-i] = length - off
		}
	}

	// Carve the sequence into pieces and make the new nodes.
	bounds := append(append([]int{0}, fwdOffsets...), length)
	pieces := make([]Handle, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		pieces = append(pieces, g.CreateHandle(n.seq[bounds[i]:bounds[i+1]]))
	}
	for i := 0; i+1 < len(pieces); i++ {
		g.CreateEdge(Edge{From: pieces[i], To: pieces[i+1]})
	}

	// Move the flank edges, skipping self-loops, which must be rebuilt
	// between the outer pieces.
	fwd := PackHandle(h.ID(), false)
	first, last := pieces[0], pieces[len(pieces)-1]
	for _, x := range slices.Clone(n.left) {
		g.DestroyEdge(Edge{From: x, To: fwd})
		switch x {
		case fwd:
			g.CreateEdge(Edge{From: last, To: first})
		case fwd.Flip():
			g.CreateEdge(Edge{From: first.Flip(), To: first})
		default:
			g.CreateEdge(Edge{From: x, To: first})
		}
	}
	for _, x := range slices.Clone(n.right) {
		g.DestroyEdge(Edge{From: fwd, To: x})
		switch x {
		case fwd:
			g.CreateEdge(Edge{From: last, To: first})
		case fwd.Flip():
			g.CreateEdge(Edge{From: last, To: last.Flip()})
		default:
			g.CreateEdge(Edge{From: last, To: x})
		}
	}

	// Rewrite path steps through the node.
	reversed := make([]Handle, len(pieces))
	for i, p := range pieces {
		reversed[len(pieces)-1-i] = p.Flip()
	}
	for _, p := range g.paths {
		var steps []Handle
		for _, step := range p.steps {
			switch {
			case step == fwd:
				steps = append(steps, pieces...)
			case step == fwd.Flip():
				steps = append(steps, reversed...)
			default:
				steps = append(steps, step)
			}
		}
		p.steps = steps
	}

	delete(g.nodes, h.ID())

	if h.IsReverse() {
		out := make([]Handle, len(pieces))
		for i, p := range pieces {
			out[len(pieces)-1-i] = p.Flip()
		}
		return out, nil
	}
	return pieces, nil
}

// CopyGraph copies every node, edge and path of src into dst. Node ids and
// path names are preserved; the caller is responsible for shifting src's ids
// first (IncrementNodeIDs) when they could collide.
func CopyGraph(src, dst *Graph) error {
	var err error
	src.ForEachHandle(func(h Handle) bool {
		if _, e := dst.CreateHandleWithID(h.ID(), src.nodes[h.ID()].seq); e != nil {
			err = e
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	src.ForEachEdge(func(e Edge) bool {
		dst.CreateEdge(e)
		return true
	})
	for _, name := range src.PathNames() {
		p, _ := src.Path(name)
		if err = dst.CreatePath(name); err != nil {
			return err
		}
		for _, step := range p.steps {
			dst.AppendStep(name, step)
		}
	}
	return nil
}
