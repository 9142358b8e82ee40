package handlegraph

import (
	"errors"
	"sort"
)

var (
	// ErrDuplicatePath is returned by CreatePath when the name is taken.
	ErrDuplicatePath = errors.New("duplicate path name")

	// ErrUnknownPath is returned when a path name is not in the graph.
	ErrUnknownPath = errors.New("unknown path")
)

// Path is a named walk through the graph. Steps are handles in walk order;
// a step's orientation is the orientation the walk traverses the node in.
type Path struct {
	name  string
	steps []Handle
}

// Name returns the path's name.
func (p *Path) Name() string { return p.name }

// Steps returns the path's steps in walk order. The returned slice is the
// path's backing storage; callers must not modify it.
func (p *Path) Steps() []Handle { return p.steps }

// Len returns the number of steps.
func (p *Path) Len() int { return len(p.steps) }

// Front returns the first step. The path must be non-empty.
func (p *Path) Front() Handle { return p.steps[0] }

// Back returns the last step. The path must be non-empty.
func (p *Path) Back() Handle { return p.steps[len(p.steps)-1] }

// CreatePath registers an empty path under name.
func (g *Graph) CreatePath(name string) error {
	if _, ok := g.paths[name]; ok {
		return ErrDuplicatePath
	}
	g.paths[name] = &Path{name: name}
	return nil
}

// AppendStep appends a step to the named path.
func (g *Graph) AppendStep(name string, h Handle) error {
	p, ok := g.paths[name]
	if !ok {
		return ErrUnknownPath
	}
	p.steps = append(p.steps, h)
	return nil
}

// Path returns the named path.
func (g *Graph) Path(name string) (*Path, bool) {
	p, ok := g.paths[name]
	return p, ok
}

// HasPath reports whether a path with the given name exists.
func (g *Graph) HasPath(name string) bool {
	_, ok := g.paths[name]
	return ok
}

// DestroyPath removes the named path. The nodes it traverses are untouched.
func (g *Graph) DestroyPath(name string) {
	delete(g.paths, name)
}

// PathNames returns every path name in lexicographic order.
func (g *Graph) PathNames() []string {
	names := make([]string, 0, len(g.paths))
	for name := range g.paths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForEachPath visits every path in name order. Returning false stops the
// iteration.
func (g *Graph) ForEachPath(visit func(*Path) bool) {
	for _, name := range g.PathNames() {
		if !visit(g.paths[name]) {
			return
		}
	}
}

// PathSequence concatenates the oriented sequences of the path's steps.
func (g *Graph) PathSequence(name string) ([]byte, error) {
	p, ok := g.paths[name]
	if !ok {
		return nil, ErrUnknownPath
	}
	var seq []byte
	for _, step := range p.steps {
		seq = append(seq, g.Sequence(step)...)
	}
	return seq, nil
}
