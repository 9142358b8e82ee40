package overlaps

import (
	"github.com/rlorigro/GetBlunted/pkg/errors"
	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
)

// Map is the canonical lookup of the overlap record for each directed edge.
// A record is stored under exactly one of the edge's two representations;
// CanonicalizeAndFind resolves either.
//
// Invariant: after any call that mutates the graph, the map's key set
// matches the graph's edge set (maintained through UpdateEdge).
type Map struct {
	records map[handlegraph.Edge]*Alignment
}

// NewMap returns an empty overlap map.
func NewMap() *Map {
	return &Map{records: make(map[handlegraph.Edge]*Alignment)}
}

// Len returns the number of records.
func (m *Map) Len() int {
	return len(m.records)
}

// Insert stores the alignment for edge under the given representation.
func (m *Map) Insert(edge handlegraph.Edge, a *Alignment) {
	m.records[edge] = a
}

// Find returns the record stored under exactly this representation.
func (m *Map) Find(edge handlegraph.Edge) (*Alignment, bool) {
	a, ok := m.records[edge]
	return a, ok
}

// CanonicalizeAndFind resolves edge to the representation present in the
// map, trying the flipped form when the direct key is absent. It fails with
// MISSING_OVERLAP when neither form exists.
func (m *Map) CanonicalizeAndFind(edge handlegraph.Edge) (handlegraph.Edge, *Alignment, error) {
	if a, ok := m.records[edge]; ok {
		return edge, a, nil
	}
	flipped := edge.Flip()
	if a, ok := m.records[flipped]; ok {
		return flipped, a, nil
	}
	return edge, nil, errors.New(errors.ErrCodeMissingOverlap,
		"edge not found in overlaps: (%d%s)->(%d%s)",
		edge.From.ID(), orientMark(edge.From),
		edge.To.ID(), orientMark(edge.To))
}

// ComputeLengths canonicalizes edge and returns the consumed lengths of its
// overlap: bases on the From suffix and on the To prefix.
func (m *Map) ComputeLengths(edge handlegraph.Edge) (int, int, error) {
	_, a, err := m.CanonicalizeAndFind(edge)
	if err != nil {
		return 0, 0, err
	}
	u, v := a.ComputeLengths()
	return u, v, nil
}

// UpdateEdge moves the record stored for old (under either representation)
// to the new edge key. Missing records are ignored: duplication retargets
// several biclique copies of the same original edge and only the first
// carries the record.
func (m *Map) UpdateEdge(old, new handlegraph.Edge) {
	if a, ok := m.records[old]; ok {
		delete(m.records, old)
		m.records[new] = a
		return
	}
	flipped := old.Flip()
	if a, ok := m.records[flipped]; ok {
		delete(m.records, flipped)
		m.records[new] = a
	}
}

// Delete removes the record for edge under either representation.
func (m *Map) Delete(edge handlegraph.Edge) {
	if _, ok := m.records[edge]; ok {
		delete(m.records, edge)
		return
	}
	delete(m.records, edge.Flip())
}

// ForEach visits every (edge, alignment) pair in unspecified order.
func (m *Map) ForEach(visit func(handlegraph.Edge, *Alignment) bool) {
	for e, a := range m.records {
		if !visit(e, a) {
			return
		}
	}
}

func orientMark(h handlegraph.Handle) string {
	if h.IsReverse() {
		return "-"
	}
	return "+"
}
