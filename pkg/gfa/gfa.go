// Package gfa reads and writes GFA 1.0 assembly graphs.
//
// The reader builds a handle graph from H, S, L, and P records, assigns
// dense node ids in order of first appearance (original segment names are
// kept in an IDMap), records every link CIGAR in an overlap map, and
// creates one path per segment, named by its node id, so that later node
// splits preserve each segment's identity. The writer emits the blunted
// form: every link is written with a 0M overlap.
package gfa

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/rlorigro/GetBlunted/pkg/errors"
	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
	"github.com/rlorigro/GetBlunted/pkg/overlaps"
)

// IDMap maps segment names to dense node ids and back. Ids start at 1 in
// order of first appearance.
type IDMap struct {
	names []string
	ids   map[string]handlegraph.NodeID
}

// NewIDMap returns an empty id map.
func NewIDMap() *IDMap {
	return &IDMap{ids: make(map[string]handlegraph.NodeID)}
}

// GetOrAdd returns the id for name, assigning the next dense id on first
// sight.
func (m *IDMap) GetOrAdd(name string) handlegraph.NodeID {
	if id, ok := m.ids[name]; ok {
		return id
	}
	m.names = append(m.names, name)
	id := handlegraph.NodeID(len(m.names))
	m.ids[name] = id
	return id
}

// Get returns the id for name.
func (m *IDMap) Get(name string) (handlegraph.NodeID, bool) {
	id, ok := m.ids[name]
	return id, ok
}

// Name returns the segment name behind id.
func (m *IDMap) Name(id handlegraph.NodeID) string {
	return m.names[id-1]
}

// Len returns the number of named segments.
func (m *IDMap) Len() int {
	return len(m.names)
}

// Result bundles everything the reader produces.
type Result struct {
	Graph    *handlegraph.Graph
	IDMap    *IDMap
	Overlaps *overlaps.Map
}

// ReadFile parses the GFA file at path. See ToHandleGraph for the
// construction rules.
func ReadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return ToHandleGraph(bufio.NewScanner(f))
}

// ToHandleGraph builds a handle graph, id map, and overlap map from GFA
// lines. Two passes over the record set are folded into one: S records may
// appear after L records that reference them, so segments are materialized
// lazily with empty sequences and filled in when their S record arrives.
func ToHandleGraph(scanner *bufio.Scanner) (*Result, error) {
	graph := handlegraph.New()
	idMap := NewIDMap()
	ovl := overlaps.NewMap()

	// Sequences seen so far; links to not-yet-seen segments are an error
	// only if the S record never arrives.
	seen := make(map[handlegraph.NodeID]bool)
	type pendingLink struct {
		edge  handlegraph.Edge
		align *overlaps.Alignment
	}
	var links []pendingLink

	segment := func(name string) handlegraph.Handle {
		id := idMap.GetOrAdd(name)
		if !graph.HasNode(id) {
			graph.CreateHandleWithID(id, nil)
		}
		return handlegraph.PackHandle(id, false)
	}

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Split(line, "\t")
		switch fields[0] {
		case "H":
			// Headers carry no graph content.
		case "S":
			if len(fields) < 3 {
				return nil, errors.New(errors.ErrCodeParse, "line %d: S record needs a name and a sequence", lineNum)
			}
			h := segment(fields[1])
			if seen[h.ID()] {
				return nil, errors.New(errors.ErrCodeParse, "line %d: duplicate segment %q", lineNum, fields[1])
			}
			seen[h.ID()] = true
			if err := setSequence(graph, h, fields[2]); err != nil {
				return nil, errors.Wrap(errors.ErrCodeParse, err, "line %d: segment %q", lineNum, fields[1])
			}
		case "L":
			if len(fields) < 6 {
				return nil, errors.New(errors.ErrCodeParse, "line %d: L record needs from, to, orientations, and an overlap", lineNum)
			}
			from, err := orientHandle(segment(fields[1]), fields[2])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeParse, err, "line %d", lineNum)
			}
			to, err := orientHandle(segment(fields[3]), fields[4])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeParse, err, "line %d", lineNum)
			}
			align, err := overlaps.ParseCigar(fields[5])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeParse, err, "line %d", lineNum)
			}
			links = append(links, pendingLink{edge: handlegraph.Edge{From: from, To: to}, align: align})
		case "P":
			if len(fields) < 3 {
				return nil, errors.New(errors.ErrCodeParse, "line %d: P record needs a name and a segment list", lineNum)
			}
			// Embedded paths are parsed for validity but not retained:
			// node-identity paths cover provenance, and GFA paths over an
			// overlapped graph do not survive blunting.
			for _, step := range strings.Split(fields[2], ",") {
				if len(step) < 2 {
					return nil, errors.New(errors.ErrCodeParse, "line %d: malformed path step %q", lineNum, step)
				}
				if _, err := orientHandle(segment(step[:len(step)-1]), step[len(step)-1:]); err != nil {
					return nil, errors.Wrap(errors.ErrCodeParse, err, "line %d", lineNum)
				}
			}
		default:
			return nil, errors.New(errors.ErrCodeParse, "line %d: unknown record type %q", lineNum, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read GFA")
	}

	for id := handlegraph.NodeID(1); id <= handlegraph.NodeID(idMap.Len()); id++ {
		if !seen[id] {
			return nil, errors.New(errors.ErrCodeParse, "segment %q referenced but never defined", idMap.Name(id))
		}
	}

	for _, l := range links {
		graph.CreateEdge(l.edge)
		if _, ok := ovl.Find(l.edge); !ok {
			if _, okFlipped := ovl.Find(l.edge.Flip()); !okFlipped {
				ovl.Insert(l.edge, l.align)
			}
		}
	}

	// One identity path per segment keeps track of the segment's pieces
	// through terminus duplication.
	graph.ForEachHandle(func(h handlegraph.Handle) bool {
		name := strconv.FormatInt(int64(h.ID()), 10)
		graph.CreatePath(name)
		graph.AppendStep(name, h)
		return true
	})

	return &Result{Graph: graph, IDMap: idMap, Overlaps: ovl}, nil
}

// setSequence validates and fills in a lazily created segment's sequence.
func setSequence(g *handlegraph.Graph, h handlegraph.Handle, seq string) error {
	if seq == "*" {
		return errors.New(errors.ErrCodeParse, "sequence-less segments are not supported")
	}
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n':
		default:
			return errors.New(errors.ErrCodeParse, "invalid base %q", string(seq[i]))
		}
	}
	g.SetSequence(h, []byte(seq))
	return nil
}

func orientHandle(h handlegraph.Handle, mark string) (handlegraph.Handle, error) {
	switch mark {
	case "+":
		return h, nil
	case "-":
		return h.Flip(), nil
	default:
		return 0, errors.New(errors.ErrCodeParse, "invalid orientation %q", mark)
	}
}
