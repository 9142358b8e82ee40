package poa

import (
	"testing"

	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
	"github.com/rlorigro/GetBlunted/pkg/overlaps"
)

func insertOverlap(t *testing.T, ovl *overlaps.Map, e handlegraph.Edge, cigar string) {
	t.Helper()
	a, err := overlaps.ParseCigar(cigar)
	if err != nil {
		t.Fatalf("ParseCigar(%q): %v", cigar, err)
	}
	ovl.Insert(e, a)
}

func pathSeq(t *testing.T, sub *Subgraph, name string) string {
	t.Helper()
	seq, err := sub.Graph.PathSequence(name)
	if err != nil {
		t.Fatalf("PathSequence(%q): %v", name, err)
	}
	return string(seq)
}

func TestAlignSingleEdge(t *testing.T) {
	g := handlegraph.New()
	l := g.CreateHandle([]byte("ACGT"))
	r := g.CreateHandle([]byte("ACGT"))
	e := handlegraph.Edge{From: l, To: r}
	ovl := overlaps.NewMap()
	insertOverlap(t, ovl, e, "4M")

	sub, err := AlignBicliqueOverlaps(g, ovl, []handlegraph.Edge{e})
	if err != nil {
		t.Fatalf("AlignBicliqueOverlaps: %v", err)
	}

	// Identical sequences collapse to one node.
	if got := sub.Graph.NodeCount(); got != 1 {
		t.Errorf("NodeCount() = %d, want 1", got)
	}
	if got := pathSeq(t, sub, PathName(l, 0)); got != "ACGT" {
		t.Errorf("suffix path spells %q, want %q", got, "ACGT")
	}
	if got := pathSeq(t, sub, PathName(r, 1)); got != "ACGT" {
		t.Errorf("prefix path spells %q, want %q", got, "ACGT")
	}
	if _, ok := sub.PathsPerHandle[0][l]; !ok {
		t.Error("suffix terminus missing from side-0 map")
	}
	if _, ok := sub.PathsPerHandle[1][r]; !ok {
		t.Error("prefix terminus missing from side-1 map")
	}
}

func TestAlignFork(t *testing.T) {
	// One suffix TTT against two prefixes TTT: all three collapse.
	g := handlegraph.New()
	l := g.CreateHandle([]byte("TTT"))
	r1 := g.CreateHandle([]byte("TTT"))
	r2 := g.CreateHandle([]byte("TTT"))
	ovl := overlaps.NewMap()
	e1 := handlegraph.Edge{From: l, To: r1}
	e2 := handlegraph.Edge{From: l, To: r2}
	insertOverlap(t, ovl, e1, "3M")
	insertOverlap(t, ovl, e2, "3M")

	sub, err := AlignBicliqueOverlaps(g, ovl, []handlegraph.Edge{e1, e2})
	if err != nil {
		t.Fatalf("AlignBicliqueOverlaps: %v", err)
	}
	if got := sub.Graph.NodeCount(); got != 1 {
		t.Errorf("NodeCount() = %d, want 1", got)
	}
	for _, name := range []string{PathName(l, 0), PathName(r1, 1), PathName(r2, 1)} {
		if got := pathSeq(t, sub, name); got != "TTT" {
			t.Errorf("path %s spells %q, want TTT", name, got)
		}
	}
}

func TestAlignStaircase(t *testing.T) {
	// Suffixes CGTA and CG (shorter overlap) against prefix CGTA: the
	// shorter suffix ends two columns into the prefix, splitting the
	// junction into CG and TA.
	g := handlegraph.New()
	l1 := g.CreateHandle([]byte("CGTA"))
	l2 := g.CreateHandle([]byte("CG"))
	r := g.CreateHandle([]byte("CGTA"))
	ovl := overlaps.NewMap()
	e1 := handlegraph.Edge{From: l1, To: r}
	e2 := handlegraph.Edge{From: l2, To: r}
	insertOverlap(t, ovl, e1, "4M")
	insertOverlap(t, ovl, e2, "2M")

	sub, err := AlignBicliqueOverlaps(g, ovl, []handlegraph.Edge{e1, e2})
	if err != nil {
		t.Fatalf("AlignBicliqueOverlaps: %v", err)
	}

	if got := pathSeq(t, sub, PathName(l1, 0)); got != "CGTA" {
		t.Errorf("long suffix path spells %q, want CGTA", got)
	}
	if got := pathSeq(t, sub, PathName(l2, 0)); got != "CG" {
		t.Errorf("short suffix path spells %q, want CG", got)
	}
	if got := pathSeq(t, sub, PathName(r, 1)); got != "CGTA" {
		t.Errorf("prefix path spells %q, want CGTA", got)
	}

	// The short suffix's tail is the prefix path's first node, so walks
	// through it continue into the prefix's remainder.
	p1, _ := sub.Graph.Path(PathName(l1, 0))
	p2, _ := sub.Graph.Path(PathName(l2, 0))
	pr, _ := sub.Graph.Path(PathName(r, 1))
	if p2.Back() != pr.Front() {
		t.Error("short suffix does not share the junction node with the prefix head")
	}
	if p1.Back() != pr.Back() {
		t.Error("long suffix does not end with the prefix path")
	}
}

func TestAlignMismatchBranches(t *testing.T) {
	// Suffix ACGT vs prefix ACTT (mismatch at column 2): the column
	// branches instead of merging.
	g := handlegraph.New()
	l := g.CreateHandle([]byte("ACGT"))
	r := g.CreateHandle([]byte("ACTT"))
	ovl := overlaps.NewMap()
	e := handlegraph.Edge{From: l, To: r}
	insertOverlap(t, ovl, e, "4M")

	sub, err := AlignBicliqueOverlaps(g, ovl, []handlegraph.Edge{e})
	if err != nil {
		t.Fatalf("AlignBicliqueOverlaps: %v", err)
	}
	if got := pathSeq(t, sub, PathName(l, 0)); got != "ACGT" {
		t.Errorf("suffix path spells %q, want ACGT", got)
	}
	if got := pathSeq(t, sub, PathName(r, 1)); got != "ACTT" {
		t.Errorf("prefix path spells %q, want ACTT", got)
	}
	if got := sub.Graph.NodeCount(); got < 3 {
		t.Errorf("NodeCount() = %d, want at least 3 (shared prefix, two branches)", got)
	}
}

func TestAlignEmptyBiclique(t *testing.T) {
	g := handlegraph.New()
	ovl := overlaps.NewMap()
	sub, err := AlignBicliqueOverlaps(g, ovl, nil)
	if err != nil {
		t.Fatalf("AlignBicliqueOverlaps: %v", err)
	}
	if sub.Graph.NodeCount() != 0 {
		t.Errorf("NodeCount() = %d, want 0", sub.Graph.NodeCount())
	}
}
