package handlegraph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHandlePacking(t *testing.T) {
	h := PackHandle(42, false)
	if h.ID() != 42 {
		t.Errorf("ID() = %d, want 42", h.ID())
	}
	if h.IsReverse() {
		t.Error("IsReverse() = true, want false")
	}
	r := h.Flip()
	if r.ID() != 42 || !r.IsReverse() {
		t.Errorf("Flip() = (%d, %v), want (42, true)", r.ID(), r.IsReverse())
	}
	if r.Flip() != h {
		t.Error("double Flip() did not round-trip")
	}
}

func TestEdgeCanonical(t *testing.T) {
	a := PackHandle(1, false)
	b := PackHandle(2, false)
	e := Edge{From: a, To: b}
	if got := e.Flip().Canonical(); got != e.Canonical() {
		t.Errorf("Canonical() of flipped edge = %v, want %v", got, e.Canonical())
	}
}

func TestCreateAndFollowEdges(t *testing.T) {
	g := New()
	a := g.CreateHandle([]byte("ACGT"))
	b := g.CreateHandle([]byte("TTTT"))
	g.CreateEdge(Edge{From: a, To: b})

	var rights []Handle
	g.FollowEdges(a, false, func(h Handle) bool {
		rights = append(rights, h)
		return true
	})
	if diff := cmp.Diff([]Handle{b}, rights); diff != "" {
		t.Errorf("FollowEdges(a, right) mismatch (-want +got):\n%s", diff)
	}

	var lefts []Handle
	g.FollowEdges(b, true, func(h Handle) bool {
		lefts = append(lefts, h)
		return true
	})
	if diff := cmp.Diff([]Handle{a}, lefts); diff != "" {
		t.Errorf("FollowEdges(b, left) mismatch (-want +got):\n%s", diff)
	}

	// The flipped view sees the edge on the opposite sides.
	var fromFlipped []Handle
	g.FollowEdges(b.Flip(), false, func(h Handle) bool {
		fromFlipped = append(fromFlipped, h)
		return true
	})
	if diff := cmp.Diff([]Handle{a.Flip()}, fromFlipped); diff != "" {
		t.Errorf("FollowEdges(b-, right) mismatch (-want +got):\n%s", diff)
	}
}

func TestHasEdgeEquivalence(t *testing.T) {
	g := New()
	a := g.CreateHandle([]byte("AC"))
	b := g.CreateHandle([]byte("GT"))
	e := Edge{From: a, To: b.Flip()}
	g.CreateEdge(e)

	if !g.HasEdge(e) {
		t.Error("HasEdge(e) = false, want true")
	}
	if !g.HasEdge(e.Flip()) {
		t.Error("HasEdge(e.Flip()) = false, want true")
	}
	g.CreateEdge(e.Flip()) // no-op
	if got := g.EdgeCount(); got != 1 {
		t.Errorf("EdgeCount() = %d, want 1", got)
	}
}

func TestSelfLoops(t *testing.T) {
	g := New()
	a := g.CreateHandle([]byte("CACTCA"))

	// Non-reversing self-loop.
	g.CreateEdge(Edge{From: a, To: a})
	if got := g.Degree(a, false); got != 1 {
		t.Errorf("right degree = %d, want 1", got)
	}
	if got := g.Degree(a, true); got != 1 {
		t.Errorf("left degree = %d, want 1", got)
	}
	if got := g.EdgeCount(); got != 1 {
		t.Errorf("EdgeCount() = %d, want 1", got)
	}

	// Reversing self-loop on top.
	g.CreateEdge(Edge{From: a, To: a.Flip()})
	if got := g.EdgeCount(); got != 2 {
		t.Errorf("EdgeCount() = %d, want 2", got)
	}
	if got := g.Degree(a, false); got != 2 {
		t.Errorf("right degree = %d, want 2", got)
	}
}

func TestDestroyEdge(t *testing.T) {
	g := New()
	a := g.CreateHandle([]byte("AC"))
	b := g.CreateHandle([]byte("GT"))
	e := Edge{From: a, To: b}
	g.CreateEdge(e)
	g.DestroyEdge(e.Flip())
	if g.HasEdge(e) {
		t.Error("edge survived DestroyEdge of its flipped form")
	}
	if got := g.EdgeCount(); got != 0 {
		t.Errorf("EdgeCount() = %d, want 0", got)
	}
}

func TestSequenceOrientation(t *testing.T) {
	g := New()
	a := g.CreateHandle([]byte("ACGT"))
	if got := string(g.Sequence(a)); got != "ACGT" {
		t.Errorf("Sequence(a) = %q, want %q", got, "ACGT")
	}
	if got := string(g.Sequence(a.Flip())); got != "ACGT" {
		t.Errorf("Sequence(a-) = %q, want %q (palindromic)", got, "ACGT")
	}
	b := g.CreateHandle([]byte("AACG"))
	if got := string(g.Sequence(b.Flip())); got != "CGTT" {
		t.Errorf("Sequence(b-) = %q, want %q", got, "CGTT")
	}
}

func TestSplitHandleForward(t *testing.T) {
	g := New()
	a := g.CreateHandle([]byte("AC"))
	b := g.CreateHandle([]byte("ACGTACGT"))
	c := g.CreateHandle([]byte("GG"))
	g.CreateEdge(Edge{From: a, To: b})
	g.CreateEdge(Edge{From: b, To: c})
	g.CreatePath("p")
	g.AppendStep("p", b)

	pieces, err := g.SplitHandle(b, []int{4, 6})
	if err != nil {
		t.Fatalf("SplitHandle: %v", err)
	}
	if len(pieces) != 3 {
		t.Fatalf("got %d pieces, want 3", len(pieces))
	}
	want := []string{"ACGT", "AC", "GT"}
	for i, p := range pieces {
		if got := string(g.Sequence(p)); got != want[i] {
			t.Errorf("piece %d = %q, want %q", i, got, want[i])
		}
	}

	// Flank edges moved, chain created, path rewritten.
	if !g.HasEdge(Edge{From: a, To: pieces[0]}) {
		t.Error("left flank edge not redistributed")
	}
	if !g.HasEdge(Edge{From: pieces[2], To: c}) {
		t.Error("right flank edge not redistributed")
	}
	if !g.HasEdge(Edge{From: pieces[0], To: pieces[1]}) || !g.HasEdge(Edge{From: pieces[1], To: pieces[2]}) {
		t.Error("consecutive pieces not linked")
	}
	p, _ := g.Path("p")
	if diff := cmp.Diff(pieces, p.Steps()); diff != "" {
		t.Errorf("path steps mismatch (-want +got):\n%s", diff)
	}
	if g.HasNode(b.ID()) {
		t.Error("original node survived the split")
	}
}

func TestSplitHandleReverse(t *testing.T) {
	g := New()
	b := g.CreateHandle([]byte("AACCGG"))
	g.CreatePath("p")
	g.AppendStep("p", b)

	// Split the reverse view (CCGGTT) two bases in.
	pieces, err := g.SplitHandle(b.Flip(), []int{2})
	if err != nil {
		t.Fatalf("SplitHandle: %v", err)
	}
	if len(pieces) != 2 {
		t.Fatalf("got %d pieces, want 2", len(pieces))
	}
	if got := string(g.Sequence(pieces[0])); got != "CC" {
		t.Errorf("piece 0 = %q, want %q", got, "CC")
	}
	if got := string(g.Sequence(pieces[1])); got != "GGTT" {
		t.Errorf("piece 1 = %q, want %q", got, "GGTT")
	}

	// The forward path now traverses the forward pieces in forward order.
	seq, err := g.PathSequence("p")
	if err != nil {
		t.Fatalf("PathSequence: %v", err)
	}
	if string(seq) != "AACCGG" {
		t.Errorf("path sequence = %q, want %q", seq, "AACCGG")
	}
}

func TestSplitHandleSelfLoop(t *testing.T) {
	g := New()
	a := g.CreateHandle([]byte("CACTCA"))
	g.CreateEdge(Edge{From: a, To: a})

	pieces, err := g.SplitHandle(a, []int{2})
	if err != nil {
		t.Fatalf("SplitHandle: %v", err)
	}
	if !g.HasEdge(Edge{From: pieces[1], To: pieces[0]}) {
		t.Error("self-loop not rebuilt between outer pieces")
	}
}

func TestDestroyHandle(t *testing.T) {
	g := New()
	a := g.CreateHandle([]byte("AC"))
	b := g.CreateHandle([]byte("GT"))
	g.CreateEdge(Edge{From: a, To: b})
	g.CreatePath("p")
	g.AppendStep("p", b)

	g.DestroyHandle(b)
	if g.HasNode(b.ID()) {
		t.Error("node survived DestroyHandle")
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
	if g.HasPath("p") {
		t.Error("path traversing destroyed node survived")
	}
	if g.Degree(a, false) != 0 {
		t.Error("stale adjacency on surviving neighbor")
	}
}

func TestIncrementNodeIDsAndCopy(t *testing.T) {
	sub := New()
	x := sub.CreateHandle([]byte("AAA"))
	y := sub.CreateHandle([]byte("CCC"))
	sub.CreateEdge(Edge{From: x, To: y})
	sub.CreatePath("q")
	sub.AppendStep("q", x)
	sub.AppendStep("q", y)

	main := New()
	main.CreateHandle([]byte("TTTT"))

	sub.IncrementNodeIDs(main.MaxNodeID())
	if err := CopyGraph(sub, main); err != nil {
		t.Fatalf("CopyGraph: %v", err)
	}

	if got := main.NodeCount(); got != 3 {
		t.Errorf("NodeCount() = %d, want 3", got)
	}
	if got := main.EdgeCount(); got != 1 {
		t.Errorf("EdgeCount() = %d, want 1", got)
	}
	seq, err := main.PathSequence("q")
	if err != nil {
		t.Fatalf("PathSequence: %v", err)
	}
	if string(seq) != "AAACCC" {
		t.Errorf("copied path sequence = %q, want %q", seq, "AAACCC")
	}
}

func TestReverseComplement(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"A", "T"},
		{"ACGT", "ACGT"},
		{"AACG", "CGTT"},
		{"NNA", "TNN"},
	}
	for _, c := range cases {
		if got := string(ReverseComplement([]byte(c.in))); got != c.want {
			t.Errorf("ReverseComplement(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
