package bluntify

import (
	"bufio"
	"io"
	"strings"
	"testing"

	charmlog "github.com/charmbracelet/log"

	"github.com/rlorigro/GetBlunted/pkg/gfa"
	"github.com/rlorigro/GetBlunted/pkg/handlegraph"
	"github.com/rlorigro/GetBlunted/pkg/overlaps"
)

func run(t *testing.T, lines ...string) *Bluntifier {
	t.Helper()
	res, err := gfa.ToHandleGraph(bufio.NewScanner(strings.NewReader(strings.Join(lines, "\n"))))
	if err != nil {
		t.Fatalf("parse GFA: %v", err)
	}
	logger := charmlog.New(io.Discard)
	b := New(res, Options{Workers: 1, Logger: logger})
	if err := b.Bluntify(); err != nil {
		t.Fatalf("Bluntify: %v", err)
	}
	return b
}

// assertBlunt checks that no output edge has a nonzero overlap record.
func assertBlunt(t *testing.T, b *Bluntifier) {
	t.Helper()
	b.Graph().ForEachEdge(func(e handlegraph.Edge) bool {
		if _, align, err := b.Overlaps().CanonicalizeAndFind(e); err == nil {
			u, v := align.ComputeLengths()
			if u != 0 || v != 0 {
				t.Errorf("edge %d->%d still has overlap (%d, %d)",
					e.From.ID(), e.To.ID(), u, v)
			}
		}
		return true
	})
}

// assertSequencePreserved checks that the provenance of parent reconstructs
// its original sequence: every position covered, substrings matching.
func assertSequencePreserved(t *testing.T, b *Bluntifier, parentSeq string, parent handlegraph.NodeID) {
	t.Helper()
	covered := make([]bool, len(parentSeq))
	b.Graph().ForEachHandle(func(h handlegraph.Handle) bool {
		for _, rec := range b.Provenance(h.ID()) {
			if rec.Parent != parent {
				continue
			}
			if rec.Start < 0 || rec.Stop > len(parentSeq) || rec.Start > rec.Stop {
				t.Errorf("node %d: interval [%d:%d) out of range for parent %d",
					h.ID(), rec.Start, rec.Stop, parent)
				continue
			}
			for i := rec.Start; i < rec.Stop; i++ {
				covered[i] = true
			}
			if !rec.Reversal {
				want := parentSeq[rec.Start:rec.Stop]
				if got := string(b.Graph().Sequence(h)); got != want {
					t.Errorf("node %d spells %q, want %q (parent %d [%d:%d))",
						h.ID(), got, want, parent, rec.Start, rec.Stop)
				}
			}
		}
		return true
	})
	for i, ok := range covered {
		if !ok {
			t.Errorf("parent %d position %d not covered by provenance", parent, i)
		}
	}
}

func TestBluntifySimplePair(t *testing.T) {
	b := run(t,
		"S\tA\tACGTACGT",
		"S\tB\tACGTGGGG",
		"L\tA\t+\tB\t+\t4M",
	)
	g := b.Graph()

	// A' = ACGT, shared = ACGT, B' = GGGG.
	if got := g.NodeCount(); got != 3 {
		t.Fatalf("NodeCount() = %d, want 3", got)
	}
	if got := g.EdgeCount(); got != 2 {
		t.Fatalf("EdgeCount() = %d, want 2", got)
	}
	assertBlunt(t, b)
	assertSequencePreserved(t, b, "ACGTACGT", 1)
	assertSequencePreserved(t, b, "ACGTGGGG", 2)

	// The shared node is the one with both an incoming and outgoing edge.
	shared := handlegraph.Handle(0)
	g.ForEachHandle(func(h handlegraph.Handle) bool {
		if g.Degree(h, true) == 1 && g.Degree(h, false) == 1 {
			shared = h
		}
		return true
	})
	if shared == 0 {
		t.Fatal("no shared middle node found")
	}
	if got := string(g.Sequence(shared)); got != "ACGT" {
		t.Errorf("shared node spells %q, want ACGT", got)
	}
}

func TestBluntifyFork(t *testing.T) {
	b := run(t,
		"S\tA\tCCCCCTTT",
		"S\tB\tTTTGGGG",
		"S\tC\tTTTAAAA",
		"L\tA\t+\tB\t+\t3M",
		"L\tA\t+\tC\t+\t3M",
	)
	g := b.Graph()

	// One shared TTT node: A', shared, B', C'.
	if got := g.NodeCount(); got != 4 {
		t.Fatalf("NodeCount() = %d, want 4", got)
	}
	if got := g.EdgeCount(); got != 3 {
		t.Fatalf("EdgeCount() = %d, want 3", got)
	}
	assertBlunt(t, b)
	assertSequencePreserved(t, b, "CCCCCTTT", 1)
	assertSequencePreserved(t, b, "TTTGGGG", 2)
	assertSequencePreserved(t, b, "TTTAAAA", 3)

	sharedCount := 0
	g.ForEachHandle(func(h handlegraph.Handle) bool {
		if string(g.Sequence(h)) == "TTT" {
			sharedCount++
		}
		return true
	})
	if sharedCount != 1 {
		t.Errorf("found %d TTT nodes, want 1", sharedCount)
	}
}

func TestBluntifySelfLoop(t *testing.T) {
	b := run(t,
		"S\tA\tCACTCA",
		"L\tA\t+\tA\t+\t2M",
	)
	g := b.Graph()

	// A 2-node cycle where the shared CA is represented once.
	if got := g.NodeCount(); got != 2 {
		t.Fatalf("NodeCount() = %d, want 2", got)
	}
	if got := g.EdgeCount(); got != 2 {
		t.Fatalf("EdgeCount() = %d, want 2", got)
	}
	assertBlunt(t, b)
	assertSequencePreserved(t, b, "CACTCA", 1)

	caCount := 0
	g.ForEachHandle(func(h handlegraph.Handle) bool {
		if string(g.Sequence(h)) == "CA" {
			caCount++
		}
		return true
	})
	if caCount != 1 {
		t.Errorf("found %d CA nodes, want 1", caCount)
	}
}

func TestBluntifyDominoObstruction(t *testing.T) {
	// Left neighborhoods {R1,R2}, {R2,R3}, {R1,R2,R3} conflict in the
	// Galois tree of the unsimplified graph; the cover driver simplifies
	// them first and covers the result. All overlap regions are AA so
	// every biclique aligns cleanly.
	b := run(t,
		"S\tL1\tCCCCAA",
		"S\tL2\tGGGGAA",
		"S\tL3\tTTTTAA",
		"S\tR1\tAACCCC",
		"S\tR2\tAAGGGG",
		"S\tR3\tAATTTT",
		"L\tL1\t+\tR1\t+\t2M",
		"L\tL1\t+\tR2\t+\t2M",
		"L\tL2\t+\tR2\t+\t2M",
		"L\tL2\t+\tR3\t+\t2M",
		"L\tL3\t+\tR1\t+\t2M",
		"L\tL3\t+\tR2\t+\t2M",
		"L\tL3\t+\tR3\t+\t2M",
	)
	assertBlunt(t, b)
	for i, seq := range []string{"CCCCAA", "GGGGAA", "TTTTAA", "AACCCC", "AAGGGG", "AATTTT"} {
		assertSequencePreserved(t, b, seq, handlegraph.NodeID(i+1))
	}
}

func TestBluntifyOverlappingOverlaps(t *testing.T) {
	// A's prefix and suffix overlaps both reach 4 bases into its 6-base
	// sequence, intersecting in the middle.
	b := run(t,
		"S\tY\tCCAAAA",
		"S\tA\tAAAAAA",
		"S\tX\tAAAAGG",
		"L\tY\t+\tA\t+\t4M",
		"L\tA\t+\tX\t+\t4M",
	)
	g := b.Graph()

	assertBlunt(t, b)
	assertSequencePreserved(t, b, "CCAAAA", 1)
	assertSequencePreserved(t, b, "AAAAAA", 2)
	assertSequencePreserved(t, b, "AAAAGG", 3)

	// The shared interior AA is represented once: total sequence across
	// the output is CC + AA + AA + AA + GG.
	total := 0
	g.ForEachHandle(func(h handlegraph.Handle) bool {
		total += g.Length(h)
		return true
	})
	if total != 10 {
		t.Errorf("total output sequence = %d bases, want 10", total)
	}
}

func TestBluntifyEmptyOverlap(t *testing.T) {
	b := run(t,
		"S\tA\tAAAA",
		"S\tB\tCCCC",
		"L\tA\t+\tB\t+\t0M",
	)
	g := b.Graph()

	// Pass-through: same nodes, same single edge, no new nodes.
	if got := g.NodeCount(); got != 2 {
		t.Fatalf("NodeCount() = %d, want 2", got)
	}
	if got := g.EdgeCount(); got != 1 {
		t.Fatalf("EdgeCount() = %d, want 1", got)
	}
	assertBlunt(t, b)
	assertSequencePreserved(t, b, "AAAA", 1)
	assertSequencePreserved(t, b, "CCCC", 2)
}

func TestBluntifyReverseOrientation(t *testing.T) {
	// B participates reversed: A's suffix AC overlaps the prefix of B's
	// reverse strand (B- starts with AC since B ends with GT).
	b := run(t,
		"S\tA\tGGGGAC",
		"S\tB\tTTTTGT",
		"L\tA\t+\tB\t-\t2M",
	)
	assertBlunt(t, b)
	assertSequencePreserved(t, b, "GGGGAC", 1)
}

func TestDeduplicationAcrossBicliques(t *testing.T) {
	b := run(t,
		"S\tA\tCCCCCTTT",
		"S\tB\tTTTGGGG",
		"S\tC\tTTTAAAA",
		"L\tA\t+\tB\t+\t3M",
		"L\tA\t+\tC\t+\t3M",
	)
	// Every canonical edge appears in exactly one biclique.
	seen := make(map[handlegraph.Edge]int)
	for i := 0; i < b.Bicliques().Size(); i++ {
		for _, e := range b.Bicliques().Biclique(i) {
			seen[e.Canonical()]++
		}
	}
	for e, n := range seen {
		if n != 1 {
			t.Errorf("edge %v appears in %d bicliques, want 1", e, n)
		}
	}
	if len(seen) != 2 {
		t.Errorf("cover spans %d edges, want 2", len(seen))
	}
}

func TestMissingOverlapIsFatal(t *testing.T) {
	res, err := gfa.ToHandleGraph(bufio.NewScanner(strings.NewReader(strings.Join([]string{
		"S\tA\tACGTACGT",
		"S\tB\tACGTGGGG",
		"L\tA\t+\tB\t+\t4M",
	}, "\n"))))
	if err != nil {
		t.Fatalf("parse GFA: %v", err)
	}
	// Wreck the overlap map: the edge exists with no record.
	var key handlegraph.Edge
	res.Overlaps.ForEach(func(e handlegraph.Edge, _ *overlaps.Alignment) bool {
		key = e
		return false
	})
	res.Overlaps.Delete(key)

	b := New(res, Options{Workers: 1, Logger: charmlog.New(io.Discard)})
	if err := b.Bluntify(); err == nil {
		t.Fatal("Bluntify succeeded with a missing overlap record")
	}
}
